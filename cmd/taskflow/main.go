// Command taskflow runs an in-memory task pipeline behind an HTTP control
// surface.
//
// Tasks are JSON messages; each one is stamped by a worker and the result
// is either logged by a background consumer or left for GET /results/next.
// Configuration comes from TASKFLOW_* environment variables and an
// optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/taskflow/internal/config"
	"github.com/vnykmshr/taskflow/internal/logging"
	tfcontext "github.com/vnykmshr/taskflow/pkg/common/context"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/httpapi"
	"github.com/vnykmshr/taskflow/pkg/metrics"
	"github.com/vnykmshr/taskflow/pkg/runner"
	"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
)

type message struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

type processed struct {
	message
	ProcessedAt time.Time `json:"processed_at"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "taskflow:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg := metrics.New(metrics.Config{Enabled: cfg.MetricsEnabled, Registry: promReg})

	stamp := workerpool.TransformFunc[message, processed](func(_ context.Context, m message) (processed, error) {
		return processed{message: m, ProcessedAt: time.Now().In(loc)}, nil
	})
	r, client, err := runner.NewInMemory[message, processed](stamp, runner.Config{
		Workers:     cfg.Workers,
		MailboxSize: cfg.MailboxSize,
		Location:    loc,
		Logger:      log,
		Metrics:     reg,
	})
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg}))
	}
	router.Mount("/", httpapi.Router(client, log))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Listen(gctx) })
	if cfg.DrainResults {
		g.Go(func() error { return drain(gctx, client, log) })
	}
	g.Go(func() error { return serve(gctx, srv, cfg.ShutdownTimeout, log) })

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Int("workers", cfg.Workers).
		Str("timezone", loc.String()).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("taskflow started")

	err = g.Wait()
	log.Info().Err(err).Msg("taskflow stopped")
	return err
}

// drain logs every result until the pipeline stops.
func drain(ctx context.Context, client runner.Client[message, processed], log zerolog.Logger) error {
	for {
		res, err := client.Await(ctx)
		if err != nil {
			if tferrors.IsChannelClosed(err) {
				return nil
			}
			return tfcontext.IgnoreIfCanceled(ctx, err)
		}
		log.Info().
			Str("id", res.ID).
			Str("msg", res.Msg).
			Time("processed_at", res.ProcessedAt).
			Msg("task processed")
	}
}

func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log zerolog.Logger) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
