// Package httpapi exposes a runner.Client over HTTP with JSON bodies.
//
// Routes:
//
//	POST   /tasks/new        submit a task            202
//	POST   /schedules/new    {"cron": ..., "task": ...} -> {"uuid": ...}  201
//	GET    /schedules        list jobs                200
//	DELETE /schedules/{id}   remove a job             200, 404 if unknown
//	GET    /results/next     next result              200, 204 if none
//
// A stopped pipeline answers 503.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/runner"
	"github.com/vnykmshr/taskflow/pkg/scheduling/scheduler"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// NewSchedule is the body of POST /schedules/new.
type NewSchedule[Req any] struct {
	Cron string `json:"cron"`
	Task Req    `json:"task"`
}

// NewScheduleResponse is returned by POST /schedules/new.
type NewScheduleResponse struct {
	UUID scheduler.JobID `json:"uuid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type api[Req, Res any] struct {
	client runner.Client[Req, Res]
	log    zerolog.Logger
}

// Router returns a chi router serving client.
func Router[Req, Res any](client runner.Client[Req, Res], log zerolog.Logger) chi.Router {
	a := &api[Req, Res]{
		client: client,
		log:    log.With().Str("component", "httpapi").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(a.log))
	r.Use(middleware.Recoverer)

	r.Post("/tasks/new", a.newTask)
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", a.listSchedules)
		r.Post("/new", a.newSchedule)
		r.Delete("/{id}", a.removeSchedule)
	})
	r.Get("/results/next", a.nextResult)
	return r
}

func (a *api[Req, Res]) newTask(w http.ResponseWriter, r *http.Request) {
	var task Req
	if err := decode(w, r, &task); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.client.Submit(r.Context(), task); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *api[Req, Res]) newSchedule(w http.ResponseWriter, r *http.Request) {
	var body NewSchedule[Req]
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := a.client.Schedule(r.Context(), body.Cron, body.Task)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, NewScheduleResponse{UUID: id})
}

func (a *api[Req, Res]) listSchedules(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.client.Jobs(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (a *api[Req, Res]) removeSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.client.RemoveJob(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *api[Req, Res]) nextResult(w http.ResponseWriter, r *http.Request) {
	res, ok, err := a.client.Poll(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// fail maps a pipeline error onto a status code.
func (a *api[Req, Res]) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tferrors.ErrUnknownJob):
		status = http.StatusNotFound
	case tferrors.IsSchedulerError(err), tferrors.IsValidationError(err):
		status = http.StatusBadRequest
	case tferrors.IsChannelClosed(err):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
	}
	writeError(w, status, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// requestLogger logs one line per request once it has been served.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
