package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/taskflow/internal/testutil"
	"github.com/vnykmshr/taskflow/pkg/httpapi"
	"github.com/vnykmshr/taskflow/pkg/metrics"
	"github.com/vnykmshr/taskflow/pkg/runner"
	"github.com/vnykmshr/taskflow/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
)

type task struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// TestMutualExclusionAcrossWorkers pushes 1000 distinct items through eight
// workers and checks that no item is transformed twice.
func TestMutualExclusionAcrossWorkers(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)
	var dupes int32

	mark := workerpool.TransformFunc[int, int](func(_ context.Context, n int) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if seen[n] {
			atomic.AddInt32(&dupes, 1)
		}
		seen[n] = true
		return n, nil
	})

	r, client, err := runner.NewInMemory[int, int](mark, runner.Config{Workers: 8})
	testutil.AssertNoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	testutil.AssertNoError(t, r.Start(ctx))
	defer func() {
		cancel()
		<-r.Done()
	}()

	tctx, tcancel := testutil.WithTimeout(t)
	defer tcancel()

	const n = 1000
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := p; i < n; i += 4 {
				if err := client.Submit(tctx, i); err != nil {
					t.Errorf("submit %d: %v", i, err)
					return
				}
			}
		}(p)
	}

	results := make(map[int]bool, n)
	for len(results) < n {
		v, err := client.Await(tctx)
		testutil.AssertNoError(t, err)
		if results[v] {
			t.Fatalf("result %d observed twice", v)
		}
		results[v] = true
	}
	wg.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&dupes), int32(0))
}

// TestScheduledAndSubmittedWorkInterleave checks that cron firings and
// direct submissions share the same request queue.
func TestScheduledAndSubmittedWorkInterleave(t *testing.T) {
	r, client, err := runner.NewInMemory[task, task](workerpool.Map(func(t task) task { return t }), runner.Config{Workers: 2})
	testutil.AssertNoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	testutil.AssertNoError(t, r.Start(ctx))
	defer func() {
		cancel()
		<-r.Done()
	}()

	tctx, tcancel := testutil.WithTimeout(t)
	defer tcancel()

	id, err := client.ScheduleFunc(tctx, "@every 1s", func(id scheduler.JobID) task {
		return task{ID: id.String(), Source: "cron"}
	})
	testutil.AssertNoError(t, err)

	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, client.Submit(tctx, task{ID: fmt.Sprint(i), Source: "submit"}))
	}

	var submitted, fired int
	for fired == 0 || submitted < 5 {
		v, err := client.Await(tctx)
		testutil.AssertNoError(t, err)
		switch v.Source {
		case "cron":
			testutil.AssertEqual(t, v.ID, id.String())
			fired++
		case "submit":
			submitted++
		}
	}

	testutil.AssertNoError(t, client.RemoveJob(tctx, id))
	jobs, err := client.Jobs(tctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(jobs), 0)
}

// TestHTTPEndToEnd drives the pipeline through a real HTTP server.
func TestHTTPEndToEnd(t *testing.T) {
	r, client, err := runner.NewInMemory[task, task](workerpool.Map(func(t task) task { return t }), runner.Config{})
	testutil.AssertNoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	testutil.AssertNoError(t, r.Start(ctx))

	srv := httptest.NewServer(httpapi.Router(client, zerolog.Nop()))
	httpClient := srv.Client()
	defer func() {
		httpClient.CloseIdleConnections()
		srv.Close()
		cancel()
		<-r.Done()
	}()

	body, _ := json.Marshal(task{ID: "http-1", Source: "http"})
	resp, err := httpClient.Post(srv.URL+"/tasks/new", "application/json", bytes.NewReader(body))
	testutil.AssertNoError(t, err)
	resp.Body.Close()
	testutil.AssertEqual(t, resp.StatusCode, http.StatusAccepted)

	var got task
	testutil.Eventually(t, func() bool {
		resp, err := httpClient.Get(srv.URL + "/results/next")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&got) == nil
	}, 2*time.Second, 5*time.Millisecond)
	testutil.AssertEqual(t, got, task{ID: "http-1", Source: "http"})

	sched, _ := json.Marshal(httpapi.NewSchedule[task]{Cron: "@hourly", Task: task{ID: "hourly"}})
	resp, err = httpClient.Post(srv.URL+"/schedules/new", "application/json", bytes.NewReader(sched))
	testutil.AssertNoError(t, err)
	var created httpapi.NewScheduleResponse
	testutil.AssertNoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	testutil.AssertEqual(t, resp.StatusCode, http.StatusCreated)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/schedules/"+created.UUID.String(), nil)
	resp, err = httpClient.Do(req)
	testutil.AssertNoError(t, err)
	resp.Body.Close()
	testutil.AssertEqual(t, resp.StatusCode, http.StatusOK)
}

// TestShutdownUnderLoad cancels a busy pipeline and expects every
// component to stop promptly.
func TestShutdownUnderLoad(t *testing.T) {
	slow := workerpool.TransformFunc[int, int](func(ctx context.Context, n int) (int, error) {
		select {
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
		}
		return n, nil
	})
	r, client, err := runner.NewInMemory[int, int](slow, runner.Config{Workers: 4})
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	listened := make(chan error, 1)
	go func() { listened <- r.Listen(ctx) }()

	// producers keep pushing until the pipeline closes on them
	var wg sync.WaitGroup
	for p := 0; p < 3; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				if err := client.Submit(context.Background(), i); err != nil {
					return
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-listened:
		testutil.AssertNoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop")
	}
	wg.Wait()
}

// TestMetricsAcrossComponents checks that one registry collects from every
// component of a runner.
func TestMetricsAcrossComponents(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := metrics.New(metrics.Config{Enabled: true, Registry: promReg})

	r, client, err := runner.NewInMemory[int, int](workerpool.Map(func(n int) int { return n }), runner.Config{
		Name:    "it",
		Workers: 2,
		Metrics: reg,
	})
	testutil.AssertNoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	testutil.AssertNoError(t, r.Start(ctx))
	defer func() {
		cancel()
		<-r.Done()
	}()

	tctx, tcancel := testutil.WithTimeout(t)
	defer tcancel()
	for i := 0; i < 10; i++ {
		testutil.AssertNoError(t, client.Submit(tctx, i))
	}
	for i := 0; i < 10; i++ {
		_, err := client.Await(tctx)
		testutil.AssertNoError(t, err)
	}
	_, err = client.Schedule(tctx, "@daily", 0)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, promtest.ToFloat64(reg.QueueEnqueued.WithLabelValues("it_requests")), 10.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.ItemsProcessed.WithLabelValues("it_workers")), 10.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.JobsScheduled.WithLabelValues("it_scheduler")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.WorkerPoolSize.WithLabelValues("it_workers")), 2.0)
}
