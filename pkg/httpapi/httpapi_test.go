package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/taskflow/pkg/httpapi"
	"github.com/vnykmshr/taskflow/pkg/runner"
	"github.com/vnykmshr/taskflow/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
)

type message struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

func setup(t *testing.T) (http.Handler, context.CancelFunc) {
	t.Helper()
	r, client, err := runner.NewInMemory[message, message](
		workerpool.Map(func(m message) message { return m }),
		runner.Config{Workers: 2},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})
	return httpapi.Router(client, zerolog.Nop()), cancel
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTaskRoundTrip(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodPost, "/tasks/new", `{"id":"1","msg":"hello"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var got message
	require.Eventually(t, func() bool {
		rec := do(t, h, http.MethodGet, "/results/next", "")
		if rec.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(rec.Body.Bytes(), &got) == nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, message{ID: "1", Msg: "hello"}, got)

	rec = do(t, h, http.MethodGet, "/results/next", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNewTaskBadBody(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodPost, "/tasks/new", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestScheduleLifecycle(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodPost, "/schedules/new", `{"cron":"0 0 * * * *","task":{"id":"s","msg":"tick"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created httpapi.NewScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.UUID)

	rec = do(t, h, http.MethodGet, "/schedules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []scheduler.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, created.UUID, jobs[0].ID)
	assert.Equal(t, "0 0 * * * *", jobs[0].Spec)

	rec = do(t, h, http.MethodDelete, "/schedules/"+created.UUID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/schedules/"+created.UUID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleFiresIntoPipeline(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodPost, "/schedules/new", `{"cron":"@every 1s","task":{"id":"cron","msg":"tick"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got message
	require.Eventually(t, func() bool {
		rec := do(t, h, http.MethodGet, "/results/next", "")
		return rec.Code == http.StatusOK && json.Unmarshal(rec.Body.Bytes(), &got) == nil
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "cron", got.ID)
}

func TestScheduleErrors(t *testing.T) {
	h, _ := setup(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid cron", http.MethodPost, "/schedules/new", `{"cron":"whenever","task":{}}`, http.StatusBadRequest},
		{"missing cron", http.MethodPost, "/schedules/new", `{"task":{}}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/schedules/new", `[`, http.StatusBadRequest},
		{"bad uuid", http.MethodDelete, "/schedules/not-a-uuid", "", http.StatusBadRequest},
		{"unknown job", http.MethodDelete, "/schedules/" + uuid.NewString(), "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestStoppedPipeline(t *testing.T) {
	r, client, err := runner.NewInMemory[message, message](
		workerpool.Map(func(m message) message { return m }),
		runner.Config{},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()
	<-r.Done()

	h := httpapi.Router(client, zerolog.Nop())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/tasks/new", `{"id":"x"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/results/next", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/schedules", "").Code)
}
