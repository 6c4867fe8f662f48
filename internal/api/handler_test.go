package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-career-hunter/internal/database"
	"go-career-hunter/internal/models"
	"go-career-hunter/internal/orchestrator"
	"go-career-hunter/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type fakeHunter struct {
	triggerErr error
	triggered  int
	live       bool
	running    bool
}

func (f *fakeHunter) Trigger() error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggered++
	return nil
}

func (f *fakeHunter) Status() scheduler.Status {
	return scheduler.Status{Live: f.live, Running: f.running}
}

func (f *fakeHunter) TimeUntilNext() (time.Duration, bool) {
	if !f.live {
		return 0, false
	}
	return 90 * time.Minute, true
}

func (f *fakeHunter) Stop()  { f.live = false }
func (f *fakeHunter) Start() { f.live = true }

type testServer struct {
	store  *database.MemoryStore
	hunter *fakeHunter
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewMemoryStore()
	store.Now = func() time.Time { return fixedNow }
	hunter := &fakeHunter{live: true}

	h := NewHandler(store, hunter, time.UTC)
	h.now = func() time.Time { return fixedNow }
	return &testServer{store: store, hunter: hunter, router: SetupRoutes(h, "")}
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestCreateTarget_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing name", body: map[string]any{"urls": []string{"https://acme.test"}}, want: http.StatusBadRequest},
		{name: "missing urls", body: map[string]any{"name": "Acme"}, want: http.StatusBadRequest},
		{name: "relative url", body: map[string]any{"name": "Acme", "urls": []string{"acme.test/careers"}}, want: http.StatusBadRequest},
		{name: "valid", body: map[string]any{"name": "Acme", "urls": []string{"https://acme.test/careers/"}}, want: http.StatusCreated},
		{name: "duplicate name", body: map[string]any{"name": "acme", "urls": []string{"https://acme.test"}}, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, "/api/targets", tt.body)
			assert.Equal(t, tt.want, code, env.Error)
		})
	}

	targets, err := s.store.ListTargets(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, []string{"https://acme.test/careers"}, targets[0].URLs)
	assert.True(t, targets[0].IsActive)
}

func TestUpdateTarget_Partial(t *testing.T) {
	s := newTestServer(t)
	target := &models.Target{Name: "Acme", URLs: []string{"https://acme.test"}, CustomPersona: "Go dev", IsActive: true}
	require.NoError(t, s.store.CreateTarget(context.Background(), target))

	code, env := s.do(t, http.MethodPut, "/api/targets/"+target.ID, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, code, env.Error)

	var got models.Target
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.False(t, got.IsActive)
	assert.Equal(t, "Go dev", got.CustomPersona)
	assert.Equal(t, []string{"https://acme.test"}, got.URLs)

	code, _ = s.do(t, http.MethodPut, "/api/targets/missing", map[string]any{"name": "X"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteTarget_OrphansJobs(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	target := &models.Target{Name: "Acme", URLs: []string{"https://acme.test"}, IsActive: true}
	require.NoError(t, s.store.CreateTarget(ctx, target))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{Title: "Dev", CompanyName: "Acme", TargetID: target.ID, Link: "L1", IsFresh: true}))

	code, _ := s.do(t, http.MethodGet, "/api/targets", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/targets/"+target.ID, nil)
	require.Equal(t, http.StatusOK, code)

	job, err := s.store.FindJobByLink(ctx, "L1")
	require.NoError(t, err)
	assert.Empty(t, job.TargetID)
}

func TestListTargets_NewJobsCount(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	target := &models.Target{Name: "Acme", URLs: []string{"https://acme.test"}, IsActive: true}
	require.NoError(t, s.store.CreateTarget(ctx, target))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{TargetID: target.ID, Link: "L1", IsFresh: true}))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{TargetID: target.ID, Link: "L2", IsFresh: false}))

	code, env := s.do(t, http.MethodGet, "/api/targets", nil)
	require.Equal(t, http.StatusOK, code)

	var got []targetResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].NewJobsCount)
}

func TestJobs_ListAndMutate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	job := &models.Job{Title: "Backend Intern", CompanyName: "Acme", Link: "L1", IsFresh: true}
	require.NoError(t, s.store.InsertJob(ctx, job))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{Title: "Dev", CompanyName: "Beta", Link: "L2", IsFresh: true}))

	code, env := s.do(t, http.MethodGet, "/api/jobs?company=acm&limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Jobs       []models.Job `json:"jobs"`
		Pagination pagination   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Jobs, 1)
	assert.Equal(t, pagination{Page: 1, Limit: 5, Total: 1, Pages: 1}, list.Pagination)

	code, env = s.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/mark-viewed", nil)
	require.Equal(t, http.StatusOK, code)
	var viewed models.Job
	require.NoError(t, json.Unmarshal(env.Data, &viewed))
	assert.False(t, viewed.IsFresh)

	code, _ = s.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/star", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/star", map[string]any{"is_starred": true})
	require.Equal(t, http.StatusOK, code)
	var starred models.Job
	require.NoError(t, json.Unmarshal(env.Data, &starred))
	assert.True(t, starred.IsStarred)

	code, _ = s.do(t, http.MethodDelete, "/api/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMorningBrief(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{CompanyName: "Acme", Link: "L1", DetectedAt: fixedNow.Add(-2 * time.Hour)}))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{CompanyName: "Acme", Link: "L2", DetectedAt: fixedNow.Add(-11 * time.Hour)}))
	require.NoError(t, s.store.InsertJob(ctx, &models.Job{CompanyName: "Beta", Link: "L3", DetectedAt: fixedNow.Add(-13 * time.Hour)}))

	code, env := s.do(t, http.MethodGet, "/api/jobs/morning-brief", nil)
	require.Equal(t, http.StatusOK, code)

	var brief struct {
		TotalJobs int                     `json:"total_jobs"`
		Companies int                     `json:"companies"`
		ByCompany map[string][]models.Job `json:"by_company"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &brief))
	assert.Equal(t, 2, brief.TotalJobs)
	assert.Equal(t, 1, brief.Companies)
	assert.Len(t, brief.ByCompany["Acme"], 2)
}

func TestHunt_TriggerConflict(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/hunt/trigger", nil)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, 1, s.hunter.triggered)

	s.hunter.triggerErr = orchestrator.ErrAlreadyRunning
	code, env := s.do(t, http.MethodPost, "/api/hunt/trigger", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
}

func TestHunt_StartStopStatus(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/hunt/start", nil)
	require.Equal(t, http.StatusOK, code)
	var started map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &started))
	assert.Equal(t, true, started["is_active"])
	assert.Equal(t, "1h 30m 0s", started["next_run_in"])

	code, _ = s.do(t, http.MethodPost, "/api/scheduler/pause", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/hunt/status", nil)
	require.Equal(t, http.StatusOK, code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "N/A (scheduler paused)", status["next_run_in"])

	code, _ = s.do(t, http.MethodPost, "/api/hunt/stop", nil)
	require.Equal(t, http.StatusOK, code)
	state, err := s.store.GetHuntState(context.Background())
	require.NoError(t, err)
	assert.False(t, state.IsActive)
}

func TestSettings_Update(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPut, "/api/settings", map[string]any{"schedule": "every night"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(t, http.MethodPut, "/api/settings", map[string]any{"default_tags": []string{" Go ", "", "Intern"}})
	require.Equal(t, http.StatusOK, code)

	var got models.Settings
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, []string{"Go", "Intern"}, got.DefaultTags)
	assert.Equal(t, models.DefaultPersona, got.UserPersona)
}

func TestLogs_Today(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.CreateRunLog(ctx, &models.RunLog{BatchTime: fixedNow.Add(-24 * time.Hour), JobsFound: 9}))
	require.NoError(t, s.store.CreateRunLog(ctx, &models.RunLog{
		BatchTime: fixedNow.Add(-6 * time.Hour), JobsFound: 2, URLsScanned: 3,
		Errors: []models.CrawlError{{URL: "u", Message: "m"}},
	}))

	code, env := s.do(t, http.MethodGet, "/api/logs/today", nil)
	require.Equal(t, http.StatusOK, code)
	var today struct {
		Summary logsSummary     `json:"summary"`
		Logs    []models.RunLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &today))
	assert.Equal(t, logsSummary{TotalBatches: 1, TotalJobsFound: 2, TotalErrors: 1, TotalURLsScanned: 3}, today.Summary)

	code, _ = s.do(t, http.MethodGet, "/api/logs?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/logs?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	var latest struct {
		Logs []models.RunLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &latest))
	assert.Len(t, latest.Logs, 2)
}
