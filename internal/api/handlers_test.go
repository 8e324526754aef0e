package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/contentflow/config"
	"github.com/spacesedan/contentflow/internal/jobs"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fullCredentials = config.Credentials{
	RedditClientID:     "id",
	RedditClientSecret: "secret",
	NewsAPIKey:         "news",
	OpenAIAPIKey:       "openai",
}

const sampleScript = "TITLE: Tech Today\n\nWelcome back.\n\n[SEGMENT 1: Chips]\n[VISUAL: wafer close-up]\nNew chips landed."

type scriptGenerator struct {
	requests chan models.GenerationRequest
	err      error
}

func (g *scriptGenerator) Generate(_ context.Context, req models.GenerationRequest) (*models.ScriptResult, error) {
	if g.requests != nil {
		g.requests <- req
	}
	if g.err != nil {
		return nil, g.err
	}
	return &models.ScriptResult{Title: "Tech Today", Script: sampleScript}, nil
}

type stubJobs struct {
	submitErr error
	job       models.Job
	getErr    error
}

func (s *stubJobs) Submit(context.Context, models.GenerationRequest) (models.Job, error) {
	return s.job, s.submitErr
}

func (s *stubJobs) Get(context.Context, string) (models.Job, error) {
	return s.job, s.getErr
}

func newTestServer(t *testing.T, gen jobs.Generator) (*gin.Engine, *jobs.Manager) {
	t.Helper()
	m := jobs.NewManager(jobs.NewMemoryStore(), gen)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return NewRouter(&APIHandler{Jobs: m, Credentials: fullCredentials}), m
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func submit(t *testing.T, r http.Handler, body string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/generate-script", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[models.CreateJobResponse](t, w)
	assert.Equal(t, models.JobStatusSubmitted, created.Status)
	return created.JobID
}

func waitCompleted(t *testing.T, r http.Handler, id string) *httptest.ResponseRecorder {
	t.Helper()
	var w *httptest.ResponseRecorder
	require.Eventually(t, func() bool {
		w = do(r, http.MethodGet, "/job/"+id, "")
		return decode[models.JobStatusResponse](t, w).Status.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)
	return w
}

func TestGenerateScriptAppliesDefaults(t *testing.T) {
	gen := &scriptGenerator{requests: make(chan models.GenerationRequest, 1)}
	r, _ := newTestServer(t, gen)

	submit(t, r, `{"news_topics": []}`)
	req := <-gen.requests
	assert.Equal(t, models.DefaultSubreddits, req.Subreddits)
	assert.Equal(t, []string{}, req.NewsTopics, "explicit empty list is kept")
	assert.Equal(t, "informative", req.VideoStyle)
	assert.Equal(t, 5, req.ContentLimit)

	submit(t, r, "")
	req = <-gen.requests
	assert.Equal(t, models.DefaultNewsTopics, req.NewsTopics)
}

func TestGenerateScriptValidation(t *testing.T) {
	r, _ := newTestServer(t, &scriptGenerator{})

	for _, body := range []string{`{"content_limit": 0}`, `{"content_limit": 11}`} {
		w := do(r, http.MethodPost, "/generate-script", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "content_limit must be between 1 and 10", decode[models.ErrorResponse](t, w).Detail)
	}

	w := do(r, http.MethodPost, "/generate-script", `{"subreddits": "technology"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid request body", decode[models.ErrorResponse](t, w).Detail)
}

func TestGenerateScriptMissingCredentials(t *testing.T) {
	r := NewRouter(&APIHandler{
		Jobs:        &stubJobs{},
		Credentials: config.Credentials{RedditClientID: "id", OpenAIAPIKey: "key"},
	})

	w := do(r, http.MethodPost, "/generate-script", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required credentials: REDDIT_CLIENT_SECRET, NEWS_API_KEY",
		decode[models.ErrorResponse](t, w).Detail)
}

func TestGenerateScriptSubmitErrors(t *testing.T) {
	r := NewRouter(&APIHandler{Jobs: &stubJobs{submitErr: jobs.ErrShuttingDown}, Credentials: fullCredentials})
	w := do(r, http.MethodPost, "/generate-script", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	r = NewRouter(&APIHandler{Jobs: &stubJobs{submitErr: errors.New("valkey down")}, Credentials: fullCredentials})
	w = do(r, http.MethodPost, "/generate-script", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to create job", decode[models.ErrorResponse](t, w).Detail)
}

func TestJobLifecycleAndStableReads(t *testing.T) {
	r, _ := newTestServer(t, &scriptGenerator{})
	id := submit(t, r, `{"video_style": "dramatic", "content_limit": 3}`)

	first := waitCompleted(t, r, id)
	status := decode[models.JobStatusResponse](t, first)
	assert.Equal(t, models.JobStatusCompleted, status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, "Tech Today", status.Result.Title)
	assert.Empty(t, status.Error)

	for i := 0; i < 3; i++ {
		again := do(r, http.MethodGet, "/job/"+id, "")
		assert.Equal(t, http.StatusOK, again.Code)
		assert.JSONEq(t, first.Body.String(), again.Body.String())
	}
}

func TestJobFailureReported(t *testing.T) {
	r, _ := newTestServer(t, &scriptGenerator{err: errors.New("No content was fetched. Please check your API credentials.")})
	id := submit(t, r, `{}`)

	w := waitCompleted(t, r, id)
	status := decode[models.JobStatusResponse](t, w)
	assert.Equal(t, models.JobStatusFailed, status.Status)
	assert.Nil(t, status.Result)
	assert.Equal(t, "No content was fetched. Please check your API credentials.", status.Error)

	w = do(r, http.MethodGet, "/job/"+id+"/segments", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestJobNotFound(t *testing.T) {
	r, _ := newTestServer(t, &scriptGenerator{})
	for _, path := range []string{"/job/job_missing", "/job/job_missing/segments", "/job/job_missing/html"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Job not found", decode[models.ErrorResponse](t, w).Detail)
	}
}

func TestJobSegmentsAndHTML(t *testing.T) {
	r, _ := newTestServer(t, &scriptGenerator{})
	id := submit(t, r, `{}`)
	waitCompleted(t, r, id)

	w := do(r, http.MethodGet, "/job/"+id+"/segments", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Title    string                 `json:"title"`
		Segments []models.ScriptSegment `json:"segments"`
	}](t, w)
	assert.Equal(t, "Tech Today", body.Title)
	require.Len(t, body.Segments, 2)
	assert.Equal(t, "Chips", body.Segments[1].Title)

	w = do(r, http.MethodGet, "/job/"+id+"/html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "<h1>Tech Today</h1>")
	assert.Contains(t, w.Body.String(), "<em>VISUAL: wafer close-up</em>")
}

func TestInfoEndpoints(t *testing.T) {
	healthy := &atomic.Bool{}
	healthy.Store(true)
	r := NewRouter(&APIHandler{Jobs: &stubJobs{}, Credentials: config.Credentials{NewsAPIKey: "k"}, Healthy: healthy})

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	info := decode[struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Endpoints []string `json:"endpoints"`
	}](t, w)
	assert.Equal(t, "Trending Content Video Script Generator API", info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Contains(t, info.Endpoints, "/generate-script (POST): Generate a video script from trending content")
	assert.Contains(t, info.Endpoints, "/job/{job_id} (GET): Check the status of a script generation job")
	assert.Contains(t, info.Endpoints, "/health (GET): Check API health")

	w = do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	healthy.Store(false)
	w = do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, w.Body.String())

	w = do(r, http.MethodGet, "/config/video-styles", "")
	styles := decode[struct {
		Styles map[string]string `json:"styles"`
	}](t, w)
	assert.Len(t, styles.Styles, 4)
	assert.Contains(t, styles.Styles, "educational")

	w = do(r, http.MethodGet, "/check-credentials", "")
	assert.JSONEq(t, `{"status":"incomplete","missing":["REDDIT_CLIENT_ID","REDDIT_CLIENT_SECRET","OPENAI_API_KEY"]}`, w.Body.String())

	r = NewRouter(&APIHandler{Jobs: &stubJobs{}, Credentials: fullCredentials})
	w = do(r, http.MethodGet, "/check-credentials", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"complete","message":"All required credentials are set"}`, w.Body.String())
}

type promoWriter struct {
	transcript string
	imageNotes string
	err        error
}

func (p *promoWriter) Write(_ context.Context, transcript, imageNotes string) (models.Promo, error) {
	p.transcript, p.imageNotes = transcript, imageNotes
	if p.err != nil {
		return models.Promo{}, p.err
	}
	return models.Promo{Caption: "Chips, explained.", Hashtags: []string{"#tech", "#chips"}}, nil
}

func completedJob() *stubJobs {
	return &stubJobs{job: models.Job{
		ID:     "job_1",
		Status: models.JobStatusCompleted,
		Result: &models.ScriptResult{Title: "Tech Today", Script: sampleScript},
	}}
}

func TestPromoForCompletedJob(t *testing.T) {
	writer := &promoWriter{}
	r := NewRouter(&APIHandler{Jobs: completedJob(), Credentials: fullCredentials, Promo: writer})

	w := do(r, http.MethodPost, "/job/job_1/promo", `{"image_descriptions": "wafer close-up"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"caption":"Chips, explained.","hashtags":["#tech","#chips"]}`, w.Body.String())
	assert.Equal(t, sampleScript, writer.transcript)
	assert.Equal(t, "wafer close-up", writer.imageNotes)

	w = do(r, http.MethodPost, "/job/job_1/promo", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, writer.imageNotes)
}

func TestPromoRejections(t *testing.T) {
	inProgress := &stubJobs{job: models.Job{ID: "job_1", Status: models.JobStatusProcessing}}

	cases := []struct {
		name    string
		handler *APIHandler
		code    int
		detail  string
	}{
		{"missing key", &APIHandler{Jobs: completedJob(), Credentials: config.Credentials{}, Promo: &promoWriter{}},
			http.StatusBadRequest, "Missing required credentials: OPENAI_API_KEY"},
		{"not configured", &APIHandler{Jobs: completedJob(), Credentials: fullCredentials},
			http.StatusServiceUnavailable, "Promo generation is not configured"},
		{"not completed", &APIHandler{Jobs: inProgress, Credentials: fullCredentials, Promo: &promoWriter{}},
			http.StatusConflict, "Job is processing, not completed"},
		{"unknown job", &APIHandler{Jobs: &stubJobs{getErr: jobs.ErrJobNotFound}, Credentials: fullCredentials, Promo: &promoWriter{}},
			http.StatusNotFound, "Job not found"},
		{"llm failure", &APIHandler{Jobs: completedJob(), Credentials: fullCredentials, Promo: &promoWriter{err: errors.New("rate limited")}},
			http.StatusBadGateway, "Failed to generate promo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(NewRouter(tc.handler), http.MethodPost, "/job/job_1/promo", "")
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.detail, decode[models.ErrorResponse](t, w).Detail)
		})
	}
}
