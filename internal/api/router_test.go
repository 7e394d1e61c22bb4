package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/builtin"
	"github.com/timmy/promptbay/internal/storage"
)

type testServer struct {
	router http.Handler
	subs   *repository.SubmissionRepository
}

func newTestServer(t *testing.T, webhookURL string) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, webhookURL, &config.ServerConfig{Mode: "test", AdminEnabled: true})
}

func newTestServerWithConfig(t *testing.T, webhookURL string, serverCfg *config.ServerConfig) *testServer {
	t.Helper()
	return newTestServerWithStorage(t, webhookURL, serverCfg, nil)
}

func newTestServerWithStorage(t *testing.T, webhookURL string, serverCfg *config.ServerConfig, store storage.ObjectStorage) *testServer {
	t.Helper()
	log := logger.GetDefault()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	promptRepo := repository.NewPromptRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	seedSvc := service.NewSeedService(promptRepo, log, 0)
	_, err = seedSvc.Seed(context.Background(), builtin.NewAdapter())
	require.NoError(t, err)

	svc := &Services{
		Catalog: service.NewCatalogService(promptRepo, repository.NewMemoryVoteLedger(), log, nil),
		Submission: service.NewSubmissionService(subRepo,
			service.NewWebhookForwarder(&service.WebhookConfig{URL: webhookURL, Timeout: time.Second}), nil, log),
		Seed:     seedSvc,
		Sources:  map[string]source.Source{builtin.SourceID: builtin.NewAdapter()},
		Storage:  store,
		Gatherer: prometheus.NewRegistry(),
	}
	r, err := SetupRouter(svc, serverCfg, log)
	require.NoError(t, err)
	return &testServer{router: r, subs: subRepo}
}

// upvoteVia posts an upvote from remoteAddr carrying the given X-Forwarded-For.
func (s *testServer) upvoteVia(id, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/"+id+"/upvote", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.RemoteAddr = "198.51.100.7:5555"
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Results []domain.Prompt `json:"results"`
	Total   int             `json:"total"`
}

func promptIDs(prompts []domain.Prompt) []string {
	out := make([]string, len(prompts))
	for i := range prompts {
		out[i] = prompts[i].ID
	}
	return out
}

func TestAPI_ListPrompts(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/v1/prompts?tool=claude&sort=oldest", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"2", "5", "7", "8"}, promptIDs(resp.Results))
	require.Equal(t, 4, resp.Total)

	w = s.do(http.MethodGet, "/api/v1/prompts?category=V0&limit=1", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"10"}, promptIDs(resp.Results))

	w = s.do(http.MethodGet, "/api/v1/prompts/featured", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"featured-3", "featured-1", "featured-2"}, promptIDs(resp.Results))
}

func TestAPI_GetPrompt(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/v1/prompts/7", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p domain.Prompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "SEO Expert", p.Title)

	w = s.do(http.MethodGet, "/api/v1/prompts/7/text", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	require.Equal(t, p.Text, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/prompts/404", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Upvote(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/prompts/4/upvote", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"4","upvotes":1}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/prompts/4/upvote", "", "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "You can only upvote a prompt once from this IP address.")

	w = s.do(http.MethodPost, "/api/v1/prompts/404/upvote", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_UpvoteIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s := newTestServer(t, "")

	w := s.upvoteVia("4", "198.51.100.7:5555", "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"4","upvotes":1}`, w.Body.String())

	for _, xff := range []string{"10.0.0.2", "10.0.0.3"} {
		w = s.upvoteVia("4", "198.51.100.7:6666", xff)
		require.Equal(t, http.StatusConflict, w.Code, "X-Forwarded-For %s", xff)
	}
}

func TestAPI_UpvoteHonorsForwardedForFromTrustedProxy(t *testing.T) {
	s := newTestServerWithConfig(t, "", &config.ServerConfig{
		Mode:           "test",
		TrustedProxies: []string{"198.51.100.7"},
	})

	w := s.upvoteVia("4", "198.51.100.7:5555", "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.upvoteVia("4", "198.51.100.7:5555", "10.0.0.2")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"4","upvotes":2}`, w.Body.String())

	w = s.upvoteVia("4", "198.51.100.7:5555", "10.0.0.1")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSetupRouter_RejectsInvalidTrustedProxy(t *testing.T) {
	svc := &Services{Gatherer: prometheus.NewRegistry()}
	_, err := SetupRouter(svc, &config.ServerConfig{Mode: "test", TrustedProxies: []string{"not-an-ip"}}, logger.GetDefault())
	require.Error(t, err)
}

func TestAPI_Categories(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/v1/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cats struct {
		Categories []domain.Category `json:"categories"`
		Total      int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Equal(t, len(domain.Categories()), cats.Total)
	require.Equal(t, domain.CategoryAll, cats.Categories[0].ID)

	w = s.do(http.MethodGet, "/api/v1/categories/"+url.PathEscape("vibe code")+"/prompts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var panel service.CategoryBrowse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &panel))
	require.Equal(t, "Vibe Code", panel.Category.Name)
	require.Equal(t, []string{"10"}, promptIDs(panel.Results))
	require.Equal(t, "/prompts?category=vibe+code", panel.MoreURL)
}

const validSubmission = `{
	"contributorName": "Ann Lee",
	"email": "ann@example.com",
	"socialLink": "https://twitter.com/ann",
	"promptTitle": "Story Generator",
	"promptText": "Write a short story about a dragon.",
	"aiTool": "Other",
	"customAiTool": "Gemini",
	"tags": "writing, fiction"
}`

func TestAPI_Submissions(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()
	s := newTestServer(t, hook.URL)

	w := s.do(http.MethodPost, "/api/v1/submissions", validSubmission, "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "forwarded", created.Status)

	stored, err := s.subs.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Gemini", stored.CustomAITool)

	invalid := strings.Replace(validSubmission, `"Story Generator"`, `"Hey"`, 1)
	w = s.do(http.MethodPost, "/api/v1/submissions", invalid, "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	var bad struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	require.Equal(t, "Prompt title must be at least 5 characters.", bad.Fields["promptTitle"])

	w = s.do(http.MethodPost, "/api/v1/submissions", `{"contributorName":`, "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SubmissionWebhookDown(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hookURL := hook.URL
	hook.Close()
	s := newTestServer(t, hookURL)

	w := s.do(http.MethodPost, "/api/v1/submissions", validSubmission, "application/json")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.JSONEq(t, `{"error":"Failed to submit the prompt. Please try again."}`, w.Body.String())
}

func TestAPI_Preview(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/submissions/preview", `{"aiTool":"Claude","tags":"a, b"}`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Preview service.Preview   `json:"preview"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Your Prompt Title", resp.Preview.Title)
	require.Equal(t, "Claude", resp.Preview.Tool)
	require.Equal(t, []string{"a", "b"}, resp.Preview.Tags)
	require.Contains(t, resp.Fields, "promptTitle")
}

func TestPages(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Featured Prompts")
	require.Contains(t, w.Body.String(), "Code Refactoring Assistant")

	w = s.do(http.MethodGet, "/?category=seo", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "SEO Expert")
	require.Contains(t, w.Body.String(), "/prompts?category=seo")

	w = s.do(http.MethodGet, "/prompts?q=zzz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No prompts found")

	w = s.do(http.MethodGet, "/submit", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Your Prompt Title")

	form := url.Values{"promptTitle": {"Hey"}, "aiTool": {"Other"}}
	w = s.do(http.MethodPost, "/submit", form.Encode(), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Prompt title must be at least 5 characters.")
	require.Contains(t, w.Body.String(), "Please specify the AI tool")
}

func TestPages_UpvoteRedirects(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/prompts/6/upvote", nil)
	req.Header.Set("Referer", "https://other.example/prompts?sort=upvotes")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/prompts?sort=upvotes", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/prompts/404/upvote", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMetricsAndAdmin(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"active":13`)

	w = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/seed", `{"source":"builtin"}`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"Updated":13`)

	w = s.do(http.MethodPost, "/api/v1/admin/seed", `{"source":"nope"}`, "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/seed", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"last_run_status":"success"`)

	w = s.do(http.MethodPost, "/api/v1/admin/export", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdmin_SeedFromExportedSnapshot(t *testing.T) {
	store := storage.NewMemoryStorage("promptbay")
	s := newTestServerWithStorage(t, "", &config.ServerConfig{Mode: "test", AdminEnabled: true}, store)

	w := s.do(http.MethodGet, "/api/v1/admin/seed", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"sources":["builtin","snapshot"]`)

	w = s.do(http.MethodPost, "/api/v1/admin/seed", `{"source":"snapshot"}`, "application/json")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/export", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"key":"catalog/snapshot.json"`)
	require.Contains(t, w.Body.String(), "memory://promptbay/catalog/snapshot.json")

	w = s.do(http.MethodPost, "/api/v1/admin/seed", `{"source":"snapshot"}`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"Updated":13`)
}
