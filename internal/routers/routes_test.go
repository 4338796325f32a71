package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockmate/interview/internal/agent"
	"mockmate/interview/internal/config"
	"mockmate/interview/internal/handlers"
	"mockmate/interview/internal/orchestrator"
	"mockmate/interview/internal/prompts"
	"mockmate/interview/internal/store"
)

type nullProvider struct{}

func (nullProvider) Complete(ctx context.Context, agentID, prompt string) (string, error) {
	return "{}", nil
}

func (nullProvider) GetProviderName() string { return "null" }

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	sessions := store.NewSessionStore(3)
	gateway := agent.NewGateway(nullProvider{}, time.Second, zap.NewNop())
	o := orchestrator.New(sessions, gateway, pm, zap.NewNop(), orchestrator.Options{})

	router := chi.NewRouter()
	HealthRoutes(router, handlers.NewHealthHandler(nullProvider{}, pm, sessions, &config.Config{}))
	InterviewRoutes(router, handlers.NewInterviewHandler(o, zap.NewNop()), nil)
	return router
}

func TestRouteRegistration(t *testing.T) {
	router := newRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/interview/start"},
		{http.MethodPost, "/interview/answer"},
		{http.MethodPost, "/interview/submit-code"},
		{http.MethodPost, "/interview/complete"},
		{http.MethodGet, "/interview/session/abc"},
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/readyz"},
		{http.MethodGet, "/metrics"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusNotFound && tc.path != "/interview/session/abc" {
			t.Errorf("%s %s is not registered", tc.method, tc.path)
		}
		if rec.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s registered with the wrong method", tc.method, tc.path)
		}
	}
}

func TestReportRoutesAbsentWithoutArchive(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/interview/reports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("report routes must not exist without an archive, got %d", rec.Code)
	}
}
