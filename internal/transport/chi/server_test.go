package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	healthuc "github.com/4RCAN3/EmoFlix/internal/usecase/health"
	recommenduc "github.com/4RCAN3/EmoFlix/internal/usecase/recommend"
)

// --- Mocks ---

type mockRecommender struct {
	recs     []movie.Recommendation
	err      error
	lastReq  recommenduc.Request
	panicMsg string
}

func (m *mockRecommender) Recommend(_ context.Context, req recommenduc.Request) ([]movie.Recommendation, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	m.lastReq = req
	return m.recs, m.err
}

func (m *mockRecommender) Homepage(_ context.Context) ([]movie.Recommendation, error) {
	return m.recs, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(rec *mockRecommender, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}}
	}
	s := NewServer(rec, health, zap.NewNop())
	return NewRouter(s, zap.NewNop(), nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestRecommend_OK(t *testing.T) {
	rec := &mockRecommender{recs: []movie.Recommendation{
		{TMDBID: 949, Title: "Heat", Score: 0.42, CorpusID: 7, Genres: []string{}, Cast: []string{}},
	}}
	h := newTestRouter(rec, nil)

	rr := do(t, h, http.MethodPost, "/recommend",
		`{"current_emotion":"bored","desired_emotion":"thrilled","top_k":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if rec.lastReq.CurrentEmotion != "bored" || rec.lastReq.DesiredEmotion != "thrilled" || rec.lastReq.TopK != 3 {
		t.Errorf("unexpected request: %+v", rec.lastReq)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var got []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["title"] != "Heat" || got[0]["score"] != 0.42 || got[0]["tmdb_id"] != float64(949) {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestRecommend_TopKForms(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"current_emotion":"a","desired_emotion":"b"}`, 0},
		{`{"current_emotion":"a","desired_emotion":"b","top_k":null}`, 0},
		{`{"current_emotion":"a","desired_emotion":"b","top_k":"8"}`, 8},
		{`{"current_emotion":"a","desired_emotion":"b","top_k":2}`, 2},
	}
	for _, tc := range tests {
		rec := &mockRecommender{}
		rr := do(t, newTestRouter(rec, nil), http.MethodPost, "/recommend", tc.body)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.body, rr.Code)
		}
		if rec.lastReq.TopK != tc.want {
			t.Errorf("%s: top_k = %d, want %d", tc.body, rec.lastReq.TopK, tc.want)
		}
	}
}

func TestRecommend_EmptyResultIsArray(t *testing.T) {
	rr := do(t, newTestRouter(&mockRecommender{}, nil), http.MethodPost, "/recommend",
		`{"current_emotion":"a","desired_emotion":"b"}`)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rr.Body)
	}
}

func TestRecommend_BadBody(t *testing.T) {
	for _, body := range []string{`{`, `{"top_k":"many"}`, `[]`} {
		rr := do(t, newTestRouter(&mockRecommender{}, nil), http.MethodPost, "/recommend", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeBadRequest {
			t.Errorf("%s: code = %s", body, resp.Code)
		}
	}
}

func TestRecommend_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     errorCode
		contains string
	}{
		{"validation", domain.NewValidation("current_emotion", "is required"),
			http.StatusBadRequest, codeValidationFailed, "current_emotion"},
		{"encoding", fmt.Errorf("encode: dial tcp 10.0.0.1: %w", domain.ErrEncodingFailure),
			http.StatusBadGateway, codeEmbeddingProvider, domain.ErrEncodingFailure.Error()},
		{"not loaded", domain.ErrCatalogNotLoaded,
			http.StatusServiceUnavailable, codeCatalogNotLoaded, domain.ErrCatalogNotLoaded.Error()},
		{"mismatch", domain.NewMismatch("dimension", 384, 768),
			http.StatusInternalServerError, codeCorpusMismatch, domain.ErrCorpusMismatch.Error()},
		{"unknown", errors.New("secret internals"),
			http.StatusInternalServerError, codeInternal, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&mockRecommender{err: tc.err}, nil)
			rr := do(t, h, http.MethodPost, "/recommend", `{"current_emotion":"a","desired_emotion":"b"}`)

			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			resp := decodeError(t, rr)
			if resp.Code != tc.code {
				t.Errorf("code = %s, want %s", resp.Code, tc.code)
			}
			if !strings.Contains(resp.Message, tc.contains) {
				t.Errorf("message %q does not contain %q", resp.Message, tc.contains)
			}
			if strings.Contains(resp.Message, "10.0.0.1") || strings.Contains(resp.Message, "secret") {
				t.Errorf("message leaks internals: %q", resp.Message)
			}
		})
	}
}

func TestRecommend_PanicRecovered(t *testing.T) {
	rr := do(t, newTestRouter(&mockRecommender{panicMsg: "boom"}, nil), http.MethodPost, "/recommend",
		`{"current_emotion":"a","desired_emotion":"b"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeInternal {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestHomepage(t *testing.T) {
	rec := &mockRecommender{recs: []movie.Recommendation{{Title: "A"}, {Title: "B"}}}
	rr := do(t, newTestRouter(rec, nil), http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got []movie.Recommendation
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		health := &mockHealth{report: healthuc.Report{
			Status: tc.status,
			Checks: map[string]healthuc.CheckResult{"catalog": healthuc.CheckOK},
		}}
		rr := do(t, newTestRouter(&mockRecommender{}, health), http.MethodGet, "/health", "")
		if rr.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.status, rr.Code, tc.want)
		}
		var resp healthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != string(tc.status) || resp.Checks["catalog"] != "ok" {
			t.Errorf("unexpected body: %+v", resp)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := do(t, newTestRouter(&mockRecommender{}, nil), http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected Prometheus exposition format")
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	h := newTestRouter(&mockRecommender{}, nil)
	if rr := do(t, h, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/recommend", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: status = %d", rr.Code)
	}
}
