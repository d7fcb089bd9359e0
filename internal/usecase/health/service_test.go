package health

import (
	"context"
	"errors"
	"testing"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCatalogs struct {
	loaded bool
}

func (m *mockCatalogs) Current() (*catalog.Catalog, error) {
	if !m.loaded {
		return nil, domain.ErrCatalogNotLoaded
	}
	c, _ := corpus.New(nil)
	s, _ := embstore.New(nil)
	return catalog.New(c, s)
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalogs{loaded: true}, &mockPinger{}, &mockEmbeddingChecker{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"catalog", "cache", "embedding", "metadata"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_OptionalFailuresDegrade(t *testing.T) {
	tests := []struct {
		name   string
		svc    *Service
		failed string
	}{
		{
			"cache",
			New(&mockCatalogs{loaded: true}, &mockPinger{err: errors.New("conn refused")}, &mockEmbeddingChecker{}, nil),
			"cache",
		},
		{
			"embedding",
			New(&mockCatalogs{loaded: true}, nil, &mockEmbeddingChecker{err: errors.New("timeout")}, nil),
			"embedding",
		},
		{
			"metadata",
			New(&mockCatalogs{loaded: true}, nil, nil, &mockPinger{err: errors.New("401")}),
			"metadata",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.svc.Check(context.Background())
			if r.Status != Degraded {
				t.Errorf("expected %q, got %q", Degraded, r.Status)
			}
			if r.Checks[tc.failed] != CheckError {
				t.Errorf("expected %s %q, got %q", tc.failed, CheckError, r.Checks[tc.failed])
			}
		})
	}
}

func TestCheck_NoCatalogIsUnhealthy(t *testing.T) {
	svc := New(&mockCatalogs{}, &mockPinger{err: errors.New("down")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["catalog"] != CheckError {
		t.Errorf("expected catalog %q, got %q", CheckError, r.Checks["catalog"])
	}
}

func TestCheck_NilOptionalsSkipped(t *testing.T) {
	svc := New(&mockCatalogs{loaded: true}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the catalog check, got %v", r.Checks)
	}
}
