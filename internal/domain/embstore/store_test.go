package embstore

import (
	"errors"
	"testing"

	"github.com/4RCAN3/EmoFlix/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	s, err := New([][]float32{{1, 0}, {0, 1}, {-1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 || s.Dim() != 2 {
		t.Fatalf("Len()=%d Dim()=%d", s.Len(), s.Dim())
	}
	if s.Vector(2)[0] != -1 {
		t.Errorf("Vector(2) = %v", s.Vector(2))
	}
}

func TestNew_Empty(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 || s.Dim() != 0 {
		t.Errorf("expected empty store, got Len()=%d Dim()=%d", s.Len(), s.Dim())
	}
}

func TestNew_DimensionMismatch(t *testing.T) {
	_, err := New([][]float32{{1, 0}, {1, 0, 0}})
	if !errors.Is(err, domain.ErrCorpusMismatch) {
		t.Fatalf("expected ErrCorpusMismatch, got %v", err)
	}
}

func TestNew_ZeroDimension(t *testing.T) {
	_, err := New([][]float32{{}})
	if !errors.Is(err, domain.ErrCorpusMismatch) {
		t.Fatalf("expected ErrCorpusMismatch, got %v", err)
	}
}

func TestCheckAligned(t *testing.T) {
	s, _ := New([][]float32{{1}, {2}})

	if err := s.CheckAligned(2); err != nil {
		t.Errorf("expected aligned, got %v", err)
	}

	err := s.CheckAligned(3)
	var me *domain.MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if me.Expected != 3 || me.Got != 2 {
		t.Errorf("unexpected mismatch: %+v", me)
	}
}
