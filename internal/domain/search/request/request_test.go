package request

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(filter.Expression{}, 0, 0, DefaultBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if !r.Filters().IsEmpty() {
		t.Error("expected empty filters")
	}
}

func TestNew_ZeroBoundsUseDefaults(t *testing.T) {
	r, err := New(filter.Expression{}, 5000, 0, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_LimitCapped(t *testing.T) {
	r, err := New(filter.Expression{}, 500, 10, Bounds{DefaultLimit: 20, MaxLimit: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != 200 {
		t.Errorf("Limit() = %d, want 200", r.Limit())
	}
	if r.Offset() != 10 {
		t.Errorf("Offset() = %d, want 10", r.Offset())
	}
}

func TestNew_NegativeOffset(t *testing.T) {
	_, err := New(filter.Expression{}, 10, -1, DefaultBounds)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "offset") {
		t.Errorf("error = %q", err)
	}
}
