package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAIRequest(t *testing.T) {
	r := NewRecorder()

	r.ObserveAIRequest("claude-sonnet-4-20250514", true, 120*time.Millisecond)
	r.ObserveAIRequest("claude-sonnet-4-20250514", false, 10*time.Millisecond)
	r.ObserveAIRequest("claude-sonnet-4-20250514", true, 300*time.Millisecond)

	success := testutil.ToFloat64(r.aiRequestsTotal.WithLabelValues("claude-sonnet-4-20250514", "success"))
	if success != 2 {
		t.Errorf("success count = %v, want 2", success)
	}
	failure := testutil.ToFloat64(r.aiRequestsTotal.WithLabelValues("claude-sonnet-4-20250514", "error"))
	if failure != 1 {
		t.Errorf("error count = %v, want 1", failure)
	}

	if n := testutil.CollectAndCount(r.aiRequestDuration); n == 0 {
		t.Error("duration histogram has no samples")
	}
}

func TestIncStoreMutation(t *testing.T) {
	r := NewRecorder()
	r.IncStoreMutation("journey", "create")
	r.IncStoreMutation("journey", "create")
	r.IncStoreMutation("proposal", "save")

	if got := testutil.ToFloat64(r.storeMutations.WithLabelValues("journey", "create")); got != 2 {
		t.Errorf("journey/create = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.storeMutations.WithLabelValues("proposal", "save")); got != 1 {
		t.Errorf("proposal/save = %v, want 1", got)
	}
}

func TestIndependentRegistries(t *testing.T) {
	// Constructing two recorders must not panic on duplicate
	// registration; each owns its own registry.
	a := NewRecorder()
	b := NewRecorder()
	a.IncStoreMutation("project", "create")
	if got := testutil.ToFloat64(b.storeMutations.WithLabelValues("project", "create")); got != 0 {
		t.Errorf("registries shared state: got %v", got)
	}
}
