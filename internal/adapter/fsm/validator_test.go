package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/villagio/leaseflow/internal/adapter/fsm"
	"github.com/villagio/leaseflow/internal/domain"
)

func TestValidator_AllRequestTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.Transitions {
		dst, err := v.ApplyRequest(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("ApplyRequest(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("ApplyRequest(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_AllUnitTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.UnitTransitions {
		dst, err := v.ApplyUnit(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("ApplyUnit(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("ApplyUnit(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_ApprovedIsTerminal(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, event := range []domain.Event{domain.EventApprove, domain.EventReject} {
		_, err := v.ApplyRequest(ctx, domain.StatusApproved, event)
		var trErr *domain.TransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("ApplyRequest(approved, %q): expected TransitionError, got %v", event, err)
		}
		if trErr.Current != string(domain.StatusApproved) {
			t.Errorf("current = %q, want %q", trErr.Current, domain.StatusApproved)
		}
	}
}

func TestValidator_RejectedIsTerminal(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	_, err := v.ApplyRequest(ctx, domain.StatusRejected, domain.EventApprove)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != string(domain.EventApprove) {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventApprove)
	}
}

func TestValidator_OccupiedUnitCannotBeOccupied(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	_, err := v.ApplyUnit(ctx, domain.UnitOccupied, domain.UnitEventOccupy)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Current != string(domain.UnitOccupied) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.UnitOccupied)
	}
}

func TestValidator_MaintenanceUnitCannotBeOccupied(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	_, err := v.ApplyUnit(ctx, domain.UnitMaintenance, domain.UnitEventOccupy)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}
