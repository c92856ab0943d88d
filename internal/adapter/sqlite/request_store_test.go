package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/villagio/leaseflow/internal/domain"
)

func TestRequestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "u-1", domain.RoleUser)
	seedUnit(t, store, "unit-101", domain.UnitAvailable)
	req := seedRequest(t, store, "req-1", "u-1", "unit-101")

	got, err := store.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.Applicant != req.Applicant {
		t.Errorf("applicant = %+v, want %+v", got.Applicant, req.Applicant)
	}
	if got.LeaseDurationMonths != 12 {
		t.Errorf("duration = %d, want 12", got.LeaseDurationMonths)
	}
	if got.DecisionDate != nil {
		t.Error("decision date should be nil for a fresh request")
	}

	if _, err := store.GetByID(ctx, "req-999"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestStore_OnePendingPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "u-1", domain.RoleUser)
	seedUnit(t, store, "unit-101", domain.UnitAvailable)
	seedUnit(t, store, "unit-102", domain.UnitAvailable)
	seedRequest(t, store, "req-1", "u-1", "unit-101")

	// The partial index blocks a second pending row even for another unit.
	err := store.Create(ctx, domain.NewRentalRequest("req-2", "u-1", "unit-102", testApplicant, 6))
	assertGuardCodeIs(t, err, domain.CodePendingExists)

	// A decided request frees the slot.
	if err := store.Reject(ctx, domain.RejectionParams{
		RequestID: "req-1", AdminID: "admin-1", Reason: "incomplete documents",
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if err := store.Create(ctx, domain.NewRentalRequest("req-3", "u-1", "unit-102", testApplicant, 6)); err != nil {
		t.Fatalf("create after rejection failed: %v", err)
	}
}

func TestRequestStore_ConcurrentSubmissionsOneWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "u-1", domain.RoleUser)
	seedUnit(t, store, "unit-101", domain.UnitAvailable)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := domain.NewRentalRequest(fmt.Sprintf("req-%d", i), "u-1", "unit-101", testApplicant, 12)
			errs[i] = store.Create(ctx, req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case domain.GuardCodeOf(err) == domain.CodePendingExists:
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestRequestStore_LatestByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "u-1", domain.RoleUser)
	seedUser(t, store, "u-2", domain.RoleUser)
	seedUnit(t, store, "unit-101", domain.UnitAvailable)

	seedRequest(t, store, "req-1", "u-1", "unit-101")
	if err := store.Reject(ctx, domain.RejectionParams{
		RequestID: "req-1", AdminID: "admin-1", Reason: "incomplete documents",
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if err := store.Acknowledge(ctx, "req-1", "u-1"); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	seedRequest(t, store, "req-2", "u-1", "unit-101")

	latest, err := store.LatestByUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.ID != "req-2" {
		t.Errorf("latest = %q, want req-2", latest.ID)
	}

	if _, err := store.LatestByUser(ctx, "u-2"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound for user without requests, got %v", err)
	}
}

func TestRequestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUnit(t, store, "unit-101", domain.UnitAvailable)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("u-%d", i)
		seedUser(t, store, id, domain.RoleUser)
		seedRequest(t, store, fmt.Sprintf("req-%d", i), id, "unit-101")
	}
	if err := store.Reject(ctx, domain.RejectionParams{
		RequestID: "req-3", AdminID: "admin-1", Reason: "incomplete documents",
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	pending := domain.StatusPending
	reqs, err := store.List(ctx, domain.RequestFilter{Status: &pending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("pending count = %d, want 2", len(reqs))
	}

	reqs, err = store.List(ctx, domain.RequestFilter{UserID: "u-3"})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(reqs) != 1 || reqs[0].ID != "req-3" {
		t.Fatalf("list by user = %+v, want only req-3", reqs)
	}

	reqs, err = store.List(ctx, domain.RequestFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if len(reqs) != 2 {
		t.Errorf("paged count = %d, want 2", len(reqs))
	}
}

func TestRequestStore_Acknowledge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "u-1", domain.RoleUser)
	seedUnit(t, store, "unit-101", domain.UnitAvailable)
	seedRequest(t, store, "req-1", "u-1", "unit-101")

	// Pending requests cannot be acknowledged.
	assertGuardCodeIs(t, store.Acknowledge(ctx, "req-1", "u-1"), domain.CodeNotRejected)

	if err := store.Reject(ctx, domain.RejectionParams{
		RequestID: "req-1", AdminID: "admin-1", Reason: "incomplete documents",
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Foreign user is indistinguishable from a missing request.
	if err := store.Acknowledge(ctx, "req-1", "u-2"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound for foreign user, got %v", err)
	}

	if err := store.Acknowledge(ctx, "req-1", "u-1"); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	req, _ := store.GetByID(ctx, "req-1")
	if !req.RejectionAcknowledged {
		t.Error("acknowledged flag not set")
	}

	// Repeat acknowledgement is a no-op success.
	if err := store.Acknowledge(ctx, "req-1", "u-1"); err != nil {
		t.Errorf("repeat acknowledge failed: %v", err)
	}

	if err := store.Acknowledge(ctx, "req-999", "u-1"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}
