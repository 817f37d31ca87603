package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"outgo/internal/api"
	"outgo/internal/core"
	"outgo/internal/store"
)

// fakeBackend is a scriptable Backend: each op either succeeds with a
// canned response or fails with the configured error.
type fakeBackend struct {
	records   []core.Expense
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	nextID    string
	calls     int
}

func (f *fakeBackend) List(ctx context.Context) ([]core.Expense, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeBackend) Create(ctx context.Context, draft core.Draft) (core.Expense, error) {
	f.calls++
	if f.createErr != nil {
		return core.Expense{}, f.createErr
	}
	return core.Expense{
		ID:          f.nextID,
		Date:        draft.Date,
		Description: draft.Description,
		Amount:      draft.Amount,
		Category:    draft.Category,
	}, nil
}

func (f *fakeBackend) Update(ctx context.Context, id string, draft core.Draft) (core.Expense, error) {
	f.calls++
	if f.updateErr != nil {
		return core.Expense{}, f.updateErr
	}
	return core.Expense{
		ID:          id,
		Date:        draft.Date,
		Description: draft.Description,
		Amount:      draft.Amount,
		Category:    draft.Category,
	}, nil
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.calls++
	return f.deleteErr
}

func lunchDraft() core.Draft {
	return core.Draft{
		Date:        core.NewDate(2024, 3, 15),
		Description: "Lunch",
		Amount:      decimal.RequireFromString("42.50"),
		Category:    core.Food,
	}
}

func newCoordinator(backend Backend) *Coordinator {
	return New(backend, store.New(), nil)
}

func TestAddSuccess(t *testing.T) {
	backend := &fakeBackend{nextID: "srv-1"}
	c := newCoordinator(backend)

	req, err := c.StartAdd(lunchDraft())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st := c.State(KindAdd); st.Phase != InFlight {
		t.Fatalf("phase after start: %v", st.Phase)
	}

	snap, live := c.Apply(c.Do(context.Background(), req))
	if !live {
		t.Fatalf("result should be live")
	}
	if len(snap) != 1 || snap[0].ID != "srv-1" {
		t.Fatalf("store after add: %+v", snap)
	}
	if st := c.State(KindAdd); st.Phase != Idle || st.Err != nil {
		t.Fatalf("state after success: %+v", st)
	}

	// The new snapshot drives the aggregates: Food carries the total,
	// every other category is zero.
	for _, ct := range core.CategoryTotals(snap) {
		want := "0"
		if ct.Category == core.Food {
			want = "42.50"
		}
		if !ct.Total.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%s: got %s, want %s", ct.Category, ct.Total, want)
		}
	}
}

func TestAddFailureLeavesStoreUntouched(t *testing.T) {
	backend := &fakeBackend{createErr: &api.StatusError{Method: "POST", Path: "/expenses", StatusCode: 500}}
	c := newCoordinator(backend)

	req, err := c.StartAdd(lunchDraft())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, live := c.Apply(c.Do(context.Background(), req))
	if !live {
		t.Fatalf("result should be live")
	}
	if len(snap) != 0 {
		t.Fatalf("failed add must not mutate the store: %+v", snap)
	}
	st := c.State(KindAdd)
	if st.Phase != Failed || st.Err == nil {
		t.Fatalf("state after failure: %+v", st)
	}
	if !api.IsStatus(st.Err) {
		t.Fatalf("expected backend status error, got %v", st.Err)
	}

	// Failed admits a resubmit: the user retries manually.
	backend.createErr = nil
	backend.nextID = "srv-2"
	if _, err := c.StartAdd(lunchDraft()); err != nil {
		t.Fatalf("resubmit after failure: %v", err)
	}
}

func TestSubmitWhileInFlightRejected(t *testing.T) {
	c := newCoordinator(&fakeBackend{nextID: "srv-1"})
	if _, err := c.StartAdd(lunchDraft()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.StartAdd(lunchDraft()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if !c.SubmitPending() {
		t.Fatalf("SubmitPending should be true while add is in flight")
	}
}

func TestLocalValidationBlocksRequest(t *testing.T) {
	backend := &fakeBackend{nextID: "srv-1"}
	c := newCoordinator(backend)

	missingDate := lunchDraft()
	missingDate.Date = core.Date{}
	if _, err := c.StartAdd(missingDate); !errors.Is(err, core.ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}

	blankDescription := lunchDraft()
	blankDescription.Description = "   "
	if _, err := c.StartAdd(blankDescription); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}

	if backend.calls != 0 {
		t.Fatalf("no request may be sent on local validation failure, got %d calls", backend.calls)
	}
	if st := c.State(KindAdd); st.Phase != Idle {
		t.Fatalf("validation failure must not claim the slot: %+v", st)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	c := newCoordinator(&fakeBackend{})
	c.Store().ReplaceAll([]core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
		{ID: "b", Date: core.NewDate(2024, 3, 2), Description: "Bus", Amount: decimal.RequireFromString("2.50"), Category: core.Transportation},
	})

	draft := core.Draft{
		Date:        core.NewDate(2024, 3, 1),
		Description: "Rent march",
		Amount:      decimal.RequireFromString("950"),
		Category:    core.Housing,
	}
	req, err := c.StartUpdate("a", draft)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, _ := c.Apply(c.Do(context.Background(), req))
	if len(snap) != 2 || snap[0].ID != "a" || snap[0].Description != "Rent march" {
		t.Fatalf("update not applied in place: %+v", snap)
	}
}

func TestUpdateFailureKeepsPreviousCopy(t *testing.T) {
	backend := &fakeBackend{updateErr: &api.StatusError{Method: "PUT", Path: "/expenses/a", StatusCode: 500}}
	c := newCoordinator(backend)
	c.Store().ReplaceAll([]core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
	})

	req, err := c.StartUpdate("a", lunchDraft())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, _ := c.Apply(c.Do(context.Background(), req))
	if snap[0].Description != "Rent" {
		t.Fatalf("failed update must leave the previous copy: %+v", snap[0])
	}
}

func TestDeleteSuccess(t *testing.T) {
	c := newCoordinator(&fakeBackend{})
	c.Store().ReplaceAll([]core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
	})

	req, err := c.StartDelete("a")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id, pending := c.DeletePending(); !pending || id != "a" {
		t.Fatalf("delete pending: id=%q pending=%v", id, pending)
	}
	snap, _ := c.Apply(c.Do(context.Background(), req))
	if len(snap) != 0 {
		t.Fatalf("store after delete: %+v", snap)
	}
	if _, pending := c.DeletePending(); pending {
		t.Fatalf("delete still pending after apply")
	}
}

func TestDeleteVanishedRecord(t *testing.T) {
	// The record was already deleted elsewhere: the backend answers 404.
	backend := &fakeBackend{deleteErr: &api.StatusError{Method: "DELETE", Path: "/expenses/a", StatusCode: 404}}
	c := newCoordinator(backend)
	c.Store().ReplaceAll([]core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
	})

	req, err := c.StartDelete("a")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, live := c.Apply(c.Do(context.Background(), req))
	if !live {
		t.Fatalf("result should be live")
	}
	if len(snap) != 1 {
		t.Fatalf("store must be unchanged on delete failure: %+v", snap)
	}
	if st := c.State(KindDelete); st.Phase != Failed || st.Err == nil {
		t.Fatalf("state after failed delete: %+v", st)
	}
}

func TestSecondDeleteRejectedWhilePending(t *testing.T) {
	c := newCoordinator(&fakeBackend{})
	c.Store().ReplaceAll([]core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
		{ID: "b", Date: core.NewDate(2024, 3, 2), Description: "Bus", Amount: decimal.RequireFromString("2.50"), Category: core.Transportation},
	})
	if _, err := c.StartDelete("a"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.StartDelete("b"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	backend := &fakeBackend{createErr: context.DeadlineExceeded}
	c := newCoordinator(backend)

	// First add times out and is applied as a failure.
	req1, err := c.StartAdd(lunchDraft())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res1 := c.Do(context.Background(), req1)
	c.Apply(res1)

	// The user resubmits; a new tag is live now.
	backend.createErr = nil
	backend.nextID = "srv-2"
	req2, err := c.StartAdd(lunchDraft())
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	// The first response straggles in again: it must be discarded.
	snap, live := c.Apply(res1)
	if live {
		t.Fatalf("superseded result must not be live")
	}
	if len(snap) != 0 {
		t.Fatalf("stale apply must not mutate the store: %+v", snap)
	}
	if st := c.State(KindAdd); st.Phase != InFlight || st.Tag != req2.Tag {
		t.Fatalf("live request clobbered by stale result: %+v", st)
	}

	// The live request still completes normally.
	snap, live = c.Apply(c.Do(context.Background(), req2))
	if !live || len(snap) != 1 || snap[0].ID != "srv-2" {
		t.Fatalf("live apply: live=%v snap=%+v", live, snap)
	}
}

func TestLoadReplacesStore(t *testing.T) {
	backend := &fakeBackend{records: []core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Description: "Rent", Amount: decimal.RequireFromString("900"), Category: core.Housing},
	}}
	c := newCoordinator(backend)
	c.Store().Upsert(core.Expense{ID: "stale", Date: core.NewDate(2020, 1, 1), Description: "old", Amount: decimal.Zero, Category: core.Other})

	snap, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap) != 1 || snap[0].ID != "a" {
		t.Fatalf("load did not replace store: %+v", snap)
	}
}

func TestLoadFailure(t *testing.T) {
	backend := &fakeBackend{listErr: context.DeadlineExceeded}
	c := newCoordinator(backend)
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
