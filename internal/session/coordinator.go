// Package session coordinates mutations against the expense backend.
//
// Every create, update, and delete goes through a three-step protocol:
// Start (validate, claim the operation slot, mint a request tag),
// Do (the network round trip, safe to run off the event loop), and
// Apply (commit the confirmed result to the record store, on the event
// loop). The store is never touched speculatively; a failed request
// leaves it exactly as it was.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"outgo/internal/core"
	applog "outgo/internal/log"
	"outgo/internal/store"
)

// Kind names one of the three independently tracked operation state
// machines.
type Kind int

const (
	KindAdd Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return applog.OpCreate
	case KindUpdate:
		return applog.OpUpdate
	case KindDelete:
		return applog.OpDelete
	default:
		return "unknown"
	}
}

// Phase is the explicit state of one operation kind. Failed behaves
// like Idle for admission purposes: the user may resubmit, and the form
// keeps its values.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Failed
)

// OpState is the tagged state of one operation kind. Tag identifies the
// live request while InFlight; Target is the record id for update and
// delete; Err carries the last failure while Failed.
type OpState struct {
	Phase  Phase
	Tag    uuid.UUID
	Target string
	Err    error
}

// ErrBusy rejects a submit while an operation of the same kind is
// already in flight. Submit controls are disabled in the UI, so hitting
// this means a race the state machine is there to close.
var ErrBusy = errors.New("operation already in flight")

// Backend is the slice of the REST client the coordinator needs.
type Backend interface {
	List(ctx context.Context) ([]core.Expense, error)
	Create(ctx context.Context, draft core.Draft) (core.Expense, error)
	Update(ctx context.Context, id string, draft core.Draft) (core.Expense, error)
	Delete(ctx context.Context, id string) error
}

// Request is a claimed, validated operation ready to be executed.
type Request struct {
	Kind  Kind
	Tag   uuid.UUID
	ID    string // target record id for update/delete
	Draft core.Draft
}

// Result is the outcome of executing a Request.
type Result struct {
	Req    Request
	Record core.Expense // backend-confirmed record for add/update
	Err    error
}

// Coordinator owns the record store and the three operation state
// machines. Start and Apply must be called from the same goroutine
// (the UI event loop); Do may run anywhere.
type Coordinator struct {
	backend Backend
	store   *store.RecordStore
	logger  *applog.Logger

	ops [3]OpState
}

func New(backend Backend, recordStore *store.RecordStore, logger *applog.Logger) *Coordinator {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Coordinator{
		backend: backend,
		store:   recordStore,
		logger:  logger.WithComponent(applog.ComponentSession),
	}
}

// Store exposes the record store for read access.
func (c *Coordinator) Store() *store.RecordStore {
	return c.store
}

// State returns the current state of one operation kind.
func (c *Coordinator) State(kind Kind) OpState {
	return c.ops[kind]
}

// DeletePending reports whether a delete is in flight and for which
// record. The UI disables every delete (and edit) action while true.
func (c *Coordinator) DeletePending() (string, bool) {
	st := c.ops[KindDelete]
	return st.Target, st.Phase == InFlight
}

// SubmitPending reports whether an add or update is in flight.
func (c *Coordinator) SubmitPending() bool {
	return c.ops[KindAdd].Phase == InFlight || c.ops[KindUpdate].Phase == InFlight
}

// Load fetches the full record set and resets the store to mirror it.
func (c *Coordinator) Load(ctx context.Context) ([]core.Expense, error) {
	records, err := c.backend.List(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "load failed", applog.FieldError, err)
		return nil, err
	}
	c.logger.InfoContext(ctx, "records loaded", applog.FieldRecordCount, len(records))
	return c.store.ReplaceAll(records), nil
}

// StartAdd validates the draft and claims the add slot.
func (c *Coordinator) StartAdd(draft core.Draft) (Request, error) {
	if err := draft.Validate(); err != nil {
		return Request{}, err
	}
	return c.claim(KindAdd, "", draft)
}

// StartUpdate validates the draft and claims the update slot for the
// record with the given id.
func (c *Coordinator) StartUpdate(id string, draft core.Draft) (Request, error) {
	if err := draft.Validate(); err != nil {
		return Request{}, err
	}
	return c.claim(KindUpdate, id, draft)
}

// StartDelete claims the delete slot for the record with the given id.
// At most one delete is tracked at a time.
func (c *Coordinator) StartDelete(id string) (Request, error) {
	return c.claim(KindDelete, id, core.Draft{})
}

func (c *Coordinator) claim(kind Kind, id string, draft core.Draft) (Request, error) {
	if c.ops[kind].Phase == InFlight {
		return Request{}, ErrBusy
	}
	req := Request{Kind: kind, Tag: uuid.New(), ID: id, Draft: draft}
	c.ops[kind] = OpState{Phase: InFlight, Tag: req.Tag, Target: id}
	c.logger.Debug("operation started",
		applog.FieldOperation, kind.String(),
		applog.FieldRequestID, req.Tag.String(),
		applog.FieldExpenseID, id)
	return req, nil
}

// Do executes the request against the backend. It mutates nothing;
// the outcome is committed by Apply.
func (c *Coordinator) Do(ctx context.Context, req Request) Result {
	switch req.Kind {
	case KindAdd:
		record, err := c.backend.Create(ctx, req.Draft)
		return Result{Req: req, Record: record, Err: err}
	case KindUpdate:
		record, err := c.backend.Update(ctx, req.ID, req.Draft)
		return Result{Req: req, Record: record, Err: err}
	case KindDelete:
		return Result{Req: req, Err: c.backend.Delete(ctx, req.ID)}
	default:
		return Result{Req: req, Err: errors.New("unknown operation kind")}
	}
}

// Apply commits a result. It returns the store snapshot to recompute
// views from, and whether the result was live. A result whose tag no
// longer matches the in-flight state (a late response after the
// operation was superseded) is discarded without touching the store.
func (c *Coordinator) Apply(res Result) ([]core.Expense, bool) {
	kind := res.Req.Kind
	st := c.ops[kind]
	if st.Phase != InFlight || st.Tag != res.Req.Tag {
		c.logger.Warn("stale result discarded",
			applog.FieldOperation, kind.String(),
			applog.FieldRequestID, res.Req.Tag.String())
		return c.store.All(), false
	}

	if res.Err != nil {
		c.ops[kind] = OpState{Phase: Failed, Target: res.Req.ID, Err: res.Err}
		c.logger.Error("operation failed",
			applog.FieldOperation, kind.String(),
			applog.FieldExpenseID, res.Req.ID,
			applog.FieldError, res.Err)
		return c.store.All(), true
	}

	c.ops[kind] = OpState{Phase: Idle}
	switch kind {
	case KindDelete:
		c.logger.Info("expense deleted", applog.FieldExpenseID, res.Req.ID)
		return c.store.Remove(res.Req.ID), true
	default:
		c.logger.Info("expense saved",
			applog.FieldOperation, kind.String(),
			applog.FieldExpenseID, res.Record.ID,
			applog.FieldExpenseDesc, res.Record.Description,
			applog.FieldAmount, res.Record.Amount.String(),
			applog.FieldCategory, string(res.Record.Category))
		return c.store.Upsert(res.Record), true
	}
}
