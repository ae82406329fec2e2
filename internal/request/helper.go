package request

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Listener is notified with the full report after every status transition
type Listener interface {
	OnStatusChange(report Report)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(report Report)

func (f ListenerFunc) OnStatusChange(report Report) { f(report) }

// Operation performs one request. It must eventually report through cb,
// unless its context was cancelled.
type Operation func(cb Callback)

// Callback records the outcome of an Operation for the Type it was started with
type Callback struct {
	helper *Helper
	typ    Type
}

// Type returns the request type this callback reports for
func (c Callback) Type() Type { return c.typ }

// RecordSuccess marks the request as successful
func (c Callback) RecordSuccess() { c.helper.RecordSuccess(c.typ) }

// RecordFailure marks the request as failed
func (c Callback) RecordFailure(err *Error) { c.helper.RecordFailure(c.typ, err) }

// Registration is the handle returned by AddListener
type Registration struct {
	helper   *Helper
	listener Listener
	removed  atomic.Bool
}

// Remove unregisters the listener. No delivery starts after Remove returns.
func (r *Registration) Remove() bool {
	if r == nil {
		return false
	}
	return r.helper.RemoveListener(r)
}

// Helper serializes status transitions for the fixed set of Types and
// broadcasts each one to registered listeners.
//
// Dispatch is serial: whichever goroutine finds no dispatch in progress
// delivers queued reports in transition order until the queue is empty.
// Transitions made from inside a listener are queued behind the current one.
type Helper struct {
	logger *slog.Logger

	mu       sync.Mutex
	statuses [numTypes]Status
	errs     [numTypes]*Error
	ops      [numTypes]Operation
	entries  []*Registration // copy-on-write
	pending  []Report
	draining bool
}

// NewHelper creates a helper with every Type in StatusSuccess
func NewHelper(logger *slog.Logger) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Helper{logger: logger}
}

// Report returns the current snapshot
func (h *Helper) Report() Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// AddListener registers l for every subsequent transition
func (h *Helper) AddListener(l Listener) *Registration {
	reg := &Registration{helper: h, listener: l}
	h.mu.Lock()
	entries := make([]*Registration, len(h.entries), len(h.entries)+1)
	copy(entries, h.entries)
	h.entries = append(entries, reg)
	h.mu.Unlock()
	return reg
}

// RemoveListener unregisters reg. Returns false if it was not registered.
func (h *Helper) RemoveListener(reg *Registration) bool {
	if reg == nil || reg.helper != h {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e == reg {
			reg.removed.Store(true)
			entries := make([]*Registration, 0, len(h.entries)-1)
			entries = append(entries, h.entries[:i]...)
			h.entries = append(entries, h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RunIfNotRunning starts op for t unless a request of that Type is in flight.
// Listeners see the running status before op is invoked.
func (h *Helper) RunIfNotRunning(t Type, op Operation) bool {
	if !t.valid() || op == nil {
		return false
	}
	h.mu.Lock()
	if h.statuses[t] == StatusRunning {
		h.mu.Unlock()
		h.logger.Debug("request already running", "type", t)
		return false
	}
	h.statuses[t] = StatusRunning
	h.errs[t] = nil
	h.ops[t] = op
	h.enqueueLocked()
	h.mu.Unlock()

	h.dispatch()
	op(Callback{helper: h, typ: t})
	return true
}

// RecordSuccess transitions t to StatusSuccess and clears its error
func (h *Helper) RecordSuccess(t Type) {
	h.record(t, StatusSuccess, nil)
}

// RecordFailure transitions t to StatusFailed with err
func (h *Helper) RecordFailure(t Type, err *Error) {
	if err == nil {
		err = &Error{Topic: "Request failed", Description: "unknown error", Type: t}
	}
	h.record(t, StatusFailed, err)
}

// RetryAllFailed re-runs the last operation of each failed Type.
// Returns true if anything was retried.
func (h *Helper) RetryAllFailed() bool {
	type retry struct {
		typ Type
		op  Operation
	}
	var retries []retry

	h.mu.Lock()
	for _, t := range Types() {
		if h.statuses[t] == StatusFailed && h.ops[t] != nil {
			retries = append(retries, retry{typ: t, op: h.ops[t]})
		}
	}
	h.mu.Unlock()

	retried := false
	for _, r := range retries {
		h.logger.Debug("retrying failed request", "type", r.typ)
		if h.RunIfNotRunning(r.typ, r.op) {
			retried = true
		}
	}
	return retried
}

// Reset returns each type to StatusSuccess and forgets its error and last
// operation, so RetryAllFailed no longer re-runs it. Listeners get one
// transition, and only if a status or error actually changed.
// A request still in flight for a reset type must not record its result.
func (h *Helper) Reset(types ...Type) {
	h.mu.Lock()
	changed := false
	for _, t := range types {
		if !t.valid() {
			continue
		}
		if h.statuses[t] != StatusSuccess || h.errs[t] != nil {
			changed = true
		}
		h.statuses[t] = StatusSuccess
		h.errs[t] = nil
		h.ops[t] = nil
	}
	if changed {
		h.enqueueLocked()
	}
	h.mu.Unlock()

	if changed {
		h.dispatch()
	}
}

func (h *Helper) record(t Type, status Status, err *Error) {
	if !t.valid() {
		return
	}
	h.mu.Lock()
	if h.statuses[t] != StatusRunning {
		h.logger.Warn("recording result for a request that is not running",
			"type", t, "status", status, "current", h.statuses[t])
	}
	h.statuses[t] = status
	h.errs[t] = err
	h.enqueueLocked()
	h.mu.Unlock()

	h.dispatch()
}

func (h *Helper) snapshotLocked() Report {
	return Report{statuses: h.statuses, errs: h.errs}
}

func (h *Helper) enqueueLocked() {
	h.pending = append(h.pending, h.snapshotLocked())
}

// dispatch delivers queued reports unless another goroutine already is
func (h *Helper) dispatch() {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true
	h.mu.Unlock()

	for {
		h.mu.Lock()
		if len(h.pending) == 0 {
			h.draining = false
			h.mu.Unlock()
			return
		}
		report := h.pending[0]
		h.pending = h.pending[1:]
		entries := h.entries
		h.mu.Unlock()

		for _, reg := range entries {
			h.deliver(reg, report)
		}
	}
}

func (h *Helper) deliver(reg *Registration, report Report) {
	if reg.removed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("status listener panicked", "panic", r, "report", report.String())
		}
	}()
	reg.listener.OnStatusChange(report)
}
