package request

// Report is an immutable snapshot of every Type's status.
// A failed Type always carries an Error.
type Report struct {
	statuses [numTypes]Status
	errs     [numTypes]*Error
}

// Status returns the status recorded for t
func (r Report) Status(t Type) Status {
	if !t.valid() {
		return StatusSuccess
	}
	return r.statuses[t]
}

// ErrorFor returns the error of a failed Type, or nil
func (r Report) ErrorFor(t Type) *Error {
	if !t.valid() {
		return nil
	}
	return r.errs[t]
}

// HasRunning is true if any Type is running
func (r Report) HasRunning() bool {
	for _, s := range r.statuses {
		if s == StatusRunning {
			return true
		}
	}
	return false
}

// HasError is true if any Type failed
func (r Report) HasError() bool {
	for _, s := range r.statuses {
		if s == StatusFailed {
			return true
		}
	}
	return false
}

// FirstError returns the error of the first failed Type in enumeration order
func (r Report) FirstError() *Error {
	for _, t := range Types() {
		if r.statuses[t] == StatusFailed && r.errs[t] != nil {
			return r.errs[t]
		}
	}
	return nil
}

// Failed returns every failed Type in enumeration order
func (r Report) Failed() []Type {
	var failed []Type
	for _, t := range Types() {
		if r.statuses[t] == StatusFailed {
			failed = append(failed, t)
		}
	}
	return failed
}

func (r Report) String() string {
	return "initial=" + r.statuses[Initial].String() +
		" before=" + r.statuses[Before].String() +
		" after=" + r.statuses[After].String()
}
