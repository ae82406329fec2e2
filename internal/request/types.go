// Package request tracks the status of paged fetches and broadcasts every change.
package request

import "fmt"

// Type is the direction of a paged fetch
type Type int

const (
	Initial Type = iota // first page, or a full refresh
	Before              // page preceding what is loaded
	After               // page following what is loaded
)

const numTypes = 3

// Types returns every Type in enumeration order
func Types() []Type {
	return []Type{Initial, Before, After}
}

func (t Type) String() string {
	switch t {
	case Initial:
		return "initial"
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t Type) valid() bool {
	return t >= 0 && int(t) < numTypes
}

// Status is the state of the latest request of a given Type
type Status int

const (
	StatusSuccess Status = iota
	StatusRunning
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRunning:
		return "running"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Error describes a failed request in user-facing terms
type Error struct {
	Topic       string
	Description string
	Type        Type
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request failed: %s: %s", e.Type, e.Topic, e.Description)
}
