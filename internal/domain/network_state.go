package domain

// StateKind tags the variant held by a NetworkState
type StateKind int

const (
	StateIdle StateKind = iota
	StateLoading
	StateSuccess
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// NetworkState is what the UI should currently show for a request.
// It is a comparable value; replace it rather than mutating it.
type NetworkState struct {
	Kind    StateKind
	Heading string // Error only
	Message string // Error only
}

// Idle is the state before anything was requested
func Idle() NetworkState { return NetworkState{Kind: StateIdle} }

// Loading means at least one request is in flight
func Loading() NetworkState { return NetworkState{Kind: StateLoading} }

// Success means every request settled without failure
func Success() NetworkState { return NetworkState{Kind: StateSuccess} }

// Failure builds an Error state
func Failure(heading, message string) NetworkState {
	return NetworkState{Kind: StateError, Heading: heading, Message: message}
}

func (s NetworkState) IsLoading() bool { return s.Kind == StateLoading }
func (s NetworkState) IsError() bool   { return s.Kind == StateError }
func (s NetworkState) IsSuccess() bool { return s.Kind == StateSuccess }

func (s NetworkState) String() string {
	if s.Kind == StateError {
		return "error: " + s.Heading + ": " + s.Message
	}
	return s.Kind.String()
}
