package request

import (
	"context"
	"sync"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/stream"
)

// NetworkStateOf reduces a report to the single state the UI should show.
// Running wins over failed; the first failed Type in enumeration order
// provides the error.
func NetworkStateOf(r Report) domain.NetworkState {
	switch {
	case r.HasRunning():
		return domain.Loading()
	case r.HasError():
		if err := r.FirstError(); err != nil {
			return domain.Failure(err.Topic, err.Description)
		}
		return domain.Failure("Request failed", "unknown error")
	default:
		return domain.Success()
	}
}

// Subscription yields one NetworkState per helper transition.
// Slow consumers only see the newest state.
type Subscription struct {
	latest *stream.Latest[domain.NetworkState]
	reg    *Registration

	mu   sync.Mutex
	stop func() bool
	once sync.Once
}

// Subscribe registers a listener on h and converts every report it receives.
// The subscription ends when ctx is done or Cancel is called.
func Subscribe(ctx context.Context, h *Helper) *Subscription {
	s := &Subscription{latest: stream.NewLatest[domain.NetworkState]()}
	s.reg = h.AddListener(ListenerFunc(func(r Report) {
		s.latest.Offer(NetworkStateOf(r))
	}))

	stop := context.AfterFunc(ctx, s.Cancel)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	return s
}

// C returns the state channel; it is closed on cancellation
func (s *Subscription) C() <-chan domain.NetworkState {
	return s.latest.C()
}

// Cancel unregisters the listener and closes the channel.
// No state is observable on C after Cancel returns.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.latest.Close()
		s.reg.Remove()
	})

	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}
