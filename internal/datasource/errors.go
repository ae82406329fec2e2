package datasource

import (
	"context"
	"errors"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/request"
)

// ErrClosed is returned by operations on a closed source
var ErrClosed = errors.New("data source is closed")

// topicError is implemented by transport errors that know their user-facing heading
type topicError interface {
	Topic() string
}

// ErrorFrom converts any fetch, transform or persist failure into a request error
func ErrorFrom(t request.Type, err error) *request.Error {
	var reqErr *request.Error
	if errors.As(err, &reqErr) {
		e := *reqErr
		e.Type = t
		return &e
	}

	topic := "Request failed"
	var te topicError
	switch {
	case errors.As(err, &te):
		topic = te.Topic()
	case errors.Is(err, domain.ErrServerOffline):
		topic = "Connection problem"
	case errors.Is(err, domain.ErrAuthFailed):
		topic = "Authentication failed"
	case errors.Is(err, domain.ErrRateLimited):
		topic = "Too many requests"
	case errors.Is(err, domain.ErrNotFound):
		topic = "Not found"
	case errors.Is(err, context.DeadlineExceeded):
		topic = "Request timed out"
	}
	return &request.Error{Topic: topic, Description: err.Error(), Type: t}
}
