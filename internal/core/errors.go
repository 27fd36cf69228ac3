package core

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

var (
	// ErrMalformedFrame is returned when a frame is not valid JSON.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrUnknownEvent is returned for valid JSON that does not carry a recognized type.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrNotParticipant is returned when sender enforcement is on and the actor
	// is not part of the conversation being touched.
	ErrNotParticipant = errors.New("not a participant")
	// ErrRateLimited is returned when a connection sends frames faster than allowed.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// PayloadError reports a payload that is missing required fields or has the wrong shape.
type PayloadError struct {
	Kind string
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Kind, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

var failureVerbs = map[string]string{
	proto.InboundTypeCreate: "create",
	proto.InboundTypeUpdate: "update",
	proto.InboundTypeDelete: "delete",
	proto.InboundTypeRead:   "read",
}

// FailureMessage converts an error raised while handling an event of the given kind
// into the text of the error frame sent back to the client.
func FailureMessage(kind string, err error) string {
	switch {
	case errors.Is(err, ErrMalformedFrame):
		return "Invalid JSON format"
	case errors.Is(err, ErrUnknownEvent):
		return "Unknown event type"
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded"
	case errors.Is(err, store.ErrUnknownRequest):
		return "Database request error"
	}

	if verb, ok := failureVerbs[kind]; ok {
		return "Failed to " + verb + " message"
	}
	return "Failed to process message"
}
