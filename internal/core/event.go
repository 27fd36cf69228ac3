package core

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Event is a decoded inbound frame. The set of implementations is closed.
type Event interface {
	Kind() string
	isEvent()
}

type CreateMessage struct{ proto.CreatePayload }

type UpdateMessage struct{ proto.UpdatePayload }

type DeleteMessage struct{ proto.DeletePayload }

type MarkRead struct{ proto.ReadPayload }

func (CreateMessage) Kind() string { return proto.InboundTypeCreate }
func (UpdateMessage) Kind() string { return proto.InboundTypeUpdate }
func (DeleteMessage) Kind() string { return proto.InboundTypeDelete }
func (MarkRead) Kind() string      { return proto.InboundTypeRead }

func (CreateMessage) isEvent() {}
func (UpdateMessage) isEvent() {}
func (DeleteMessage) isEvent() {}
func (MarkRead) isEvent()      {}

// DecodeEvent parses a raw frame into an Event.
// On failure the returned kind is the frame's type if it could be read.
func DecodeEvent(data []byte) (Event, string, error) {
	var in proto.Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		// Valid JSON that is not an envelope carries no known type.
		if json.Valid(data) {
			return nil, "", fmt.Errorf("%w: %w", ErrUnknownEvent, err)
		}
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	var (
		ev  Event
		err error
	)
	switch in.Type {
	case proto.InboundTypeCreate:
		var p proto.CreatePayload
		err = decodePayload(in, &p)
		ev = CreateMessage{p}
	case proto.InboundTypeUpdate:
		var p proto.UpdatePayload
		err = decodePayload(in, &p)
		ev = UpdateMessage{p}
	case proto.InboundTypeDelete:
		var p proto.DeletePayload
		err = decodePayload(in, &p)
		ev = DeleteMessage{p}
	case proto.InboundTypeRead:
		var p proto.ReadPayload
		err = decodePayload(in, &p)
		ev = MarkRead{p}
	default:
		return nil, in.Type, fmt.Errorf("%w: %q", ErrUnknownEvent, in.Type)
	}
	if err != nil {
		return nil, in.Type, err
	}
	return ev, in.Type, nil
}

func decodePayload(in proto.Inbound, dst any) error {
	if len(in.Payload) == 0 {
		return &PayloadError{Kind: in.Type, Err: fmt.Errorf("missing payload")}
	}
	if err := json.Unmarshal(in.Payload, dst); err != nil {
		return &PayloadError{Kind: in.Type, Err: err}
	}
	if err := validate.Struct(dst); err != nil {
		return &PayloadError{Kind: in.Type, Err: err}
	}
	return nil
}
