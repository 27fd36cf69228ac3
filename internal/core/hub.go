package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/metrics"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// Options tunes event handling.
type Options struct {
	// EnforceSender binds create's senderId to the connection's user and requires
	// update, delete and read to come from a participant of the conversation.
	EnforceSender bool
}

// Hub decodes frames from registered connections, applies them to the message
// store and fans the results out through the registry.
type Hub struct {
	registry *Registry
	store    store.MessageStore
	log      *zerolog.Logger
	metrics  *metrics.Metrics
	opts     Options
}

// NewHub creates a hub. logger and m may be nil.
func NewHub(registry *Registry, messages store.MessageStore, logger *zerolog.Logger, m *metrics.Metrics, opts Options) *Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry: registry,
		store:    messages,
		log:      logger,
		metrics:  m,
		opts:     opts,
	}
}

// Registry returns the connection registry the hub delivers through.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Connect registers conn as the live connection of userID.
func (h *Hub) Connect(userID int64, conn Conn) {
	if prev := h.registry.Register(userID, conn); prev != nil {
		h.log.Info().
			Int64("user_id", userID).
			Str("conn_id", conn.ID()).
			Str("replaced_conn_id", prev.ID()).
			Msg("connection replaced")
	}
	h.metrics.SetConnections(h.registry.Len())
}

// Disconnect unregisters conn if it is still the live connection of userID.
func (h *Hub) Disconnect(userID int64, conn Conn) {
	if h.registry.UnregisterConn(userID, conn) {
		h.metrics.SetConnections(h.registry.Len())
	}
}

// Logout drops whatever connection userID has registered.
func (h *Hub) Logout(userID int64) {
	if h.registry.Unregister(userID) {
		h.metrics.SetConnections(h.registry.Len())
	}
}

// HandleFrame processes one inbound frame from conn to completion.
// Failures are reported to conn only; the connection stays usable.
func (h *Hub) HandleFrame(ctx context.Context, userID int64, conn Conn, data []byte) {
	ev, kind, err := DecodeEvent(data)
	if err != nil {
		h.Fail(userID, conn, kind, err)
		return
	}

	var (
		frame      proto.Outbound
		recipients []int64
	)
	switch e := ev.(type) {
	case CreateMessage:
		frame, recipients, err = h.createMessage(ctx, userID, e)
	case UpdateMessage:
		frame, recipients, err = h.updateMessage(ctx, userID, e)
	case DeleteMessage:
		frame, recipients, err = h.deleteMessage(ctx, userID, e)
	case MarkRead:
		frame, recipients, err = h.markRead(ctx, userID, e)
	default:
		err = ErrUnknownEvent
	}
	if err != nil {
		h.Fail(userID, conn, kind, err)
		return
	}

	h.metrics.Frame(kind)
	h.broadcast(recipients, frame)
}

// Fail sends the error frame for err to conn alone.
func (h *Hub) Fail(userID int64, conn Conn, kind string, err error) {
	h.metrics.Rejected(rejectReason(err))

	ev := h.log.Warn()
	if !isClientError(err) {
		ev = h.log.Error()
	}
	ev.Err(err).Str("event", kind).Int64("user_id", userID).Str("conn_id", conn.ID()).Msg("frame rejected")

	h.sendTo(conn, proto.ErrorFrame(FailureMessage(kind, err)))
}

func (h *Hub) sendTo(conn Conn, frame proto.Outbound) {
	if !h.registry.IsOpen(conn) {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Str("type", frame.Type).Msg("marshal frame")
		return
	}
	if !conn.Send(data) {
		h.metrics.Skipped(metrics.SkipBufferFull, 1)
	}
}

func (h *Hub) broadcast(recipients []int64, frame proto.Outbound) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Str("type", frame.Type).Msg("marshal frame")
		return
	}

	d := DeliverToSet(h.registry, recipients, data)
	h.metrics.Delivered(d.Sent)
	h.metrics.Skipped(metrics.SkipAbsent, d.Absent)
	h.metrics.Skipped(metrics.SkipClosed, d.Closed)
	h.metrics.Skipped(metrics.SkipBufferFull, d.Dropped)
	if d.Dropped > 0 {
		h.log.Warn().Str("type", frame.Type).Int("dropped", d.Dropped).Msg("send buffer full, frames dropped")
	}
}

func isClientError(err error) bool {
	var pe *PayloadError
	return errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNotParticipant) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.As(err, &pe)
}

func rejectReason(err error) string {
	var pe *PayloadError
	switch {
	case errors.Is(err, ErrMalformedFrame):
		return metrics.ReasonMalformed
	case errors.Is(err, ErrUnknownEvent):
		return metrics.ReasonUnknownEvent
	case errors.Is(err, ErrRateLimited):
		return metrics.ReasonRateLimited
	case errors.Is(err, ErrNotParticipant):
		return metrics.ReasonForbidden
	case errors.As(err, &pe):
		return metrics.ReasonInvalid
	default:
		return metrics.ReasonStorage
	}
}
