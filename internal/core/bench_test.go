package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

func benchmarkDeliverToSet(b *testing.B, recipients int) {
	reg := NewRegistry()
	ids := make([]int64, 0, recipients)
	for i := range recipients {
		id := int64(i + 1)
		reg.Register(id, &discardConn{})
		ids = append(ids, id)
	}
	frame := []byte(`{"type":"message:created","payload":{"id":1,"text":"hello"}}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		DeliverToSet(reg, ids, frame)
	}
}

func BenchmarkDeliverToSet2(b *testing.B)   { benchmarkDeliverToSet(b, 2) }
func BenchmarkDeliverToSet100(b *testing.B) { benchmarkDeliverToSet(b, 100) }

func BenchmarkHandleCreate(b *testing.B) {
	hub := NewHub(nil, &benchStore{}, nil, nil, Options{})
	a, c := &discardConn{}, &discardConn{}
	hub.Connect(1, a)
	hub.Connect(2, c)
	frame := []byte(fmt.Sprintf(`{"type":"message:create","payload":{"text":"hi","senderId":%d,"receiverId":%d}}`, 1, 2))
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.HandleFrame(ctx, 1, a, frame)
	}
}

type discardConn struct{}

func (discardConn) ID() string       { return "discard" }
func (discardConn) Send([]byte) bool { return true }
func (discardConn) IsOpen() bool     { return true }

type benchStore struct{ stubStore }

func (benchStore) CreateMessage(_ context.Context, text string, senderID, receiverID int64) (*store.Message, error) {
	return &store.Message{ID: 1, Text: text, SenderID: senderID, ReceiverID: receiverID}, nil
}
