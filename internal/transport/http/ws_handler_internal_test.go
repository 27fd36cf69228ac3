package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/coder/websocket"
)

func TestCloseStatus(t *testing.T) {
	peerClose := func(code websocket.StatusCode) error {
		return fmt.Errorf("read: %w", websocket.CloseError{Code: code})
	}

	tests := []struct {
		name string
		err  error
		want websocket.StatusCode
	}{
		{name: "nil", err: nil, want: websocket.StatusNormalClosure},
		{name: "canceled", err: context.Canceled, want: websocket.StatusNormalClosure},
		{name: "eof", err: io.EOF, want: websocket.StatusNormalClosure},
		{name: "going away", err: peerClose(websocket.StatusGoingAway), want: websocket.StatusGoingAway},
		{name: "no status received", err: peerClose(websocket.StatusNoStatusRcvd), want: websocket.StatusNormalClosure},
		{name: "abnormal", err: peerClose(websocket.StatusAbnormalClosure), want: websocket.StatusNormalClosure},
		{name: "tls handshake", err: peerClose(websocket.StatusTLSHandshake), want: websocket.StatusNormalClosure},
		{name: "policy violation", err: peerClose(websocket.StatusPolicyViolation), want: websocket.StatusPolicyViolation},
		{name: "application code", err: peerClose(4001), want: 4001},
		{name: "transport failure", err: errors.New("boom"), want: websocket.StatusInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := closeStatus(tt.err)
			if got != tt.want {
				t.Fatalf("closeStatus(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if !sendableCloseCode(got) {
				t.Fatalf("closeStatus returned unsendable code %v", got)
			}
		})
	}
}
