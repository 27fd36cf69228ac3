package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

func newSmokeCmd(opts *options) *cobra.Command {
	var (
		text    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Send one message and wait for the server to confirm it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return smoke(ctx, *opts, text)
		},
	}
	cmd.Flags().StringVar(&text, "text", "hello from smoke test", "message text to send")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "total timeout for the run")
	return cmd
}

func smoke(ctx context.Context, opts options, text string) error {
	userID, conn, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	payload, err := json.Marshal(proto.CreatePayload{Text: text, SenderID: userID, ReceiverID: opts.peer})
	if err != nil {
		return fmt.Errorf("marshal create: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeCreate, Payload: payload}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		var frame struct {
			Type    string               `json:"type"`
			Payload proto.MessagePayload `json:"payload"`
			Message string               `json:"message"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch frame.Type {
		case proto.OutboundTypeError:
			return fmt.Errorf("server rejected message: %s", frame.Message)
		case proto.OutboundTypeCreated:
			if frame.Payload.SenderID == userID && frame.Payload.Text == text {
				fmt.Printf("delivered: id=%d %d -> %d %q\n", frame.Payload.ID, frame.Payload.SenderID, frame.Payload.ReceiverID, frame.Payload.Text)
				return nil
			}
		}
	}
}
