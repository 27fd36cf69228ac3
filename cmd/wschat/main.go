// Command wschat is an interactive terminal client for manual testing.
// It logs in over REST, opens the WebSocket and sends every typed line as a message to one peer.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

type options struct {
	server   string
	email    string
	password string
	peer     int64
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:          "wschat",
		Short:        "Chat with one peer from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	flags.StringVar(&opts.email, "email", "", "account email")
	flags.StringVar(&opts.password, "password", "", "account password")
	flags.Int64Var(&opts.peer, "to", 0, "user id of the peer to chat with")
	_ = cmd.MarkPersistentFlagRequired("email")
	_ = cmd.MarkPersistentFlagRequired("password")
	_ = cmd.MarkPersistentFlagRequired("to")

	cmd.AddCommand(newSmokeCmd(&opts))

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	userID, conn, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected as user %d, chatting with %d\n", userID, opts.peer)
	fmt.Println("Type a message and press Enter. Commands: /read, /edit <id> <text>, /del <id>. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, userID, opts.peer)
	return nil
}

// connect logs in and opens the WebSocket with the issued access token.
func connect(ctx context.Context, opts options) (int64, *websocket.Conn, error) {
	userID, token, err := login(ctx, opts)
	if err != nil {
		return 0, nil, err
	}

	wsURL, err := socketURL(opts.server, token)
	if err != nil {
		return 0, nil, err
	}
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("dial: %w", err)
	}
	return userID, conn, nil
}

func login(ctx context.Context, opts options) (int64, string, error) {
	body, err := json.Marshal(map[string]string{"email": opts.email, "password": opts.password})
	if err != nil {
		return 0, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(opts.server, "/")+"/api/login", bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("login: unexpected status %s", resp.Status)
	}

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, "", fmt.Errorf("decode login response: %w", err)
	}
	return out.User.ID, out.Token, nil
}

func socketURL(server, token string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
			Message string          `json:"message"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}

		switch frame.Type {
		case proto.OutboundTypeError:
			fmt.Printf("! %s\n", frame.Message)
		case proto.OutboundTypeRead:
			fmt.Printf("* messages marked read: %s\n", frame.Payload)
		default:
			var msg proto.MessagePayload
			if err := json.Unmarshal(frame.Payload, &msg); err != nil {
				fmt.Printf("%s %s\n", frame.Type, frame.Payload)
				continue
			}
			fmt.Printf("[%s #%d] %d -> %d: %s\n", frame.Type, msg.ID, msg.SenderID, msg.ReceiverID, msg.Text)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, self, peer int64) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			frame, err := parseLine(text, self, peer)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				fmt.Fprintf(os.Stderr, "send error: %v\n", err)
				return
			}
		}
	}
}

func parseLine(text string, self, peer int64) (proto.Inbound, error) {
	var (
		kind    string
		payload any
	)
	fields := strings.Fields(text)
	switch fields[0] {
	case "/read":
		// Marks what the peer sent us.
		kind, payload = proto.InboundTypeRead, proto.ReadPayload{SenderID: peer, ReceiverID: self}
	case "/edit":
		if len(fields) < 3 {
			return proto.Inbound{}, errors.New("usage: /edit <id> <text>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return proto.Inbound{}, fmt.Errorf("bad message id %q", fields[1])
		}
		kind, payload = proto.InboundTypeUpdate, proto.UpdatePayload{ID: id, NewText: strings.Join(fields[2:], " ")}
	case "/del":
		if len(fields) != 2 {
			return proto.Inbound{}, errors.New("usage: /del <id>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return proto.Inbound{}, fmt.Errorf("bad message id %q", fields[1])
		}
		kind, payload = proto.InboundTypeDelete, proto.DeletePayload{ID: id}
	default:
		kind, payload = proto.InboundTypeCreate, proto.CreatePayload{Text: text, SenderID: self, ReceiverID: peer}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return proto.Inbound{}, err
	}
	return proto.Inbound{Type: kind, Payload: raw}, nil
}
