package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/metrics"
	"github.com/vovakirdan/wirechat-dm/internal/service/chats"
	"github.com/vovakirdan/wirechat-dm/internal/service/friends"
	"github.com/vovakirdan/wirechat-dm/internal/service/users"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

type testServer struct {
	ts    *httptest.Server
	hub   *core.Hub
	auth  *auth.Service
	store *sqlite.SQLiteStore
}

type testUser struct {
	ID    int64
	Token string
}

// wireFrame is the client-side view of an outbound frame.
type wireFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.WriteTimeout = time.Second

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	directory, err := users.NewDirectory(st, cfg.UserCacheSize)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}

	authService := auth.NewService(st, &auth.JWTConfig{
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	m := metrics.New()
	hub := core.NewHub(core.NewRegistry(), st, &logger, m, core.Options{})

	server := NewServer(Deps{
		Auth:      authService,
		Hub:       hub,
		Friends:   friends.New(st, directory),
		Chats:     chats.New(st, directory),
		Directory: directory,
		Metrics:   m,
	}, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, hub: hub, auth: authService, store: st}
}

func (s *testServer) user(t *testing.T, name string) testUser {
	t.Helper()

	ctx := context.Background()
	email := name + "@example.com"
	if _, err := s.auth.Signup(ctx, name, email, "secret123"); err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	session, err := s.auth.Login(ctx, email, "secret123")
	if err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	return testUser{ID: session.User.ID, Token: session.AccessToken}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := stdhttp.NewRequest(method, s.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

// dial opens a socket for token and waits until the hub has registered userID.
func (s *testServer) dial(t *testing.T, ctx context.Context, u testUser) *websocket.Conn {
	t.Helper()

	conn := s.dialRaw(t, ctx, u.Token)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := s.hub.Registry().Lookup(u.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("user %d was never registered", u.ID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func (s *testServer) dialRaw(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(s.ts.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		wsURL += "?token=" + token
	}
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}
