package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/metrics"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/utils"
)

const (
	reasonNoToken      = "Access denied. No token provided."
	reasonUnauthorized = "Unauthorized"
)

// WSHandler upgrades HTTP connections, authenticates them and bridges them to the hub.
type WSHandler struct {
	hub     *core.Hub
	auth    *auth.Service
	metrics *metrics.Metrics
	log     *zerolog.Logger

	origins         []string
	maxMessageBytes int64
	sendBuffer      int
	writeTimeout    time.Duration
	frameRate       float64
	frameBurst      int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, m *metrics.Metrics, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:             hub,
		auth:            authService,
		metrics:         m,
		log:             logger,
		origins:         cfg.AllowedOrigins,
		maxMessageBytes: cfg.MaxMessageBytes,
		sendBuffer:      cfg.SendBufferSize,
		writeTimeout:    cfg.WriteTimeout,
		frameRate:       cfg.FrameRateLimit,
		frameBurst:      cfg.FrameBurst,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	// The token travels in the query string: browsers cannot set headers on the upgrade request.
	token := r.URL.Query().Get("token")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.origins,
		InsecureSkipVerify: len(h.origins) == 0,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	userID, ok := h.authenticate(r.Context(), conn, token)
	if !ok {
		return
	}
	h.metrics.Handshake("ok")

	if h.maxMessageBytes > 0 {
		conn.SetReadLimit(h.maxMessageBytes)
	}

	client := newWSConn(utils.NewID(), h.sendBuffer)
	h.hub.Connect(userID, client)
	h.log.Info().Int64("user_id", userID).Str("conn_id", client.ID()).Msg("ws connection registered")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, userID, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	// Unreachable for fan-out from here on, even before the other loop stops.
	client.close()
	h.hub.Disconnect(userID, client)
	cancel()
	<-errCh

	status, reason := closeStatus(err)
	if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
		h.log.Warn().Err(err).Int64("user_id", userID).Str("conn_id", client.ID()).Msg("ws connection closed with error")
	} else {
		h.log.Info().Int64("user_id", userID).Str("conn_id", client.ID()).Msg("ws connection closed")
	}
	conn.Close(status, reason)
}

// authenticate verifies the handshake token. On failure it sends an error frame,
// closes the connection with a policy violation and returns false.
func (h *WSHandler) authenticate(ctx context.Context, conn *websocket.Conn, token string) (int64, bool) {
	reason := ""
	var userID int64
	if token == "" {
		reason = reasonNoToken
	} else if claims, err := h.auth.ValidateAccessToken(token); err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected")
		reason = reasonUnauthorized
	} else {
		userID = claims.UserID
	}
	if reason == "" {
		return userID, true
	}

	h.metrics.Handshake("rejected")
	wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, proto.ErrorFrame(reason)); err != nil {
		h.log.Debug().Err(err).Msg("write handshake rejection")
	}
	conn.Close(websocket.StatusPolicyViolation, reason)
	return 0, false
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, userID int64, client *wsConn) error {
	limiter := newFrameLimiter(h.frameRate, h.frameBurst)
	// Handlers run to completion even if the socket goes away mid-frame.
	handleCtx := context.WithoutCancel(ctx)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			h.hub.Fail(userID, client, "", core.ErrRateLimited)
			continue
		}
		h.hub.HandleFrame(handleCtx, userID, client, data)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *wsConn) error {
	for {
		select {
		case frame := <-client.send:
			if err := h.write(ctx, conn, frame); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID()).Msg("write ws frame")
				return err
			}
		case <-client.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	if h.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.writeTimeout)
		defer cancel()
	}
	return conn.Write(ctx, websocket.MessageText, frame)
}

func closeStatus(err error) (websocket.StatusCode, string) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing"
	}
	if s := websocket.CloseStatus(err); s != -1 {
		if s == websocket.StatusNormalClosure || s == websocket.StatusGoingAway || !sendableCloseCode(s) {
			return websocket.StatusNormalClosure, "closing"
		}
		return s, ""
	}
	return websocket.StatusInternalError, "internal error"
}

// sendableCloseCode reports whether code may appear in a close frame.
// 1004, 1005, 1006 and 1015 are reserved for local use only.
func sendableCloseCode(code websocket.StatusCode) bool {
	switch {
	case code >= 1000 && code <= 1003:
		return true
	case code >= 1007 && code <= 1014:
		return true
	case code >= 3000 && code <= 4999:
		return true
	}
	return false
}
