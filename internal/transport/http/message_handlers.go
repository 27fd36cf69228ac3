package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/service/chats"
	"github.com/vovakirdan/wirechat-dm/internal/service/users"
)

// MessageHandlers serves conversation history.
type MessageHandlers struct {
	chats *chats.Service
	log   *zerolog.Logger
}

func NewMessageHandlers(svc *chats.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{chats: svc, log: logger}
}

// HistoryResponse is a page of a conversation, newest first.
type HistoryResponse struct {
	Messages []proto.MessagePayload `json:"messages"`
}

// History returns messages exchanged between the caller and a peer.
// GET /api/messages/:peerId?limit=50&before=123
func (h *MessageHandlers) History(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	peerID, err := strconv.ParseInt(c.Param("peerId"), 10, 64)
	if err != nil || peerID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid peer id"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
	}

	var before *int64
	if raw := c.Query("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid before id"})
			return
		}
		before = &id
	}

	msgs, err := h.chats.History(c.Request.Context(), userID, peerID, limit, before)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Int64("peer_id", peerID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Messages: messagesToResponse(msgs)})
}

// RecentChats lists the caller's conversations with their last message and unread count.
// GET /api/chats/recent
func (h *MessageHandlers) RecentChats(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	list, err := h.chats.Recent(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load recent chats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, summariesToResponse(list))
}
