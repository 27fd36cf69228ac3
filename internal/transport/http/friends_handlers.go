package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/service/friends"
	"github.com/vovakirdan/wirechat-dm/internal/service/users"
)

// FriendsHandlers provides HTTP handlers for friend management endpoints.
type FriendsHandlers struct {
	service *friends.Service
	log     *zerolog.Logger
}

// NewFriendsHandlers creates a new friends handlers instance.
func NewFriendsHandlers(svc *friends.Service, logger *zerolog.Logger) *FriendsHandlers {
	return &FriendsHandlers{
		service: svc,
		log:     logger,
	}
}

// AddFriendRequest represents the request body for adding a friend.
type AddFriendRequest struct {
	FriendEmail string `json:"friendEmail" binding:"required,email"`
}

// AddFriendResponse is returned when a friendship is created.
type AddFriendResponse struct {
	Message string        `json:"message"`
	Friend  users.Profile `json:"friend"`
}

// AddFriend befriends the user with the given email.
// POST /api/friends
func (h *FriendsHandlers) AddFriend(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Friend email is required"})
		return
	}

	friend, err := h.service.AddByEmail(c.Request.Context(), userID, req.FriendEmail)
	if err != nil {
		switch {
		case errors.Is(err, friends.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found with provided email"})
		case errors.Is(err, friends.ErrCannotFriendSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "You cannot add yourself as a friend"})
		case errors.Is(err, friends.ErrAlreadyFriends):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Already friends"})
		default:
			h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to add friend")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, AddFriendResponse{Message: "Friend added successfully", Friend: friend})
}

// ListFriends returns the caller's friends.
// GET /api/friends
func (h *FriendsHandlers) ListFriends(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list friends")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// RemoveFriend ends a friendship.
// DELETE /api/friends/:id
func (h *FriendsHandlers) RemoveFriend(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || friendID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid friend id"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, friendID); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Int64("friend_id", friendID).Msg("failed to remove friend")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Friend removed successfully"})
}
