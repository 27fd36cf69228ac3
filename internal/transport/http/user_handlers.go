package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/service/users"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	directory *users.Directory
	log       *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(directory *users.Directory, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		directory: directory,
		log:       logger,
	}
}

// ListUsers returns every registered user.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	list, err := h.directory.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// SearchUsers handles searching for users.
// GET /api/users/search?q=query
func (h *UserHandlers) SearchUsers(c *gin.Context) {
	uid, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	found, err := h.directory.Search(c.Request.Context(), uid, c.Query("q"))
	if err != nil {
		if errors.Is(err, users.ErrQueryTooShort) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "search query must be at least 3 characters"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to search users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, found)
}
