package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/metrics"
	"github.com/vovakirdan/wirechat-dm/internal/service/chats"
	"github.com/vovakirdan/wirechat-dm/internal/service/friends"
	"github.com/vovakirdan/wirechat-dm/internal/service/users"
)

// Deps groups the services the HTTP layer talks to.
type Deps struct {
	Auth      *auth.Service
	Hub       *core.Hub
	Friends   *friends.Service
	Chats     *chats.Service
	Directory *users.Directory
	Metrics   *metrics.Metrics
}

// NewServer builds the HTTP server with REST, WebSocket and metrics routes.
func NewServer(deps Deps, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(deps, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewHandler mounts /ws on a plain mux in front of the gin router.
// /ws bypasses gin: its writer refuses to hijack after the 101 status is written.
func NewHandler(deps Deps, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(deps.Hub, deps.Auth, deps.Metrics, cfg, logger))
	mux.Handle("/", NewRouter(deps, cfg, logger))
	return mux
}

// NewRouter registers the REST, health and metrics routes on a fresh gin engine.
func NewRouter(deps Deps, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(logger))

	r.GET("/health", healthHandler)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	apiHandlers := NewAPIHandlers(deps.Auth, deps.Hub, cfg.AccessTokenTTL, logger)
	userHandlers := NewUserHandlers(deps.Directory, logger)
	friendsHandlers := NewFriendsHandlers(deps.Friends, logger)
	messageHandlers := NewMessageHandlers(deps.Chats, logger)

	api := r.Group("/api")
	api.POST("/signup", apiHandlers.Signup)
	api.POST("/login", apiHandlers.Login)
	api.POST("/refresh", apiHandlers.Refresh)

	authed := api.Group("")
	authed.Use(AuthMiddleware(deps.Auth, logger))
	authed.POST("/logout", apiHandlers.Logout)

	authed.GET("/users", userHandlers.ListUsers)
	authed.GET("/users/search", userHandlers.SearchUsers)

	authed.POST("/friends", friendsHandlers.AddFriend)
	authed.GET("/friends", friendsHandlers.ListFriends)
	authed.DELETE("/friends/:id", friendsHandlers.RemoveFriend)

	authed.GET("/messages/:peerId", messageHandlers.History)
	authed.GET("/chats/recent", messageHandlers.RecentChats)

	return r
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
