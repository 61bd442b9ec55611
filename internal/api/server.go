// Package api exposes the rewards store over HTTP.
package api

import (
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/notepid/roadwatch/internal/drive"
	"github.com/notepid/roadwatch/internal/feed"
	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/session"
)

const requestIDHeader = "X-Request-ID"

// Handler serves the rewards API.
type Handler struct {
	store    *rewards.Store
	sessions *session.Store
	drives   *drive.Manager
	hazards  *feed.Broker
	log      *charmlog.Logger
}

// NewHandler wires the API to its dependencies.
func NewHandler(store *rewards.Store, sessions *session.Store, drives *drive.Manager, hazards *feed.Broker, log *charmlog.Logger) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		drives:   drives,
		hazards:  hazards,
		log:      log,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestID(), h.accessLog())

	r.GET("/healthz", h.handleHealth)

	r.POST("/signup", h.handleSignup)
	r.POST("/login", h.handleLogin)
	r.POST("/logout", h.handleLogout)
	r.GET("/session", h.handleSession)

	r.GET("/hazards/recent", h.handleRecentHazards)
	r.GET("/hazards/stream", h.handleHazardStream)

	authed := r.Group("/", h.requireSession)
	authed.POST("/hazards", h.handleReportHazard)
	authed.POST("/speed", h.handleRecordSpeed)
	authed.GET("/rewards", h.handleGetRewards)
	authed.POST("/rewards/:rewardId/redeem", h.handleRedeem)
	authed.GET("/redemptions", h.handleRedemptions)
	authed.GET("/profile", h.handleProfile)
	authed.POST("/drive", h.handleStartDrive)
	authed.GET("/drive", h.handleDriveStatus)
	authed.DELETE("/drive", h.handleStopDrive)

	return r
}

func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDHeader),
		)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
