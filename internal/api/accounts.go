package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notepid/roadwatch/internal/user"
)

const identityKey = "identity"

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "username and password are required")
		return
	}
	email := req.Email
	if email == "" {
		email = req.Username + "@example.com"
	}
	if err := validateFields(
		fieldLimit{"username", req.Username, MaxUsernameLen},
		fieldLimit{"email", email, MaxEmailLen},
	); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.Signup(c.Request.Context(), req.Username, email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.sessions.Set(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, id)
}

func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "username and password are required")
		return
	}

	id, err := h.store.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.sessions.Set(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func (h *Handler) handleLogout(c *gin.Context) {
	ctx := c.Request.Context()
	if id, ok, err := h.sessions.Current(ctx); err == nil && ok {
		h.drives.Stop(id.UserID)
	}
	if err := h.sessions.Clear(ctx); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleSession(c *gin.Context) {
	id, ok, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "not logged in")
		return
	}
	c.JSON(http.StatusOK, id)
}

func (h *Handler) handleProfile(c *gin.Context) {
	p, err := h.store.Profile(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": p.Username,
		"email":    p.Email,
		"points":   p.Points,
		"level":    p.Level,
	})
}

// requireSession aborts with 401 unless a user is logged in. The message
// names the action the caller attempted.
// The session is one process-wide current user, not per-client auth: every
// caller acts as whoever logged in last.
func (h *Handler) requireSession(c *gin.Context) {
	id, ok, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		respondMessage(c, http.StatusUnauthorized, loginPrompt(c.FullPath()))
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

func currentIdentity(c *gin.Context) user.Identity {
	id, _ := c.MustGet(identityKey).(user.Identity)
	return id
}

func loginPrompt(path string) string {
	switch path {
	case "/hazards":
		return "Please log in to report hazards"
	case "/rewards/:rewardId/redeem":
		return "Please log in to redeem rewards"
	default:
		return "Please log in"
	}
}
