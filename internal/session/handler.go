package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieName is the cookie holding the portal session id
const CookieName = "portal_session"

const ginSessionKey = "session"

// Handler exposes session init and teardown over HTTP
type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHandler creates a new session handler
func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// RegisterRoutes registers session routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/session", h.start)
	router.GET("/session", h.current)
	router.DELETE("/session", h.end)
}

type startRequest struct {
	Token string `json:"token" binding:"required"`
}

// start handles POST /api/v1/session
func (h *Handler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.manager.Start(req.Token)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrTokenExpired) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.ID, 0, "/", "", false, true)
	c.JSON(http.StatusCreated, gin.H{
		"session":  sess,
		"redirect": LandingPath(sess.Role),
	})
}

// current handles GET /api/v1/session
func (h *Handler) current(c *gin.Context) {
	sess, ok := FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  sess,
		"redirect": LandingPath(sess.Role),
	})
}

// end handles DELETE /api/v1/session
func (h *Handler) end(c *gin.Context) {
	if id, err := c.Cookie(CookieName); err == nil {
		h.manager.End(id)
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Middleware attaches the caller's session to the request context. A session
// cookie wins; otherwise an Authorization header ("Bearer x" or "Token x")
// yields a request-scoped session.
func Middleware(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session

		if id, err := c.Cookie(CookieName); err == nil {
			if s, ok := manager.Get(id); ok {
				sess = s
			}
		}

		if sess == nil {
			if token := bearerToken(c.GetHeader("Authorization")); token != "" {
				if s, err := FromToken(token, manager.now()); err == nil {
					sess = s
				}
			}
		}

		if sess != nil {
			c.Set(ginSessionKey, sess)
			c.Request = c.Request.WithContext(NewContext(c.Request.Context(), sess))
		}

		c.Next()
	}
}

// RequireSession rejects requests without a session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	}
	return ""
}
