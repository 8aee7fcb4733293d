package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/respond"
)

// Handler exposes login, logout and the session check.
type Handler struct {
	Manager      *Manager
	SecureCookie bool
}

// NewHandler constructs a Handler.
func NewHandler(m *Manager, secureCookie bool) *Handler {
	return &Handler{Manager: m, SecureCookie: secureCookie}
}

// RegisterRoutes attaches the auth routes. loginGuard runs before the login
// handler only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginGuard ...gin.HandlerFunc) {
	rg.POST("/auth/login", append(loginGuard, h.login)...)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/auth/session", h.session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}

	res, err := h.Manager.Login(c.Request.Context(), req.Email, req.Password, req.From)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}
	h.setCookie(c, res.Token, int(h.Manager.tokens.TTL().Seconds()))
	respond.Data(c, http.StatusOK, res)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Manager.Logout(c.Request.Context(), TokenFrom(c)); err != nil {
		respond.Error(c, http.StatusBadGateway, "session_store_error", "failed to sign out", nil)
		return
	}
	h.setCookie(c, "", -1)
	respond.Data(c, http.StatusOK, Anonymous())
}

func (h *Handler) session(c *gin.Context) {
	s := FromContext(c.Request.Context())
	if s.IsLoading {
		c.Header("Retry-After", "1")
	}
	respond.OK(c, s)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", h.SecureCookie, true)
}
