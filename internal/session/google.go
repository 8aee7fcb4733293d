package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/users"
)

// AccountFinder looks up accounts by email.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// GoogleSignIn lets existing accounts sign in with Google. The Google e-mail
// must match a user record; no account is created on the fly.
type GoogleSignIn struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	stateTTL    time.Duration
	manager     *Manager
	accounts    AccountFinder
	handler     *Handler
	userInfoURL string
}

// NewGoogleSignIn builds a GoogleSignIn.
func NewGoogleSignIn(clientID, clientSecret, redirectURL, uiRedirect string, h *Handler, accounts AccountFinder) *GoogleSignIn {
	return &GoogleSignIn{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		stateTTL:    5 * time.Minute,
		manager:     h.Manager,
		accounts:    accounts,
		handler:     h,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleSignIn) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleSignIn) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

func (s *GoogleSignIn) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	if err := s.manager.Store().PutState(c.Request.Context(), state, s.stateTTL); err != nil {
		respond.Error(c, http.StatusBadGateway, "session_store_error", "failed to start sign-in", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleSignIn) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}

	ctx := c.Request.Context()
	ok, err := s.manager.Store().ConsumeState(ctx, state)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "session_store_error", "failed to verify state", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		telemetry.FromContext(ctx).Warn("session.google_userinfo_failed", zap.Error(err))
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if info.Email == "" || !info.VerifiedEmail {
		respond.Error(c, http.StatusForbidden, "auth_failed", "a verified Google e-mail is required", nil)
		return
	}

	account, err := s.accounts.FindByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(c, http.StatusForbidden, "not_authorized", "no account for this e-mail", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
		return
	}

	res, err := s.manager.Open(ctx, fromAccount(account), "")
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "session_store_error", "failed to open session", nil)
		return
	}
	s.handler.setCookie(c, res.Token, int(s.manager.tokens.TTL().Seconds()))

	redirectURL, err := appendRedirect(s.uiRedirect, res.Redirect)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (s *GoogleSignIn) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

// appendRedirect joins the UI base URL and the in-app landing path.
func appendRedirect(rawURL, path string) (string, error) {
	if rawURL == "" {
		return path, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	target, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return u.ResolveReference(target).String(), nil
}
