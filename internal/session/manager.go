package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/users"
)

// DefaultRedirect is where a login lands when no safe "from" path is given.
const DefaultRedirect = "/admin"

const defaultCheckTimeout = 2 * time.Second

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (users.User, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session   Session   `json:"session"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Redirect  string    `json:"redirect"`
}

// Manager signs users in and out and resolves request sessions.
type Manager struct {
	auth         Authenticator
	tokens       *Tokens
	store        Store
	notifier     notify.Notifier
	checkTimeout time.Duration
	now          func() time.Time
}

// NewManager constructs a Manager. checkTimeout bounds each session store
// lookup made by Resolve.
func NewManager(auth Authenticator, tokens *Tokens, store Store, notifier notify.Notifier, checkTimeout time.Duration) *Manager {
	if notifier == nil {
		notifier = notify.Discard
	}
	if checkTimeout <= 0 {
		checkTimeout = defaultCheckTimeout
	}
	return &Manager{
		auth:         auth,
		tokens:       tokens,
		store:        store,
		notifier:     notifier,
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
}

// Store returns the session store.
func (m *Manager) Store() Store { return m.store }

// Login verifies credentials and opens a session.
func (m *Manager) Login(ctx context.Context, email, password, from string) (LoginResult, error) {
	account, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		desc := "Invalid email or password."
		if !errors.Is(err, ErrInvalidCredentials) {
			desc = notify.Describe(err, "There was a problem signing you in.")
			telemetry.FromContext(ctx).Error("session.login_failed", zap.Error(err))
		}
		m.notifier.Notify(ctx, notify.Failure("Login failed", desc))
		return LoginResult{}, err
	}
	return m.Open(ctx, fromAccount(account), from)
}

// Open starts a session for an already verified user.
func (m *Manager) Open(ctx context.Context, u User, from string) (LoginResult, error) {
	id := uuid.NewString()
	token, exp, err := m.tokens.Issue(id, u)
	if err != nil {
		return LoginResult{}, err
	}
	rec := Record{ID: id, User: u, CreatedAt: m.now().UTC()}
	if err := m.store.Put(ctx, rec, m.tokens.TTL()); err != nil {
		m.notifier.Notify(ctx, notify.Failure("Login failed", "There was a problem signing you in."))
		return LoginResult{}, fmt.Errorf("store session: %w", err)
	}

	name := u.Name
	if name == "" {
		name = u.Email
	}
	m.notifier.Notify(ctx, notify.Success("Login successful", fmt.Sprintf("Welcome back, %s.", name)))
	return LoginResult{
		Session:   Authenticated(u),
		Token:     token,
		ExpiresAt: exp,
		Redirect:  SafeRedirect(from),
	}, nil
}

// Logout revokes the session behind token. Tokens that no longer verify have
// nothing left to revoke.
func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		m.notifier.Notify(ctx, notify.Failure("Logout failed", notify.Describe(err, "There was a problem signing you out.")))
		return fmt.Errorf("revoke session: %w", err)
	}
	m.notifier.Notify(ctx, notify.Info("Logged out", "You have been signed out."))
	return nil
}

// Resolve performs the session check for token. When the store cannot answer
// within the check timeout the session stays loading rather than reporting
// unauthenticated.
func (m *Manager) Resolve(ctx context.Context, token string) Session {
	s := m.resolve(ctx, token)
	metrics.SessionChecks.WithLabelValues(s.State()).Inc()
	return s
}

func (m *Manager) resolve(ctx context.Context, token string) Session {
	if token == "" {
		return Anonymous()
	}
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return Anonymous()
	}

	checkCtx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	defer cancel()
	rec, err := m.store.Get(checkCtx, claims.ID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return Anonymous()
	case err != nil:
		telemetry.FromContext(ctx).Warn("session.check_unresolved", zap.Error(err))
		return Pending()
	}
	if rec.User.ID != claims.Subject {
		return Anonymous()
	}
	return Authenticated(rec.User)
}

// SafeRedirect returns from when it is a local absolute path, else the
// default admin landing page.
func SafeRedirect(from string) string {
	from = strings.TrimSpace(from)
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return DefaultRedirect
	}
	if from == "/login" || strings.HasPrefix(from, "/login?") {
		return DefaultRedirect
	}
	return from
}
