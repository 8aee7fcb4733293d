package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/users"
)

type recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) last(t *testing.T) notify.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.items)
	return r.items[len(r.items)-1]
}

// flakyStore fails or stalls Get on demand.
type flakyStore struct {
	*MemoryStore
	getErr error
	stall  bool
}

func (s *flakyStore) Get(ctx context.Context, id string) (Record, error) {
	if s.stall {
		<-ctx.Done()
		return Record{}, ctx.Err()
	}
	if s.getErr != nil {
		return Record{}, s.getErr
	}
	return s.MemoryStore.Get(ctx, id)
}

func newTestManager(t *testing.T, store Store) (*Manager, *recorder) {
	t.Helper()
	svc := users.NewService(users.NewMemoryRepo())
	_, err := svc.CreateAdmin(context.Background(), "admin@example.com", "Ada", "correct-horse")
	require.NoError(t, err)

	tokens, err := NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)

	rec := &recorder{}
	return NewManager(svc, tokens, store, rec, 50*time.Millisecond), rec
}

func TestLoginOpensSession(t *testing.T) {
	m, rec := newTestManager(t, NewMemoryStore())

	res, err := m.Login(context.Background(), "Admin@Example.com", "correct-horse", "/admin/files")
	require.NoError(t, err)
	assert.True(t, res.Session.IsAuthenticated)
	assert.Equal(t, "/admin/files", res.Redirect)
	assert.NotEmpty(t, res.Token)

	n := rec.last(t)
	assert.Equal(t, "Login successful", n.Title)
	assert.Equal(t, "Welcome back, Ada.", n.Description)

	s := m.Resolve(context.Background(), res.Token)
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	assert.True(t, s.IsAdmin())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	m, rec := newTestManager(t, NewMemoryStore())

	_, err := m.Login(context.Background(), "admin@example.com", "wrong-password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	n := rec.last(t)
	assert.Equal(t, notify.SeverityError, n.Severity)
	assert.Equal(t, "Invalid email or password.", n.Description)
}

func TestResolveWithoutTokenIsAnonymous(t *testing.T) {
	m, _ := newTestManager(t, NewMemoryStore())

	s := m.Resolve(context.Background(), "")
	assert.False(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)

	s = m.Resolve(context.Background(), "not-a-token")
	assert.Equal(t, "unauthenticated", s.State())
}

func TestResolveStaysLoadingWhenStoreFails(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	m, _ := newTestManager(t, store)

	res, err := m.Login(context.Background(), "admin@example.com", "correct-horse", "")
	require.NoError(t, err)

	store.getErr = errors.New("connection refused")
	s := m.Resolve(context.Background(), res.Token)
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)

	store.getErr = nil
	store.stall = true
	s = m.Resolve(context.Background(), res.Token)
	assert.Equal(t, "loading", s.State())
}

func TestLogoutRevokesSession(t *testing.T) {
	m, rec := newTestManager(t, NewMemoryStore())

	res, err := m.Login(context.Background(), "admin@example.com", "correct-horse", "")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), res.Token))
	assert.Equal(t, "Logged out", rec.last(t).Title)

	s := m.Resolve(context.Background(), res.Token)
	assert.False(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)

	require.NoError(t, m.Logout(context.Background(), "garbage"))
}

func TestSafeRedirect(t *testing.T) {
	cases := map[string]string{
		"":                   DefaultRedirect,
		"/admin/projects":    "/admin/projects",
		"https://evil.test":  DefaultRedirect,
		"//evil.test/admin":  DefaultRedirect,
		`/\evil.test`:        DefaultRedirect,
		"/login":             DefaultRedirect,
		"/login?from=/admin": DefaultRedirect,
		"/download/abc":      "/download/abc",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeRedirect(in), "from=%q", in)
	}
}

func TestTokensRejectForeignSignature(t *testing.T) {
	a, err := NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	b, err := NewTokens("fedcba9876543210fedc", time.Hour)
	require.NoError(t, err)

	raw, _, err := a.Issue("sess-1", User{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)

	claims, err := a.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "u1", claims.Subject)

	_, err = b.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensExpire(t *testing.T) {
	tokens, err := NewTokens("0123456789abcdef0123", time.Minute)
	require.NoError(t, err)
	now := time.Now()
	tokens.now = func() time.Time { return now }

	raw, _, err := tokens.Issue("sess-1", User{ID: "u1"})
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokensRequiresLongSecret(t *testing.T) {
	_, err := NewTokens("short", time.Hour)
	assert.Error(t, err)
}
