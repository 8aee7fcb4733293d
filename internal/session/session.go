// Package session resolves who is making a request. A session starts out
// loading and settles on authenticated or unauthenticated once the session
// store has answered.
package session

import (
	"errors"

	"portfolio-backend/internal/users"
)

var (
	// ErrInvalidCredentials is returned by Login for a bad email or password.
	ErrInvalidCredentials = users.ErrInvalidCredentials
	// ErrSessionNotFound is returned by a Store for unknown or expired ids.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("session: invalid token")
)

// User is the identity attached to an authenticated session.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// Session is the resolved state of one request.
type Session struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsLoading       bool  `json:"isLoading"`
}

// Pending is the state before the session check has resolved.
func Pending() Session {
	return Session{IsLoading: true}
}

// Anonymous is a resolved, unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// Authenticated is a resolved session for u.
func Authenticated(u User) Session {
	return Session{User: &u, IsAuthenticated: true}
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated && s.User != nil && s.User.IsAdmin
}

// State names the session for logs and metrics.
func (s Session) State() string {
	switch {
	case s.IsLoading:
		return "loading"
	case s.IsAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

func fromAccount(u users.User) User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}
