// Package gate decides what a protected page does for a given session.
package gate

import (
	"net/url"

	"portfolio-backend/internal/session"
)

// Kind is the outcome of a gate decision.
type Kind string

const (
	Loading       Kind = "loading"
	RedirectLogin Kind = "redirect_login"
	RedirectHome  Kind = "redirect_home"
	Render        Kind = "render"
)

const (
	LoginPath      = "/login"
	HomePath       = "/"
	fromQueryParam = "from"
)

// Decision is what to do with a request for path.
type Decision struct {
	Kind     Kind   `json:"kind"`
	Redirect string `json:"redirect,omitempty"`
}

// Decide applies the gate rules in order: a loading session never redirects,
// an unauthenticated one goes to login carrying path, a non-admin on an admin
// page goes home, everything else renders.
func Decide(s session.Session, requiresAdmin bool, path string) Decision {
	switch {
	case s.IsLoading:
		return Decision{Kind: Loading}
	case !s.IsAuthenticated:
		return Decision{Kind: RedirectLogin, Redirect: LoginRedirect(path)}
	case requiresAdmin && !s.IsAdmin():
		return Decision{Kind: RedirectHome, Redirect: HomePath}
	default:
		return Decision{Kind: Render}
	}
}

// LoginRedirect is the login URL that returns to path after signing in.
func LoginRedirect(path string) string {
	if path == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{fromQueryParam: {path}}.Encode()
}
