package gate

import (
	"path"
	"strings"
)

// Route is one page of the site.
type Route struct {
	Pattern       string `json:"pattern"`
	Protected     bool   `json:"protected"`
	RequiresAdmin bool   `json:"requiresAdmin"`
}

// Routes is the site's page table.
var Routes = []Route{
	{Pattern: "/"},
	{Pattern: "/projects"},
	{Pattern: "/skills"},
	{Pattern: "/contact"},
	{Pattern: "/login"},
	{Pattern: "/download/:id"},
	{Pattern: "/admin", Protected: true, RequiresAdmin: true},
	{Pattern: "/admin/*", Protected: true, RequiresAdmin: true},
}

// Match returns the route for path. Unknown paths match nothing.
func Match(p string) (Route, bool) {
	p = normalize(p)
	for _, r := range Routes {
		if matches(r.Pattern, p) {
			return r, true
		}
	}
	return Route{}, false
}

// normalize strips the query, cleans dot segments and duplicate slashes and
// folds case, so "/ADMIN//files/" and "/x/../admin" match like "/admin/files"
// and "/admin".
func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Clean("/" + p))
}

func matches(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/")
	}
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
