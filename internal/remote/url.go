package remote

import (
	"net/url"
	"strings"
)

// PathAfterBucket extracts the storage path that follows "/<bucket>/" in a
// public URL and unescapes it.
func PathAfterBucket(rawURL, bucket string) (string, bool) {
	bucket = strings.Trim(bucket, "/")
	if rawURL == "" || bucket == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	escaped := u.EscapedPath()
	marker := "/" + url.PathEscape(bucket) + "/"
	idx := strings.Index(escaped, marker)
	if idx < 0 {
		return "", false
	}
	rest := escaped[idx+len(marker):]
	if rest == "" {
		return "", false
	}
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return path, true
}

// JoinURL joins a base URL and path segments with single slashes.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}
