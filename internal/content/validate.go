package content

import (
	"fmt"
	"net/url"
	"strings"
)

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return nil
}

func requireTextPtr(field string, v *string) error {
	if v == nil {
		return nil
	}
	return requireText(field, *v)
}

// optionalURL accepts "" or an absolute http(s) URL.
func optionalURL(field, v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL", ErrInvalidInput, field)
	}
	return nil
}

func optionalURLPtr(field string, v *string) error {
	if v == nil {
		return nil
	}
	return optionalURL(field, *v)
}

func validLevel(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: level must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// nullable maps "" to a SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
