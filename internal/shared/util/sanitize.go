package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName is returned for names with nothing left after cleaning.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the last path element of a client-supplied file
// name so uploads cannot smuggle directories into display names.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "", ErrInvalidFileName
	}
	return s, nil
}
