// Package jsonptr builds the JSON Pointer paths carried by issues.
package jsonptr

import (
	"strconv"
	"strings"
)

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// Escape escapes a single reference token per RFC 6901.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. Order matters: ~1 before ~0.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// Join appends one reference token to a pointer. The root pointer is "".
func Join(base, token string) string {
	if base == "" {
		return "/" + Escape(token)
	}
	return base + "/" + Escape(token)
}

// Index appends an array index token to a pointer.
func Index(base string, i int) string {
	return Join(base, strconv.Itoa(i))
}

// Normalize maps the empty root pointer to "/" for display in issues.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
