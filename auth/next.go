package auth

import (
	"net/url"
	"strings"
)

// DefaultLanding is the post-login destination when no usable "next" target
// was supplied.
const DefaultLanding = "/"

// SafeNextPath validates a caller-supplied post-login redirect target.
// Only same-origin targets are honored: a relative path starting with a
// single "/". Anything carrying a scheme or host, protocol-relative ("//"),
// or backslash-mangled falls back to DefaultLanding, closing the open
// redirect the naive "redirect to next" behavior allows.
func SafeNextPath(next string) string {
	if next == "" {
		return DefaultLanding
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return DefaultLanding
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.HasPrefix(u.Path, "/\\") {
		return DefaultLanding
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
