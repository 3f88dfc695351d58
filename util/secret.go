package util

import "net/url"

// MaskSecret keeps the first visiblePrefix bytes of s and hides the rest.
// Strings no longer than the prefix are hidden entirely; an empty s stays
// empty so unset secrets remain recognizable.
func MaskSecret(s string, visiblePrefix int) string {
	if s == "" {
		return ""
	}
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// RedactURL hides the password in a URL's user info. Unparseable input is
// returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	return u.Redacted()
}
