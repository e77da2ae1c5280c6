package logger

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Attribute keys carrying patient identifying data.
var phiKeyPatterns = []string{
	"name",
	"diagnosis",
	"doctor",
}

// Attribute keys carrying secrets.
var secretKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"encryption_key",
	"access_key",
	"credential",
}

// redactedValue replaces secrets.
const redactedValue = "***REDACTED***"

// redact masks a in place of the handler output.
func redact(a slog.Attr, showPHI bool) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr, showPHI)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if a.Value.Kind() != slog.KindString || a.Value.String() == "" {
		return a
	}

	if IsSecretKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	if !showPHI && IsPHIKey(a.Key) {
		return slog.String(a.Key, MaskPHI(a.Value.String()))
	}
	return a
}

// MaskPHI keeps the first rune of s and hides the rest.
func MaskPHI(s string) string {
	if s == "" {
		return s
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r) + "***"
}

// IsPHIKey reports whether an attribute key names patient data.
func IsPHIKey(key string) bool {
	return containsAny(strings.ToLower(key), phiKeyPatterns)
}

// IsSecretKey reports whether an attribute key names a secret.
func IsSecretKey(key string) bool {
	return containsAny(strings.ToLower(key), secretKeyPatterns)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
