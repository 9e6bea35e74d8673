package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// secretKeyPatterns contains substrings that mark a key as sensitive.
// Keys are matched case-insensitively.
var secretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes are known API token prefixes that mark a value as sensitive
// regardless of its key.
var tokenPrefixes = []string{
	"ghp_", "gho_", "ghu_", "ghs_", "ghr_", // GitHub
	"sk-",                                  // OpenAI/Anthropic
	"AKIA",                                 // AWS access key
	"xoxb-", "xoxp-", "xoxa-", "xoxr-",     // Slack
	"Bearer ",
}

// ShouldMask reports whether the key name suggests sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskValue masks a sensitive string, keeping at most the last 4 characters.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskMap returns a copy of m with sensitive values masked.
func MaskMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	masked := make(map[string]string, len(m))
	for k, v := range m {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// MaskURL masks the password of a URL with embedded credentials.
// Unparseable URLs are returned unchanged.
func MaskURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	password, ok := parsed.User.Password()
	if !ok || password == "" {
		return rawURL
	}
	parsed.User = url.UserPassword(parsed.User.Username(), MaskValue(password))
	return parsed.String()
}

// Redact masks sensitive attribute values. It has the slog.HandlerOptions
// ReplaceAttr signature so JSON handlers apply the same rules as [Handler].
func Redact(_ []string, a slog.Attr) slog.Attr {
	switch v := a.Value.Resolve().Any().(type) {
	case map[string]string:
		a.Value = slog.AnyValue(MaskMap(v))
	case string:
		if ShouldMask(a.Key) || ContainsTokenPrefix(v) {
			a.Value = slog.StringValue(MaskValue(v))
		} else {
			a.Value = slog.StringValue(MaskURL(v))
		}
	default:
		if ShouldMask(a.Key) && a.Value.Kind() != slog.KindGroup {
			a.Value = slog.StringValue(MaskValue(fmt.Sprint(v)))
		}
	}
	return a
}
