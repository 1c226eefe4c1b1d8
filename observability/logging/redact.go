package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive values in log lines.
const RedactedValue = "[REDACTED]"

// Keys that are safe to log verbatim. Anything else passed through MaskField
// is redacted: memos and payloads can carry treasure secrets.
var redactionAllowlist = map[string]struct{}{
	"service":   {},
	"env":       {},
	"message":   {},
	"severity":  {},
	"timestamp": {},
	"error":     {},
	"reason":    {},
	"component": {},
	"action":    {},
	"signer":    {},
	"nonce":     {},
	"height":    {},
	"treasure":  {},
	"root":      {},
	"route":     {},
	"status":    {},
}

func isAllowlisted(key string) bool {
	_, ok := redactionAllowlist[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskField returns key=value, or key=[REDACTED] when the key is not
// allowlisted and the value is not blank.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || isAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
