package logger

import (
	"log/slog"
	"strings"
)

// normalizeLevel maps in-between levels such as DEBUG+2 to the named level below them.
func normalizeLevel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// Outcomes outside this set are dropped.
var outcomes = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"cancelled":    {},
	"rate_limited": {},
	"not_found":    {},
}

func normalizeEnums(fields map[string]any) {
	if s, ok := fields["status"].(string); ok {
		fields["status"] = strings.ToLower(s)
	}
	if s, ok := fields["outcome"].(string); ok {
		s = strings.ToLower(s)
		if _, known := outcomes[s]; known {
			fields["outcome"] = s
		} else {
			delete(fields, "outcome")
		}
	}
}

// keyOrder puts identity and correlation keys first, then domain keys, then errors.
var keyOrder = []string{
	"ts", "level", "component", "event", "status", "rid",
	"update_id", "user_id", "chat_id", "chat_type", "handler", "cb_key", "outcome", "duration_ms",
	"mode", "state", "city", "letter", "count", "profiles", "cities", "letters", "payload",
	"username", "listen", "public_url", "http_code", "path", "driver", "db", "host", "port",
	"err", "err_kind", "err_code", "cause", "attempts", "backoff_ms",
}

var keyRank = func() map[string]int {
	m := make(map[string]int, len(keyOrder))
	for i, k := range keyOrder {
		m[k] = i
	}
	return m
}()
