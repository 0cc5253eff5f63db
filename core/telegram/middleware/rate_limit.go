package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is overridable in tests.
	Now func() time.Time
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// limiter remembers the last accepted update per user. Entries older than
// interval are swept at most once per interval.
type limiter struct {
	mu        sync.Mutex
	interval  time.Duration
	lastSeen  map[int64]time.Time
	lastSweep time.Time
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{interval: interval, lastSeen: make(map[int64]time.Time)}
}

func (l *limiter) allow(id int64, ts time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ts.Sub(l.lastSweep) >= l.interval {
		for k, v := range l.lastSeen {
			if ts.Sub(v) >= l.interval {
				delete(l.lastSeen, k)
			}
		}
		l.lastSweep = ts
	}
	if last, ok := l.lastSeen[id]; ok && ts.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[id] = ts
	return true
}

// RateLimitMiddleware enforces a minimum interval between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	lim := newLimiter(opts.Interval)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if !lim.allow(user.ID, now()) {
				logger.TG.LogAttrs(tghelpers.BuildContext(c), slog.LevelWarn, "rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
