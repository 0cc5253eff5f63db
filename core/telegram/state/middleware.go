package state

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// IsCommand reports whether text carries the command prefix.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// ClearOnCommand drops any pending mode when the user sends a command,
// before the command handler runs.
func ClearOnCommand(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if mgr != nil && sender != nil && c.Message() != nil && c.Callback() == nil && IsCommand(c.Text()) {
				if prev := mgr.GetState(sender.ID); prev != StateIdle {
					mgr.ClearState(sender.ID)
					logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.cleared",
						slog.String("state", string(prev)),
						slog.String("reason", "command"),
					)
				}
			}
			return next(c)
		}
	}
}
