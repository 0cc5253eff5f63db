package router

import (
	"time"

	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation mode manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextRoutes builds the free-text route. Text is consumed only by the mode
// handler of a user with a pending mode; unknown commands and stray text are skipped.
func TextRoutes(fsmMgr FSM) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if state.IsCommand(c.Text()) {
			logHandlerSummary(c, "unknown_command", start, "skip", "ok", nil)
			return nil
		}

		if sender := c.Sender(); fsmMgr != nil && sender != nil && fsmMgr.InProgress(sender.ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
