package bot

import (
	"log/slog"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// OnError is the bot-wide hook for handler errors and recovered panics.
// It logs the failure with the user id and replies with a generic hint.
func (h *Handlers) OnError(err error, c tele.Context) {
	if c == nil {
		logger.TG.Error("handler failed",
			slog.String("event", "handler.error"),
			slog.String("err", logger.ErrAttr(err)),
		)
		return
	}

	ctx := tghelpers.BuildContext(c)
	logger.Error(ctx, "bot", "handler.error",
		slog.Int64("user_id", senderID(c)),
		slog.String("err", logger.ErrAttr(err)),
	)

	if c.Callback() != nil && !callbacks.Answered(c) {
		_ = callbacks.Answer(c)
	}
	if c.Chat() == nil && c.Sender() == nil {
		return
	}
	if sendErr := c.Send(textGenericFailure); sendErr != nil {
		logger.Warn(ctx, "bot", "handler.error.reply",
			slog.String("err", logger.ErrAttr(sendErr)),
		)
	}
}

// OnLimited answers throttled updates. Callbacks get a short notice so the
// client stops spinning; throttled messages are dropped silently.
func (h *Handlers) OnLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return answerText(c, textTooFast)
}
