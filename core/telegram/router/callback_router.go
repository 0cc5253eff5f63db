package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns a route that dispatches callbacks through the registry.
// Every callback is answered exactly once: handlers answer through
// callbacks.Answer and the route answers for those that did not.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		var run tele.HandlerFunc
		if h, ok := reg.GetCallback(key); ok && h != nil {
			run = h
		} else {
			run = reg.CallbackNotFound()
			extras = append(extras, slog.String("reason", "not_found"))
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			var err error
			if run != nil {
				err = run(c)
			}
			if !callbacks.Answered(c) {
				_ = callbacks.Answer(c)
			}
			return err
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
