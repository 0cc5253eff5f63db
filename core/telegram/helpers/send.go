package helpers

import (
	tele "gopkg.in/telebot.v4"
)

func withMarkup(markup []*tele.ReplyMarkup) []any {
	if len(markup) == 0 || markup[0] == nil {
		return nil
	}
	return []any{markup[0]}
}

// SendText sends plain text with an optional reply markup.
// Sends are synchronous so consecutive replies keep their order.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, withMarkup(markup)...)
}

// EditText edits the message the current callback belongs to.
func EditText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Edit(text, withMarkup(markup)...)
}

// EditOrSendText edits the callback message or sends a new one when there is nothing to edit.
func EditOrSendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, withMarkup(markup)...)
}
