package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/weatherbot/core/logger"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/internal/profile"
	"github.com/m3rciful/weatherbot/internal/translit"

	tele "gopkg.in/telebot.v4"
)

func answerText(c tele.Context, text string) error {
	return callbacks.Answer(c, &tele.CallbackResponse{Text: text})
}

func (h *Handlers) onProfileButton(c tele.Context) error {
	id := senderID(c)
	h.states.ClearState(id)
	p := h.profiles.Touch(tghelpers.BuildContext(c), id, defaultName(c))
	text, markup := profileScreen(p)
	return tghelpers.EditOrSendText(c, text, markup)
}

func (h *Handlers) onChangeName(c tele.Context) error {
	h.states.SetState(senderID(c), StateAwaitingName)
	return tghelpers.SendText(c, textAskName)
}

func (h *Handlers) onSelectCity(c tele.Context) error {
	h.cities.EnsureLoaded(tghelpers.BuildContext(c))
	letters := h.cities.Letters()
	if len(letters) == 0 {
		return answerText(c, textDirectoryEmpty)
	}
	text, markup := lettersScreen(letters)
	return tghelpers.EditOrSendText(c, text, markup)
}

func (h *Handlers) onLetter(c tele.Context) error {
	letter := strings.TrimSpace(callbacks.CallbackPayload(c))
	h.cities.EnsureLoaded(tghelpers.BuildContext(c))
	list := h.cities.StartingWith(letter)
	if letter == "" || len(list) == 0 {
		return answerText(c, textNoCitiesLetter)
	}
	text, markup := citiesScreen(letter, list)
	return tghelpers.EditText(c, text, markup)
}

func (h *Handlers) onSetCity(c tele.Context) error {
	city := strings.TrimSpace(callbacks.CallbackPayload(c))
	if city == "" {
		return answerText(c, tg.UnsupportedActionText)
	}

	ctx := tghelpers.BuildContext(c)
	stamp := h.stamp()
	h.profiles.Update(ctx, senderID(c), defaultName(c), func(p *profile.Profile) {
		p.SetCity(city, stamp)
	})
	logger.Info(ctx, "bot", "city.set", slog.String("city", city))

	if err := answerText(c, fmt.Sprintf(textCityChosen, city)); err != nil {
		return err
	}
	return tghelpers.EditText(c, fmt.Sprintf(textCitySet, city))
}

func (h *Handlers) onHistory(c tele.Context) error {
	p, _ := h.profiles.Peek(tghelpers.BuildContext(c), senderID(c))
	return tghelpers.EditText(c, historyText(p))
}

func (h *Handlers) onWeatherButton(c tele.Context) error {
	city := strings.TrimSpace(callbacks.CallbackPayload(c))
	if city == "" {
		return answerText(c, textWeatherFailed)
	}

	ctx := tghelpers.BuildContext(c)
	report, err := h.weather.Fetch(ctx, translit.Latin(city))
	if err != nil {
		logger.Info(ctx, "bot", "weather.not_found",
			slog.String("city", city),
			slog.String("err", logger.ErrAttr(err)),
		)
		return answerText(c, textWeatherFailed)
	}
	return tghelpers.EditText(c, weatherSummary(report, locationParen))
}
