package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/weatherbot/core/buildinfo"
	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/keyboard"
	"github.com/m3rciful/weatherbot/internal/profile"
	"github.com/m3rciful/weatherbot/internal/translit"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) onStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	p := h.profiles.Touch(ctx, senderID(c), defaultName(c))

	if err := tghelpers.SendText(c, fmt.Sprintf(textGreeting, p.Name), profileButton()); err != nil {
		return err
	}
	if p.City == "" {
		return nil
	}

	report, err := h.weather.Fetch(ctx, translit.Latin(p.City))
	if err != nil {
		// forecast failures after the greeting are logged only
		logger.Warn(ctx, "bot", "start.weather",
			slog.String("city", p.City),
			slog.String("err", logger.ErrAttr(err)),
		)
		return nil
	}
	return tghelpers.SendText(c, fmt.Sprintf(textWeatherAtHome, p.City, weatherSummary(report, locationComma)))
}

func (h *Handlers) onProfile(c tele.Context) error {
	p := h.profiles.Touch(tghelpers.BuildContext(c), senderID(c), defaultName(c))
	text, markup := profileScreen(p)
	return tghelpers.SendText(c, text, markup)
}

func (h *Handlers) onWeather(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	id := senderID(c)

	city := ""
	if msg := c.Message(); msg != nil {
		city = strings.TrimSpace(msg.Payload)
	}
	if city == "" {
		if p, ok := h.profiles.Peek(ctx, id); ok {
			city = p.City
		}
	}
	if city == "" {
		return tghelpers.SendText(c, textCityRequired)
	}

	report, err := h.weather.Fetch(ctx, translit.Latin(city))
	if err != nil {
		logger.Info(ctx, "bot", "weather.not_found",
			slog.String("city", city),
			slog.String("err", logger.ErrAttr(err)),
		)
		return tghelpers.SendText(c, textCityNotFound)
	}

	stamp := h.stamp()
	p := h.profiles.Update(ctx, id, defaultName(c), func(p *profile.Profile) {
		p.RecordVisit(city, stamp)
	})

	summary := weatherSummary(report, locationComma)
	if p.City == city || !fitsCallback(cbSetCity, city) {
		return tghelpers.SendText(c, summary)
	}
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   fmt.Sprintf(textSetCityButton, report.Location.Name),
		Unique: cbSetCity,
		Data:   city,
	}})
	return tghelpers.SendText(c, summary, markup)
}

func (h *Handlers) onStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	h.cities.EnsureLoaded(ctx)
	return tghelpers.SendText(c, fmt.Sprintf(textStats, h.profiles.Count(ctx), h.cities.Len(), buildinfo.String()))
}

// onNameInput consumes text while the user is in StateAwaitingName.
func (h *Handlers) onNameInput(c tele.Context) error {
	name := strings.TrimSpace(c.Text())
	if name == "" {
		return tghelpers.SendText(c, textAskName)
	}

	id := senderID(c)
	h.profiles.Update(tghelpers.BuildContext(c), id, defaultName(c), func(p *profile.Profile) {
		p.Name = name
	})
	h.states.ClearState(id)
	return tghelpers.SendText(c, textNameChanged, profileButton())
}
