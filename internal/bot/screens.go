package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/keyboard"
	"github.com/m3rciful/weatherbot/internal/profile"
	"github.com/m3rciful/weatherbot/internal/weather"

	tele "gopkg.in/telebot.v4"
)

// Callback keys.
const (
	cbProfile    = "profile"
	cbChangeName = "change_name"
	cbSelectCity = "select_city"
	cbLetter     = "letter"
	cbSetCity    = "setcity"
	cbHistory    = "history"
	cbWeather    = "weather"
)

const (
	lettersPerRow = 6
	citiesPerRow  = 2

	// maxCallbackData is Telegram's limit on callback_data bytes.
	maxCallbackData = 64
)

// fitsCallback reports whether a button with unique and data can be sent.
func fitsCallback(unique, data string) bool {
	return len("\f"+unique+"|"+data) <= maxCallbackData
}

func profileButton() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{{Text: textProfileButton, Unique: cbProfile}})
}

func profileScreen(p profile.Profile) (string, *tele.ReplyMarkup) {
	city := p.City
	if city == "" {
		city = textNoCity
	}
	text := fmt.Sprintf(textProfile, p.Name, city)

	buttons := []keyboard.InlineBtn{{Text: textChangeName, Unique: cbChangeName}}
	if p.City != "" {
		if fitsCallback(cbWeather, p.City) {
			buttons = append(buttons, keyboard.InlineBtn{Text: textMyCityWeather, Unique: cbWeather, Data: p.City})
		}
		buttons = append(buttons, keyboard.InlineBtn{Text: textChangeCity, Unique: cbSelectCity})
	} else {
		buttons = append(buttons, keyboard.InlineBtn{Text: textPickCity, Unique: cbSelectCity})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: textHistoryButton, Unique: cbHistory})
	return text, keyboard.InlineButtons(buttons)
}

func lettersScreen(letters []string) (string, *tele.ReplyMarkup) {
	buttons := make([]keyboard.InlineBtn, 0, len(letters))
	for _, l := range letters {
		buttons = append(buttons, keyboard.InlineBtn{Text: l, Unique: cbLetter, Data: l})
	}
	return textPickLetter, keyboard.InlineButtonsNPerRow(buttons, lettersPerRow)
}

func citiesScreen(letter string, list []string) (string, *tele.ReplyMarkup) {
	buttons := make([]keyboard.InlineBtn, 0, len(list))
	for _, city := range list {
		if !fitsCallback(cbSetCity, city) {
			continue
		}
		buttons = append(buttons, keyboard.InlineBtn{Text: city, Unique: cbSetCity, Data: city})
	}
	rows := keyboard.Chunk(buttons, citiesPerRow)
	rows = append(rows, []keyboard.InlineBtn{{Text: textBackToLetters, Unique: cbSelectCity}})
	return fmt.Sprintf(textCitiesOnLetter, letter, len(list)), keyboard.InlineButtonsRows(rows...)
}

// locationStyle picks how the location heading is rendered.
type locationStyle int

const (
	// locationComma renders "🌆 Kyiv, Ukraine".
	locationComma locationStyle = iota
	// locationParen renders "🌆 Kyiv (Ukraine)".
	locationParen
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func weatherSummary(r *weather.Report, style locationStyle) string {
	heading := fmt.Sprintf("🌆 %s, %s", r.Location.Name, r.Location.Country)
	if style == locationParen {
		heading = fmt.Sprintf("🌆 %s (%s)", r.Location.Name, r.Location.Country)
	}
	lines := []string{
		heading,
		fmt.Sprintf(textTemperatureLine, formatNumber(r.Current.TempC), formatNumber(r.Current.FeelsLikeC)),
		fmt.Sprintf(textWindLine, formatNumber(r.Current.WindKPH)),
		fmt.Sprintf(textHumidityLine, strconv.Itoa(r.Current.Humidity)),
		fmt.Sprintf(textConditionLine, r.Current.Condition.Text),
	}
	return strings.Join(lines, "\n")
}

// historyText lists visits oldest first. Unparseable stamps sort last,
// ties fall back to Ukrainian collation of the city name.
func historyText(p profile.Profile) string {
	if len(p.History) == 0 {
		return fmt.Sprintf(textHistory, textHistoryEmpty)
	}

	type entry struct {
		city  string
		stamp string
	}
	entries := make([]entry, 0, len(p.History))
	for city, v := range p.History {
		entries = append(entries, entry{city: city, stamp: v.Time})
	}

	col := collate.New(language.Ukrainian)
	sort.SliceStable(entries, func(i, j int) bool {
		ti, okI := tghelpers.ParseStamp(entries[i].stamp)
		tj, okJ := tghelpers.ParseStamp(entries[j].stamp)
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.Before(tj)
		case okI != okJ:
			return okI
		}
		return col.CompareString(entries[i].city, entries[j].city) < 0
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf(textHistoryLine, e.city, e.stamp))
	}
	return fmt.Sprintf(textHistory, strings.Join(lines, "\n"))
}
