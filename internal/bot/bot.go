// Package bot implements the weather bot conversation: commands, inline
// callbacks and the name-input mode.
package bot

import (
	"context"
	"fmt"
	"time"

	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/profile"
	"github.com/m3rciful/weatherbot/internal/weather"

	tele "gopkg.in/telebot.v4"
)

// StateAwaitingName waits for the new display name.
const StateAwaitingName state.State = "awaiting_name"

// Profiles is the profile cycle the handlers depend on.
type Profiles interface {
	Touch(ctx context.Context, id int64, defaultName string) profile.Profile
	Update(ctx context.Context, id int64, defaultName string, fn func(*profile.Profile)) profile.Profile
	Peek(ctx context.Context, id int64) (profile.Profile, bool)
	Count(ctx context.Context) int
}

// Cities is the read side of the city directory.
type Cities interface {
	EnsureLoaded(ctx context.Context)
	Letters() []string
	StartingWith(letter string) []string
	Len() int
}

// Weather fetches current conditions for a Latin city name.
type Weather interface {
	Fetch(ctx context.Context, city string) (*weather.Report, error)
}

// Deps are the collaborators of Handlers.
type Deps struct {
	Profiles Profiles
	Cities   Cities
	Weather  Weather
	States   state.Manager
	// Now stamps history entries; defaults to time.Now.
	Now func() time.Time
}

// Handlers serves every bot interaction.
type Handlers struct {
	profiles Profiles
	cities   Cities
	weather  Weather
	states   state.Manager
	now      func() time.Time
}

// New validates deps and builds Handlers.
func New(d Deps) (*Handlers, error) {
	switch {
	case d.Profiles == nil:
		return nil, fmt.Errorf("bot: profiles service is required")
	case d.Cities == nil:
		return nil, fmt.Errorf("bot: city directory is required")
	case d.Weather == nil:
		return nil, fmt.Errorf("bot: weather client is required")
	case d.States == nil:
		return nil, fmt.Errorf("bot: state manager is required")
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		profiles: d.Profiles,
		cities:   d.Cities,
		weather:  d.Weather,
		states:   d.States,
		now:      now,
	}, nil
}

// Register binds commands, callbacks and the name-input mode.
func (h *Handlers) Register(reg *tg.Registry) error {
	if reg == nil {
		return fmt.Errorf("bot: nil registry")
	}

	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.onStart, Description: descStart}},
		{"/profile", commands.Command{Handler: h.onProfile, Description: descProfile}},
		{"/weather", commands.Command{Handler: h.onWeather, Description: descWeather}},
		{"/stats", commands.Command{Handler: h.onStats, Description: descStats, AdminOnly: true, Hidden: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return fmt.Errorf("bot: register %s: %w", c.name, err)
		}
	}

	cbs := []struct {
		key string
		fn  tele.HandlerFunc
	}{
		{cbProfile, h.onProfileButton},
		{cbChangeName, h.onChangeName},
		{cbSelectCity, h.onSelectCity},
		{cbLetter, h.onLetter},
		{cbSetCity, h.onSetCity},
		{cbHistory, h.onHistory},
		{cbWeather, h.onWeatherButton},
	}
	for _, cb := range cbs {
		if err := reg.RegisterCallback(cb.key, cb.fn); err != nil {
			return fmt.Errorf("bot: register callback %s: %w", cb.key, err)
		}
	}

	h.states.RegisterHandler(StateAwaitingName, h.onNameInput)
	return nil
}

func (h *Handlers) stamp() string {
	return tghelpers.FormatStamp(h.now())
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func defaultName(c tele.Context) string {
	if u := c.Sender(); u != nil {
		return profile.DisplayName(u.FirstName)
	}
	return profile.DefaultName
}
