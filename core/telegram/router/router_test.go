package router

import (
	"errors"
	"testing"

	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/callbacks"
	"github.com/m3rciful/weatherbot/core/telegram/commands"
	"github.com/m3rciful/weatherbot/core/telegram/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	user      *tele.User
	msg       *tele.Message
	cb        *tele.Callback
	store     map[string]any
	responses []*tele.CallbackResponse
}

func newFake(userID int64) *fakeContext {
	return &fakeContext{user: &tele.User{ID: userID}, store: map[string]any{}}
}

func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Update() tele.Update {
	return tele.Update{ID: 42, Message: f.msg, Callback: f.cb}
}
func (f *fakeContext) Text() string {
	if f.msg == nil {
		return ""
	}
	return f.msg.Text
}
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }
func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	var r *tele.CallbackResponse
	if len(resp) > 0 {
		r = resp[0]
	}
	f.responses = append(f.responses, r)
	return nil
}

func TestCallbackRouteAnswersOnce(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("silent", func(tele.Context) error { return nil }))
	require.NoError(t, reg.RegisterCallback("alert", func(c tele.Context) error {
		return callbacks.Answer(c, &tele.CallbackResponse{Text: "❌", ShowAlert: true})
	}))
	route := CallbackRoute(reg)

	c := newFake(1)
	c.cb = &tele.Callback{Data: "\fsilent"}
	require.NoError(t, route.Handler(c))
	assert.Len(t, c.responses, 1)

	c = newFake(1)
	c.cb = &tele.Callback{Data: "\falert|x"}
	require.NoError(t, route.Handler(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, "❌", c.responses[0].Text)
}

func TestCallbackRouteUnknownKey(t *testing.T) {
	route := CallbackRoute(tg.NewRegistry())
	c := newFake(1)
	c.cb = &tele.Callback{Data: "\fnope|1"}
	require.NoError(t, route.Handler(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, tg.UnsupportedActionText, c.responses[0].Text)
}

func TestCallbackRouteAnswersOnError(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("bad", func(tele.Context) error { return errors.New("boom") }))
	route := CallbackRoute(reg)
	c := newFake(1)
	c.cb = &tele.Callback{Data: "\fbad"}
	assert.EqualError(t, route.Handler(c), "boom")
	assert.Len(t, c.responses, 1)
}

func TestTextRouteConsumesOnlyPendingMode(t *testing.T) {
	const awaiting state.State = "awaiting_name"
	mgr := state.NewMemoryManager()
	var got []string
	mgr.RegisterHandler(awaiting, func(c tele.Context) error {
		got = append(got, c.Text())
		mgr.ClearState(c.Sender().ID)
		return nil
	})
	h := TextRoutes(mgr)[0].Handler

	c := newFake(5)
	c.msg = &tele.Message{Text: "Олена"}
	require.NoError(t, h(c))
	assert.Empty(t, got)

	mgr.SetState(5, awaiting)
	c = newFake(5)
	c.msg = &tele.Message{Text: "/unknown"}
	require.NoError(t, h(c))
	assert.Empty(t, got)

	c = newFake(5)
	c.msg = &tele.Message{Text: "Олена"}
	require.NoError(t, h(c))
	assert.Equal(t, []string{"Олена"}, got)
	assert.False(t, mgr.InProgress(5))
}

func TestCommandRoutesAdminOnly(t *testing.T) {
	reg := tg.NewRegistry()
	calls := 0
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { calls++; return nil },
		Description: "stats",
		AdminOnly:   true,
		Hidden:      true,
	}))
	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 100})
	require.Len(t, routes, 1)

	c := newFake(1)
	c.msg = &tele.Message{Text: "/stats"}
	require.NoError(t, routes[0].Handler(c))
	assert.Equal(t, 0, calls)

	c = newFake(100)
	c.msg = &tele.Message{Text: "/stats"}
	require.NoError(t, routes[0].Handler(c))
	assert.Equal(t, 1, calls)

	assert.Empty(t, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 1)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/Start"))
	assert.Equal(t, "unknown", normalizeHandlerName(" "))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
}
