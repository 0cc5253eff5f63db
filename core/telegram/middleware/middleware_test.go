package middleware

import (
	"errors"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/weatherbot/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	user  *tele.User
	upd   tele.Update
	store map[string]any
	sent  []any
}

func newFake(userID int64, upd tele.Update) *fakeContext {
	return &fakeContext{user: &tele.User{ID: userID}, upd: upd, store: map[string]any{}}
}

func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Update() tele.Update { return f.upd }
func (f *fakeContext) Text() string {
	if f.upd.Message == nil {
		return ""
	}
	return f.upd.Message.Text
}
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }
func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{coreconfig.UpdateCallback: {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	msg := tele.Update{Message: &tele.Message{Text: "hi"}}
	require.NoError(t, h(newFake(1, msg)))
	require.NoError(t, h(newFake(1, msg)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, limited)

	require.NoError(t, h(newFake(2, msg)))
	assert.Equal(t, 2, calls)

	cb := tele.Update{Callback: &tele.Callback{Data: "\fhistory"}}
	require.NoError(t, h(newFake(1, cb)))
	assert.Equal(t, 3, calls)

	now = now.Add(2 * time.Second)
	require.NoError(t, h(newFake(1, msg)))
	assert.Equal(t, 4, calls)
}

func TestLimiterEvictsStaleUsers(t *testing.T) {
	lim := newLimiter(time.Second)
	start := time.Unix(1_700_000_000, 0)

	for id := int64(1); id <= 50; id++ {
		require.True(t, lim.allow(id, start))
	}
	assert.Len(t, lim.lastSeen, 50)
	assert.False(t, lim.allow(7, start.Add(500*time.Millisecond)))

	later := start.Add(3 * time.Second)
	require.True(t, lim.allow(99, later))
	assert.Len(t, lim.lastSeen, 1)
	assert.Contains(t, lim.lastSeen, int64(99))
	assert.True(t, lim.allow(7, later.Add(time.Millisecond)))
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("kaboom") })
	err := h(newFake(1, tele.Update{ID: 9}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	want := errors.New("plain")
	assert.ErrorIs(t, RecoverMiddleware(func(tele.Context) error { return want })(newFake(1, tele.Update{})), want)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 10, OnReject: func(tele.Context) error { rejected++; return nil }})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newFake(1, tele.Update{})))
	require.NoError(t, h(newFake(10, tele.Update{})))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejected)

	closed := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { calls++; return nil })
	require.NoError(t, closed(newFake(10, tele.Update{})))
	assert.Equal(t, 1, calls)
}

func TestMessageMetricsMiddleware(t *testing.T) {
	var wrapped tele.Context
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		wrapped = c
		if err := c.Send("one"); err != nil {
			return err
		}
		return c.Send("two", &tele.ReplyMarkup{})
	})
	c := newFake(1, tele.Update{})
	require.NoError(t, h(c))
	msgs, kb := GetCounters(wrapped)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Len(t, c.sent, 2)
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := newFake(7, tele.Update{ID: 3, Message: &tele.Message{Text: "x"}})
	h := LoggerMiddleware(func(tele.Context) error { return nil })
	require.NoError(t, h(c))
	rid, _ := c.Get("rid").(string)
	assert.NotEmpty(t, rid)
	assert.NotNil(t, c.Get("logger_ctx"))
}
