package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

const awaiting State = "awaiting_name"

type stubContext struct {
	tele.Context
	sender *tele.User
	msg    *tele.Message
	store  map[string]any
}

func newStub(userID int64, text string) *stubContext {
	return &stubContext{
		sender: &tele.User{ID: userID},
		msg:    &tele.Message{Text: text},
		store:  map[string]any{},
	}
}

func (s *stubContext) Sender() *tele.User { return s.sender }
func (s *stubContext) Chat() *tele.Chat { return &tele.Chat{ID: s.sender.ID} }
func (s *stubContext) Message() *tele.Message { return s.msg }
func (s *stubContext) Callback() *tele.Callback { return nil }
func (s *stubContext) Update() tele.Update { return tele.Update{ID: 1, Message: s.msg} }
func (s *stubContext) Text() string { return s.msg.Text }
func (s *stubContext) Get(key string) any { return s.store[key] }
func (s *stubContext) Set(key string, v any) { s.store[key] = v }

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager()
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))

	m.SetState(1, awaiting)
	assert.Equal(t, awaiting, m.GetState(1))
	assert.True(t, m.InProgress(1))
	assert.False(t, m.InProgress(2))

	m.ClearState(1)
	assert.False(t, m.InProgress(1))

	m.SetState(1, awaiting)
	m.SetState(1, StateIdle)
	assert.False(t, m.InProgress(1))
}

func TestManagerHandlerDispatch(t *testing.T) {
	m := NewMemoryManager()
	called := 0
	m.RegisterHandler(awaiting, func(tele.Context) error {
		called++
		return errors.New("boom")
	})

	assert.NoError(t, m.ManagerHandler(newStub(7, "hi")))
	assert.Equal(t, 0, called)

	m.SetState(7, awaiting)
	assert.EqualError(t, m.ManagerHandler(newStub(7, "hi")), "boom")
	assert.Equal(t, 1, called)
}

func TestHandlersAreInstanceScoped(t *testing.T) {
	a, b := NewMemoryManager(), NewMemoryManager()
	hit := false
	a.RegisterHandler(awaiting, func(tele.Context) error { hit = true; return nil })
	b.SetState(1, awaiting)
	assert.NoError(t, b.ManagerHandler(newStub(1, "x")))
	assert.False(t, hit)
}

func TestClearOnCommand(t *testing.T) {
	m := NewMemoryManager()
	var seen State
	h := ClearOnCommand(m)(func(c tele.Context) error {
		seen = m.GetState(c.Sender().ID)
		return nil
	})

	m.SetState(3, awaiting)
	assert.NoError(t, h(newStub(3, "Олександр")))
	assert.Equal(t, awaiting, seen)

	assert.NoError(t, h(newStub(3, "/profile")))
	assert.Equal(t, StateIdle, seen)
	assert.False(t, m.InProgress(3))
}

func TestMemoryManagerConcurrent(t *testing.T) {
	m := NewMemoryManager()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, awaiting)
			_ = m.InProgress(id)
			m.ClearState(id)
		}(i)
	}
	wg.Wait()
	for i := int64(0); i < 50; i++ {
		assert.False(t, m.InProgress(i))
	}
}
