package state

import tele "gopkg.in/telebot.v4"

// State identifies a conversation step that waits for user input.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Manager orchestrates per-user conversation modes.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)
	InProgress(userID int64) bool

	// RegisterHandler binds the handler that consumes input while a user is in st.
	RegisterHandler(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error
}
