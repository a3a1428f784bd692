package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChatName is applied at creation so ChatName always has a value.
const DefaultChatName = "This chat does not have a name yet"

type ChatSession struct {
	ChatId    uuid.UUID
	ChatName  string
	CreatedAt time.Time
	UpdatedAt time.Time
	// LastMessage carries the most recent conversation content when the
	// session was loaded through a listing; empty when no messages exist.
	LastMessage string
}

// SessionMembership is the owning (userId, chatId) junction row. Every
// session has exactly one, created atomically with the session itself.
type SessionMembership struct {
	UserId    string
	ChatId    uuid.UUID
	CreatedAt time.Time
}
