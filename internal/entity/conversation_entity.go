package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser = "user"
	SenderGPT  = "gpt"
)

type Conversation struct {
	ConvoId   uuid.UUID
	Sender    string
	Content   string
	Timestamp time.Time
}

// SessionMessageLink associates a conversation row to its session without a
// foreign key on the conversation row itself. Created atomically with each
// conversation insert.
type SessionMessageLink struct {
	ChatId    uuid.UUID
	ConvoId   uuid.UUID
	CreatedAt time.Time
}
