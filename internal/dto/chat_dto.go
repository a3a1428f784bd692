package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	InitialMessage *string `json:"initialMessage"`
}

type CreateSessionResponse struct {
	ChatId uuid.UUID `json:"chatId"`
}

type SessionResponse struct {
	ChatId      uuid.UUID `json:"chatId"`
	ChatName    string    `json:"chatName"`
	LastMessage string    `json:"lastMessage,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RenameSessionRequest struct {
	ChatName string `json:"chatName" validate:"required"`
}

type MessageResponse struct {
	ConvoId   uuid.UUID `json:"convoId"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type SendMessageResponse struct {
	Sent  *MessageResponse `json:"sent"`
	Reply *MessageResponse `json:"reply"`
}

type CompletionMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type CompletionRequest struct {
	Messages []CompletionMessage `json:"messages" validate:"required,min=1,dive"`
	ChatId   string              `json:"chatId"`
}

type CompletionResponse struct {
	Content string `json:"content"`
}
