package contract

import (
	"context"

	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// Rename updates chat_name only; updated_at is left untouched because
	// message append is the sole driver of recency ordering.
	Rename(ctx context.Context, chatId uuid.UUID, newName string) error
	Touch(ctx context.Context, chatId uuid.UUID) error
	Delete(ctx context.Context, chatId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	// FindAllByUser returns the user's sessions ordered most-recently-updated
	// first, each augmented with its latest message content.
	FindAllByUser(ctx context.Context, userId string) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, membership *entity.SessionMembership) error
	DeleteByChatID(ctx context.Context, chatId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionMembership, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
