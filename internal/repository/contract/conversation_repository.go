package contract

import (
	"context"

	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	CreateLink(ctx context.Context, link *entity.SessionMessageLink) error
	DeleteLinksByChatID(ctx context.Context, chatId uuid.UUID) error
	DeleteByChatID(ctx context.Context, chatId uuid.UUID) error
	// FindHistory returns the session's conversation rows ascending by
	// timestamp, tie-broken by convo_id so the order is total and stable.
	FindHistory(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
