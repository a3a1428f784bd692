package unitofwork

import (
	"context"

	"ai-webchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	MembershipRepository() contract.MembershipRepository
	ConversationRepository() contract.ConversationRepository
}
