package service

import (
	"context"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/repository/specification"
	"ai-webchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMessageService interface {
	AppendMessage(ctx context.Context, chatId uuid.UUID, sender, content string) (*entity.Conversation, error)
	GetHistory(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error)
	RenameSession(ctx context.Context, userId string, chatId uuid.UUID, newName string) error
	// AuthorizeAccess verifies the caller owns the session before any
	// session-scoped read or write.
	AuthorizeAccess(ctx context.Context, userId string, chatId uuid.UUID) error
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory, sysLogger logger.ILogger) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		logger:     sysLogger,
	}
}

// AppendMessage durably records one message against a session. The row, its
// session link, and the session's updated_at bump commit together so the
// recency ordering in the session list can never drift from the history.
func (s *messageService) AppendMessage(ctx context.Context, chatId uuid.UUID, sender, content string) (*entity.Conversation, error) {
	if sender != entity.SenderUser && sender != entity.SenderGPT {
		return nil, apperror.Wrapf(apperror.ErrValidationFailure, "unknown sender %q", sender)
	}
	if content == "" {
		return nil, apperror.Wrapf(apperror.ErrValidationFailure, "message content is empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	conversation := &entity.Conversation{
		ConvoId:   uuid.New(),
		Sender:    sender,
		Content:   content,
		Timestamp: now,
	}
	link := &entity.SessionMessageLink{
		ChatId:    chatId,
		ConvoId:   conversation.ConvoId,
		CreatedAt: now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap(apperror.ErrConnectionFailure, err)
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.ConversationRepository().CreateLink(ctx, link); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.ChatSessionRepository().Touch(ctx, chatId); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	return conversation, nil
}

func (s *messageService) GetHistory(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	history, err := uow.ConversationRepository().FindHistory(ctx, chatId)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	return history, nil
}

// AuthorizeAccess enforces the owns-chat model: a session is reachable only
// through its owning membership row. Unknown and foreign chatIds are
// indistinguishable to the caller.
func (s *messageService) AuthorizeAccess(ctx context.Context, userId string, chatId uuid.UUID) error {
	if userId == "" {
		return apperror.Wrapf(apperror.ErrNotAuthenticated, "no resolvable user identity")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ByChatID{ChatID: chatId},
	)
	if err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if membership == nil {
		return apperror.Wrapf(apperror.ErrNotAuthenticated, "session is not owned by the caller")
	}
	return nil
}

// RenameSession changes the display name only. It deliberately leaves
// updated_at alone, so renaming never reorders the session list.
func (s *messageService) RenameSession(ctx context.Context, userId string, chatId uuid.UUID, newName string) error {
	if newName == "" {
		return apperror.Wrapf(apperror.ErrValidationFailure, "new name is empty")
	}
	if err := s.AuthorizeAccess(ctx, userId, chatId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Rename(ctx, chatId, newName); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	return nil
}
