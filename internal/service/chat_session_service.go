package service

import (
	"context"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/events"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/repository/specification"
	"ai-webchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatSessionService interface {
	ListSessions(ctx context.Context, userId string) ([]*dto.SessionResponse, error)
	CreateSession(ctx context.Context, userId string, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	DeleteSession(ctx context.Context, userId string, chatId uuid.UUID) error
}

type chatSessionService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        *events.Bus
	logger     logger.ILogger
}

func NewChatSessionService(
	uowFactory unitofwork.RepositoryFactory,
	bus *events.Bus,
	sysLogger logger.ILogger,
) IChatSessionService {
	return &chatSessionService{
		uowFactory: uowFactory,
		bus:        bus,
		logger:     sysLogger,
	}
}

func (s *chatSessionService) ListSessions(ctx context.Context, userId string) ([]*dto.SessionResponse, error) {
	if userId == "" {
		return nil, apperror.Wrapf(apperror.ErrNotAuthenticated, "no resolvable user identity")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	response := make([]*dto.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		response = append(response, &dto.SessionResponse{
			ChatId:      sess.ChatId,
			ChatName:    sess.ChatName,
			LastMessage: sess.LastMessage,
			CreatedAt:   sess.CreatedAt,
			UpdatedAt:   sess.UpdatedAt,
		})
	}
	return response, nil
}

func (s *chatSessionService) CreateSession(ctx context.Context, userId string, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if userId == "" {
		return nil, apperror.Wrapf(apperror.ErrNotAuthenticated, "no resolvable user identity")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	session := &entity.ChatSession{
		ChatId:    uuid.New(),
		ChatName:  entity.DefaultChatName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &entity.SessionMembership{
		UserId:    userId,
		ChatId:    session.ChatId,
		CreatedAt: now,
	}

	// Session, membership, and the optional initial message commit as one
	// unit or not at all.
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap(apperror.ErrConnectionFailure, err)
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	if req != nil && req.InitialMessage != nil && *req.InitialMessage != "" {
		conversation := &entity.Conversation{
			ConvoId:   uuid.New(),
			Sender:    entity.SenderUser,
			Content:   *req.InitialMessage,
			Timestamp: now,
		}
		link := &entity.SessionMessageLink{
			ChatId:    session.ChatId,
			ConvoId:   conversation.ConvoId,
			CreatedAt: now,
		}
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
		}
		if err := uow.ConversationRepository().CreateLink(ctx, link); err != nil {
			return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	if err := s.bus.Publish(events.TopicSessionCreated, events.SessionEvent{
		UserId:     userId,
		ChatId:     session.ChatId.String(),
		OccurredAt: now,
	}); err != nil {
		s.logger.Warn("chat", "failed to publish session.created", map[string]interface{}{"chat_id": session.ChatId, "error": err.Error()})
	}

	return &dto.CreateSessionResponse{ChatId: session.ChatId}, nil
}

func (s *chatSessionService) DeleteSession(ctx context.Context, userId string, chatId uuid.UUID) error {
	if userId == "" {
		return apperror.Wrapf(apperror.ErrNotAuthenticated, "no resolvable user identity")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Ownership check doubles as the idempotency guard: an absent or
	// foreign chatId is a silent no-op.
	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ByChatID{ChatID: chatId},
	)
	if err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if membership == nil {
		return nil
	}

	// Junction rows go before parent rows. Conversation rows are removed in
	// the same unit so deleted sessions leave no orphaned history behind.
	if err := uow.Begin(ctx); err != nil {
		return apperror.Wrap(apperror.ErrConnectionFailure, err)
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().DeleteByChatID(ctx, chatId); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.ConversationRepository().DeleteLinksByChatID(ctx, chatId); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.MembershipRepository().DeleteByChatID(ctx, chatId); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, chatId); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	if err := s.bus.Publish(events.TopicSessionDeleted, events.SessionEvent{
		UserId:     userId,
		ChatId:     chatId.String(),
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("chat", "failed to publish session.deleted", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
	}

	return nil
}
