package implementation

import (
	"context"
	"errors"
	"time"

	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/mapper"
	"ai-webchat-be/internal/model"
	"ai-webchat-be/internal/repository/contract"
	"ai-webchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) Rename(ctx context.Context, chatId uuid.UUID, newName string) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("chat_id = ?", chatId).
		UpdateColumn("chat_name", newName).Error
}

func (r *ChatSessionRepositoryImpl) Touch(ctx context.Context, chatId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("chat_id = ?", chatId).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

func (r *ChatSessionRepositoryImpl) Delete(ctx context.Context, chatId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Delete(&model.ChatSession{}).Error
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

// sessionListing is the scan target for the listing join.
type sessionListing struct {
	ChatId      uuid.UUID
	ChatName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastMessage *string
}

func (r *ChatSessionRepositoryImpl) FindAllByUser(ctx context.Context, userId string) ([]*entity.ChatSession, error) {
	var rows []sessionListing
	err := r.db.WithContext(ctx).
		Table("chat_names AS cn").
		Select(`cn.chat_id, cn.chat_name, cn.created_at, cn.updated_at,
			(SELECT c.convo_content
			 FROM conversations c
			 JOIN chat_names_conversations cnc ON c.convo_id = cnc.convo_id
			 WHERE cnc.chat_id = cn.chat_id
			 ORDER BY c.convo_timestamp DESC, c.convo_id DESC
			 LIMIT 1) AS last_message`).
		Joins("JOIN user_chat_names ucn ON cn.chat_id = ucn.chat_id").
		Where("ucn.user_id = ?", userId).
		Order("cn.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, len(rows))
	for i, row := range rows {
		s := &entity.ChatSession{
			ChatId:    row.ChatId,
			ChatName:  row.ChatName,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if row.LastMessage != nil {
			s.LastMessage = *row.LastMessage
		}
		sessions[i] = s
	}
	return sessions, nil
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMembershipRepository(db *gorm.DB) contract.MembershipRepository {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MembershipRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MembershipRepositoryImpl) Create(ctx context.Context, membership *entity.SessionMembership) error {
	m := r.mapper.MembershipToModel(membership)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*membership = *r.mapper.MembershipToEntity(m)
	return nil
}

func (r *MembershipRepositoryImpl) DeleteByChatID(ctx context.Context, chatId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Delete(&model.SessionMembership{}).Error
}

func (r *MembershipRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionMembership, error) {
	var m model.SessionMembership
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MembershipToEntity(&m), nil
}

func (r *MembershipRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SessionMembership{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
