package implementation

import (
	"context"
	"errors"

	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/mapper"
	"ai-webchat-be/internal/model"
	"ai-webchat-be/internal/repository/contract"
	"ai-webchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) CreateLink(ctx context.Context, link *entity.SessionMessageLink) error {
	return r.db.WithContext(ctx).Create(r.mapper.LinkToModel(link)).Error
}

func (r *ConversationRepositoryImpl) DeleteLinksByChatID(ctx context.Context, chatId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Delete(&model.SessionMessageLink{}).Error
}

func (r *ConversationRepositoryImpl) DeleteByChatID(ctx context.Context, chatId uuid.UUID) error {
	subQuery := r.db.Table("chat_names_conversations").
		Select("convo_id").
		Where("chat_id = ?", chatId)
	return r.db.WithContext(ctx).
		Where("convo_id IN (?)", subQuery).
		Delete(&model.Conversation{}).Error
}

func (r *ConversationRepositoryImpl) FindHistory(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	err := r.db.WithContext(ctx).
		Table("conversations AS c").
		Select("c.convo_id, c.convo_person, c.convo_content, c.convo_timestamp").
		Joins("JOIN chat_names_conversations cnc ON c.convo_id = cnc.convo_id").
		Where("cnc.chat_id = ?", chatId).
		Order("c.convo_timestamp ASC, c.convo_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	conversations := make([]*entity.Conversation, len(models))
	for i, m := range models {
		conversations[i] = r.mapper.ConversationToEntity(m)
	}
	return conversations, nil
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
