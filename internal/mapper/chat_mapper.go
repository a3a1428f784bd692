package mapper

import (
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		ChatId:    s.ChatId,
		ChatName:  s.ChatName,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		ChatId:    s.ChatId,
		ChatName:  s.ChatName,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) MembershipToEntity(mm *model.SessionMembership) *entity.SessionMembership {
	if mm == nil {
		return nil
	}
	return &entity.SessionMembership{
		UserId:    mm.UserId,
		ChatId:    mm.ChatId,
		CreatedAt: mm.CreatedAt,
	}
}

func (m *ChatMapper) MembershipToModel(mm *entity.SessionMembership) *model.SessionMembership {
	if mm == nil {
		return nil
	}
	return &model.SessionMembership{
		UserId:    mm.UserId,
		ChatId:    mm.ChatId,
		CreatedAt: mm.CreatedAt,
	}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		ConvoId:   c.ConvoId,
		Sender:    c.Sender,
		Content:   c.Content,
		Timestamp: c.Timestamp,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		ConvoId:   c.ConvoId,
		Sender:    c.Sender,
		Content:   c.Content,
		Timestamp: c.Timestamp,
	}
}

func (m *ChatMapper) LinkToModel(l *entity.SessionMessageLink) *model.SessionMessageLink {
	if l == nil {
		return nil
	}
	return &model.SessionMessageLink{
		ChatId:    l.ChatId,
		ConvoId:   l.ConvoId,
		CreatedAt: l.CreatedAt,
	}
}
