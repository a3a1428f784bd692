package memory

import (
	"time"

	"ai-webchat-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// TranscriptRepository keeps the in-memory transcript of connected sessions.
// Entries expire after an hour of inactivity so abandoned sessions do not
// accumulate.
type TranscriptRepository struct {
	cache *cache.Cache
}

func NewTranscriptRepository() *TranscriptRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &TranscriptRepository{
		cache: c,
	}
}

func (r *TranscriptRepository) Save(chatId string, transcript []*entity.Conversation) {
	r.cache.Set(chatId, transcript, cache.DefaultExpiration)
}

func (r *TranscriptRepository) Get(chatId string) ([]*entity.Conversation, bool) {
	if x, found := r.cache.Get(chatId); found {
		return x.([]*entity.Conversation), true
	}
	return nil, false
}

func (r *TranscriptRepository) Delete(chatId string) {
	r.cache.Delete(chatId)
}
