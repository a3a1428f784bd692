package database

import (
	"ai-webchat-be/internal/model"

	"gorm.io/gorm"
)

// InitSchema creates the chat tables when absent. Safe to call repeatedly.
func InitSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.SessionMembership{},
		&model.Conversation{},
		&model.SessionMessageLink{},
	)
}

// DropSchema removes every chat table. Destructive, used for reset and
// integration testing only.
func DropSchema(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&model.SessionMessageLink{},
		&model.Conversation{},
		&model.SessionMembership{},
		&model.ChatSession{},
		&model.User{},
	)
}
