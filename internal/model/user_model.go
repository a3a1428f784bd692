package model

import "time"

type User struct {
	UserId       string  `gorm:"type:varchar(64);primaryKey"`
	Name         string  `gorm:"type:varchar(255);not null"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash *string `gorm:"type:varchar(255)"`
	Verified     bool    `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
