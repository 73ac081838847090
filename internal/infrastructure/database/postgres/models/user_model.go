package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key"`
	FirstName            string     `gorm:"type:varchar(25);not null"`
	LastName             string     `gorm:"type:varchar(25);not null"`
	Email                string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone                string     `gorm:"type:varchar(10);not null"`
	Photo                string     `gorm:"type:varchar(255);not null;default:'default.jpg'"`
	Role                 string     `gorm:"type:varchar(20);not null;default:'user'"`
	Password             string     `gorm:"type:varchar(255);not null"`
	CreatedAt            time.Time  `gorm:"not null"`
	PasswordChangedAt    *time.Time `gorm:"type:timestamptz"`
	PasswordResetToken   *string    `gorm:"type:varchar(64);index"`
	PasswordResetExpires *time.Time `gorm:"type:timestamptz;index"`
	Active               bool       `gorm:"not null;default:true"`
}

func (UserModel) TableName() string {
	return "users"
}
