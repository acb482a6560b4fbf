package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser is an operator of the admin console.
type AdminUser struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Email        string    `json:"email" gorm:"type:text;not null;uniqueIndex:idx_admin_user_email"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	Name         string    `json:"name" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:timestamp;not null"`
}

func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}
