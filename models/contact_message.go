package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage is a submission of the public contact form.
// IsRead only ever moves from false to true.
type ContactMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"type:text;not null;index:idx_contact_message_email"`
	Phone     string    `json:"phone" gorm:"type:text;not null"`
	Company   string    `json:"company" gorm:"type:text;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null;index:idx_contact_message_is_read"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp;not null;index:idx_contact_message_created_at"`
}

func (c *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}
