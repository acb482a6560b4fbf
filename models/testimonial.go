package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Testimonial is a client quote. Only active testimonials are public.
type Testimonial struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	ClientName string    `json:"client_name" gorm:"type:text;not null"`
	Company    string    `json:"company" gorm:"type:text;not null"`
	Role       string    `json:"role" gorm:"type:text;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Rating     int       `json:"rating" gorm:"type:integer;not null;check:chk_testimonial_rating,rating >= 1 AND rating <= 5"`
	LogoURL    string    `json:"logo_url" gorm:"type:text;not null"`
	IsActive   bool      `json:"is_active" gorm:"not null;index:idx_testimonial_is_active"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:timestamp;not null;index:idx_testimonial_created_at"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}
