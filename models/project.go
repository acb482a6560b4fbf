package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio case study.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Challenge   string    `json:"challenge" gorm:"type:text;not null"`
	Solution    string    `json:"solution" gorm:"type:text;not null"`
	Results     string    `json:"results" gorm:"type:text;not null"`
	Category    string    `json:"category" gorm:"type:text;not null"`
	ImageURL    string    `json:"image_url" gorm:"type:text;not null"`
	Year        string    `json:"year" gorm:"type:text;not null"`
	IsFeatured  bool      `json:"is_featured" gorm:"not null;index:idx_project_is_featured"`
	CreatedAt   time.Time `json:"created_at" gorm:"type:timestamp;not null;index:idx_project_created_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}
