package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is an article shown on the public blog once published.
// Slug is the public lookup key and is unique across all posts.
type BlogPost struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Slug      string    `json:"slug" gorm:"type:text;not null;uniqueIndex:idx_blog_post_slug"`
	Excerpt   string    `json:"excerpt" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:text;not null"`
	Category  string    `json:"category" gorm:"type:text;not null;index:idx_blog_post_category"`
	Author    string    `json:"author" gorm:"type:text;not null"`
	Published bool      `json:"published" gorm:"not null;index:idx_blog_post_published"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp;not null;index:idx_blog_post_created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:timestamp;not null"`
}

// BeforeCreate assigns the identity and timestamps owned by the server.
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}
