package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/models"
)

const contactMessageEntity = "contact message"

type ContactMessageRepo struct {
	db *gorm.DB
}

func NewContactMessageRepo(db *gorm.DB) *ContactMessageRepo {
	return &ContactMessageRepo{db}
}

// FindAll returns every contact message, newest first
func (r *ContactMessageRepo) FindAll(ctx context.Context) ([]*models.ContactMessage, error) {
	messages := []*models.ContactMessage{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&messages).Error
	return messages, err
}

// CountUnread returns the number of messages not yet marked as read
func (r *ContactMessageRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// FindByID returns a contact message by its ID
func (r *ContactMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var message models.ContactMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, translateError(contactMessageEntity, err)
	}
	return &message, nil
}

// Add inserts a new contact message into the database
func (r *ContactMessageRepo) Add(ctx context.Context, message *models.ContactMessage) error {
	return translateError(contactMessageEntity, r.db.WithContext(ctx).Create(message).Error)
}

// MarkRead flags the message as read. There is no way back to unread.
func (r *ContactMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", true).Error
	if err != nil {
		return nil, translateError(contactMessageEntity, err)
	}

	return r.FindByID(ctx, id)
}

// Delete removes a contact message from the database by id
func (r *ContactMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if res.Error != nil {
		return translateError(contactMessageEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError(contactMessageEntity, gorm.ErrRecordNotFound)
	}
	return nil
}
