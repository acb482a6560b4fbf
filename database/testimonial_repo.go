package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/models"
)

const testimonialEntity = "testimonial"

type TestimonialRepo struct {
	db *gorm.DB
}

func NewTestimonialRepo(db *gorm.DB) *TestimonialRepo {
	return &TestimonialRepo{db}
}

// TestimonialFilter narrows FindAll. The zero value matches every testimonial.
type TestimonialFilter struct {
	ActiveOnly bool
}

// FindAll returns the testimonials matching filter, newest first
func (r *TestimonialRepo) FindAll(ctx context.Context, filter TestimonialFilter) ([]*models.Testimonial, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	testimonials := []*models.Testimonial{}
	err := q.Find(&testimonials).Error
	return testimonials, err
}

// FindByID returns a testimonial by its ID
func (r *TestimonialRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	var testimonial models.Testimonial
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&testimonial).Error; err != nil {
		return nil, translateError(testimonialEntity, err)
	}
	return &testimonial, nil
}

// Add inserts a new testimonial into the database
func (r *TestimonialRepo) Add(ctx context.Context, testimonial *models.Testimonial) error {
	return translateError(testimonialEntity, r.db.WithContext(ctx).Create(testimonial).Error)
}

// Update applies the given column changes to the testimonial and returns the stored result
func (r *TestimonialRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Testimonial, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&models.Testimonial{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return nil, translateError(testimonialEntity, err)
		}
	}

	return r.FindByID(ctx, id)
}

// Delete removes a testimonial from the database by id
func (r *TestimonialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Testimonial{})
	if res.Error != nil {
		return translateError(testimonialEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError(testimonialEntity, gorm.ErrRecordNotFound)
	}
	return nil
}
