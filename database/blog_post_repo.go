package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/models"
)

const blogPostEntity = "blog post"

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// BlogPostFilter narrows FindAll. The zero value matches every post.
type BlogPostFilter struct {
	PublishedOnly bool
	Category      string
}

// FindAll returns the posts matching filter, newest first
func (r *BlogPostRepo) FindAll(ctx context.Context, filter BlogPostFilter) ([]*models.BlogPost, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	blogPosts := []*models.BlogPost{}
	err := q.Find(&blogPosts).Error
	return blogPosts, err
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&blogPost).Error; err != nil {
		return nil, translateError(blogPostEntity, err)
	}
	return &blogPost, nil
}

// FindBySlug returns the post with the given slug. With publishedOnly, a
// draft is reported as not found.
func (r *BlogPostRepo) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error) {
	q := r.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}

	var blogPost models.BlogPost
	if err := q.First(&blogPost).Error; err != nil {
		return nil, translateError(blogPostEntity, err)
	}
	return &blogPost, nil
}

// SlugTaken reports whether another post than exceptID already uses slug.
func (r *BlogPostRepo) SlugTaken(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost) error {
	return translateError(blogPostEntity, r.db.WithContext(ctx).Create(blogPost).Error)
}

// Update applies the given column changes to the post and returns the stored result
func (r *BlogPostRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.BlogPost, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return nil, translateError(blogPostEntity, err)
		}
	}

	return r.FindByID(ctx, id)
}

// Delete removes a blog post from the database by id
func (r *BlogPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlogPost{})
	if res.Error != nil {
		return translateError(blogPostEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError(blogPostEntity, gorm.ErrRecordNotFound)
	}
	return nil
}
