package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/models"
)

const projectEntity = "project"

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// ProjectFilter narrows FindAll. The zero value matches every project.
type ProjectFilter struct {
	FeaturedOnly bool
}

// FindAll returns the projects matching filter, newest first
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}

	projects := []*models.Project{}
	err := q.Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, translateError(projectEntity, err)
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return translateError(projectEntity, r.db.WithContext(ctx).Create(project).Error)
}

// Update applies the given column changes to the project and returns the stored result
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Project, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return nil, translateError(projectEntity, err)
		}
	}

	return r.FindByID(ctx, id)
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return translateError(projectEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError(projectEntity, gorm.ErrRecordNotFound)
	}
	return nil
}
