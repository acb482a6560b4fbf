package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/models"
)

const adminUserEntity = "admin user"

type AdminUserRepo struct {
	db *gorm.DB
}

func NewAdminUserRepo(db *gorm.DB) *AdminUserRepo {
	return &AdminUserRepo{db}
}

// FindByID returns an admin by its ID
func (r *AdminUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(adminUserEntity, err)
	}
	return &user, nil
}

// FindByEmail returns the admin registered with email, compared case-insensitively
func (r *AdminUserRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translateError(adminUserEntity, err)
	}
	return &user, nil
}

// Count returns the number of registered admins
func (r *AdminUserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error
	return count, err
}

// Add inserts a new admin. The email is stored normalized so it stays unique
// regardless of case.
func (r *AdminUserRepo) Add(ctx context.Context, user *models.AdminUser) error {
	user.Email = NormalizeEmail(user.Email)
	return translateError(adminUserEntity, r.db.WithContext(ctx).Create(user).Error)
}

// AddFirst inserts user only while no admin exists and returns
// errs.ErrRegistrationClosed otherwise. Count and insert share one transaction;
// on postgres the table lock makes concurrent callers queue behind it, sqlite
// runs on a single connection.
func (r *AdminUserRepo) AddFirst(ctx context.Context, user *models.AdminUser) error {
	user.Email = NormalizeEmail(user.Email)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE admin_users IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewRegistrationClosedError()
		}

		return translateError(adminUserEntity, tx.Create(user).Error)
	})
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
