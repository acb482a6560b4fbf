package api

import (
	"context"

	"github.com/cosminvladulescu/bcon-site/models"
)

type keyType string

const adminKey keyType = "admin"

// ctxWithAdmin stores the authenticated admin in the context
func ctxWithAdmin(ctx context.Context, admin *models.AdminUser) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// AdminFromContext returns the admin the request was authenticated as.
func AdminFromContext(ctx context.Context) (*models.AdminUser, bool) {
	admin, ok := ctx.Value(adminKey).(*models.AdminUser)
	return admin, ok && admin != nil
}
