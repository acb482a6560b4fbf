package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cosminvladulescu/bcon-site/auth"
	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/errs"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	publicHandler      publicHandler
	authHandler        authHandler
	blogPostHandler    blogPostHandler
	contactHandler     contactHandler
	projectHandler     projectHandler
	testimonialHandler testimonialHandler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, tokens *auth.TokenManager, notifier contactNotifier, allowRegistration bool) *routeHandlers {
	return &routeHandlers{
		publicHandler:      newPublicHandler(db),
		authHandler:        newAuthHandler(db.AdminUserRepo(), tokens, allowRegistration),
		blogPostHandler:    newBlogPostHandler(db.BlogPostRepo()),
		contactHandler:     newContactHandler(db.ContactMessageRepo(), notifier),
		projectHandler:     newProjectHandler(db.ProjectRepo()),
		testimonialHandler: newTestimonialHandler(db.TestimonialRepo()),
	}
}

// parseID reads the {id} path parameter.
func parseID(r *http.Request, entity string) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + entity + " id")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + entity + " id")
	}
	return id, nil
}
