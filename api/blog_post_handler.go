package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/errs"
)

const blogPostEntity = "blog post"

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
	}
}

// getPublishedBlogPosts lists published posts, newest first
// @Summary List published blog posts
// @Description Only published posts are returned. ?category= narrows the list.
// @Tags Blog Posts
// @Produce json
// @Param category query string false "Category"
// @Success 200 {array} models.BlogPost
// @Router /blog [get]
func (h blogPostHandler) getPublishedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindAll(r.Context(), database.BlogPostFilter{
			PublishedOnly: true,
			Category:      r.URL.Query().Get("category"),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", blogPostEntity, err))
			return
		}

		h.responder.WriteJSON(w, blogPosts)
	}
}

// getPublishedBlogPost returns a published post by slug; drafts are not found
// @Summary Get a published blog post
// @Tags Blog Posts
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} map[string]string "Not Found"
// @Router /blog/{slug} [get]
func (h blogPostHandler) getPublishedBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPost, err := h.blogPostRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"), true)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", blogPostEntity, err))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// getAllBlogPosts lists every post including drafts
// @Summary List all blog posts
// @Tags Admin
// @Security BearerAuth
// @Router /admin/blog [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindAll(r.Context(), database.BlogPostFilter{})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", blogPostEntity, err))
			return
		}

		h.responder.WriteJSON(w, blogPosts)
	}
}

func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, blogPostEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blogPost, err := h.blogPostRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", blogPostEntity, err))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// createBlogPost creates a post authored by the current admin
// @Summary Create blog post
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.BlogPost
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Slug already in use"
// @Router /admin/blog [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogPostRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.checkSlugFree(r, req.Slug, uuid.Nil); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var author string
		if admin, ok := AdminFromContext(r.Context()); ok {
			author = admin.Name
		}

		blogPost := req.toModel(author)
		if err := h.blogPostRepo.Add(r.Context(), blogPost); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", blogPostEntity, err))
			return
		}

		h.logger.Info().Str("blogPostId", blogPost.ID.String()).Str("slug", blogPost.Slug).Msg("Blog post created")
		h.responder.WriteCreated(w, blogPost)
	}
}

// updateBlogPost applies a partial update; toggling published goes through here
// @Summary Update blog post
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} models.BlogPost
// @Router /admin/blog/{id} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, blogPostEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req blogPostUpdate
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Slug != nil {
			if err := h.checkSlugFree(r, *req.Slug, id); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		blogPost, err := h.blogPostRepo.Update(r.Context(), id, req.fields())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", blogPostEntity, err))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, blogPostEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", blogPostEntity, err))
			return
		}

		h.logger.Info().Str("blogPostId", id.String()).Msg("Blog post deleted")
		h.responder.WriteDeleted(w, "blog post deleted successfully")
	}
}

func (h blogPostHandler) checkSlugFree(r *http.Request, slug string, exceptID uuid.UUID) error {
	taken, err := h.blogPostRepo.SlugTaken(r.Context(), slug, exceptID)
	if err != nil {
		return wrapDatabaseError("check slug of", blogPostEntity, err)
	}
	if taken {
		return errs.NewFieldConflict(blogPostEntity, "slug")
	}
	return nil
}
