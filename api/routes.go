package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the routes the public site reads from and posts to
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, contactLimiter *RateLimiter) {
	r.Get("/", handlers.publicHandler.root())
	r.Get("/health", handlers.publicHandler.health())

	r.Get("/blog", handlers.blogPostHandler.getPublishedBlogPosts())
	r.Get("/blog/{slug}", handlers.blogPostHandler.getPublishedBlogPost())

	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())

	r.Get("/testimonials", handlers.testimonialHandler.getActiveTestimonials())

	r.With(contactLimiter.Middleware).Post("/contact", handlers.contactHandler.submitContact())
}

// setupAdminRoutes registers the login endpoints and the authenticated CMS routes
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, authLimiter *RateLimiter) {
	r.With(authLimiter.Middleware).Post("/login", handlers.authHandler.login())
	r.With(authLimiter.Middleware).Post("/register", handlers.authHandler.register())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/me", handlers.authHandler.me())

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", handlers.blogPostHandler.getAllBlogPosts())
			r.Post("/", handlers.blogPostHandler.createBlogPost())
			r.Get("/{id}", handlers.blogPostHandler.getBlogPost())
			r.Put("/{id}", handlers.blogPostHandler.updateBlogPost())
			r.Delete("/{id}", handlers.blogPostHandler.deleteBlogPost())
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", handlers.contactHandler.getAllContacts())
			r.Get("/unread-count", handlers.contactHandler.getUnreadCount())
			r.Get("/{id}", handlers.contactHandler.getContact())
			r.Put("/{id}/read", handlers.contactHandler.markContactRead())
			r.Delete("/{id}", handlers.contactHandler.deleteContact())
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", handlers.projectHandler.getAllProjects())
			r.Post("/", handlers.projectHandler.createProject())
			r.Get("/{id}", handlers.projectHandler.getProject())
			r.Put("/{id}", handlers.projectHandler.updateProject())
			r.Delete("/{id}", handlers.projectHandler.deleteProject())
		})

		r.Route("/testimonials", func(r chi.Router) {
			r.Get("/", handlers.testimonialHandler.getAllTestimonials())
			r.Post("/", handlers.testimonialHandler.createTestimonial())
			r.Get("/{id}", handlers.testimonialHandler.getTestimonial())
			r.Put("/{id}", handlers.testimonialHandler.updateTestimonial())
			r.Delete("/{id}", handlers.testimonialHandler.deleteTestimonial())
		})
	})
}
