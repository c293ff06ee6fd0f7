package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes wires every endpoint. Read paths run maybeAuthenticate so draft
// visibility and like state follow the caller's identity without forcing a
// login; write paths require a valid token.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Public routes, identity optional
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.maybeAuthenticate)

		// Auth endpoints
		r.Post("/auth/register", handlers.authHandler.register())
		r.Post("/auth/login", handlers.authHandler.login())

		// Post reads
		r.Get("/posts", handlers.postHandler.listPosts())
		r.Get("/posts/{slug}", handlers.postHandler.getPost())
		r.Get("/posts/{slug}/comments", handlers.commentHandler.listComments())

		// Discovery endpoints
		r.Get("/search", handlers.discoveryHandler.search())
		r.Get("/trending", handlers.discoveryHandler.trending())
		r.Get("/featured", handlers.discoveryHandler.featured())
		r.Get("/tags", handlers.discoveryHandler.popularTags())
		r.Get("/tags/{slug}", handlers.discoveryHandler.tagPosts())
		r.Get("/users/{username}/posts", handlers.discoveryHandler.authorPosts())

		// Newsletter
		r.Post("/newsletter/subscribe", handlers.newsletterHandler.subscribe())

		// System endpoints and the read-only syndication projection
		r.Get("/health", handlers.systemHandler.health())
		r.Get("/stats", handlers.systemHandler.stats())
		r.Get("/api/posts", handlers.systemHandler.projectedPosts())
		r.Get("/api/posts/{slug}", handlers.systemHandler.projectedPostDetail())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		// Post writes
		r.Post("/posts", handlers.postHandler.createPost())
		r.Put("/posts/{slug}", handlers.postHandler.updatePost())
		r.Delete("/posts/{slug}", handlers.postHandler.deletePost())
		r.Post("/posts/{slug}/image", handlers.postHandler.uploadFeaturedImage())

		// Interactions
		r.Post("/posts/{slug}/comments", handlers.commentHandler.addComment())
		r.Post("/posts/{slug}/like", handlers.likeHandler.toggleLike())

		// Author surface
		r.Get("/dashboard", handlers.discoveryHandler.dashboard())
		r.Get("/profile", handlers.profileHandler.getProfile())
		r.Put("/profile", handlers.profileHandler.updateProfile())
	})
}
