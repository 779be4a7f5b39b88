package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes mounts the public pages, the blog routes and the account routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/", handlers.blogPostHandler.index())

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", handlers.blogPostHandler.listBlogPosts())
			r.Get("/{blogID:[0-9]+}", handlers.blogPostHandler.getBlogPost())

			// Login required
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.requireUser)

				r.Get("/my", handlers.blogPostHandler.myBlogPosts())
				r.Get("/create", handlers.blogPostHandler.createForm())
				r.Post("/create", handlers.blogPostHandler.createBlogPost())
				r.Get("/{blogID:[0-9]+}/edit", handlers.blogPostHandler.editForm())
				r.Post("/{blogID:[0-9]+}/edit", handlers.blogPostHandler.updateBlogPost())
				r.Get("/{blogID:[0-9]+}/delete", handlers.blogPostHandler.deleteConfirm())
				r.Post("/{blogID:[0-9]+}/delete", handlers.blogPostHandler.deleteBlogPost())
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/login", handlers.accountHandler.loginForm())
			r.Post("/login", handlers.accountHandler.login())
			r.Get("/register", handlers.accountHandler.registerForm())
			r.Post("/register", handlers.accountHandler.register())
			r.Get("/logout", handlers.accountHandler.logout())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.requireUser)

				r.Get("/profile", handlers.accountHandler.profile())
				r.Post("/profile", handlers.accountHandler.updateProfile())
			})
		})
	})
}
