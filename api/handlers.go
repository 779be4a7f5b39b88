package api

import (
	"time"

	"github.com/rpupo63/multiblog-backend/config"
	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/services"
	"github.com/rpupo63/multiblog-backend/storage"
)

// appServices is the service layer shared by handlers and middleware
type appServices struct {
	blogPosts *services.BlogPostService
	tags      *services.TagService
	users     *services.UserService
	tokens    *services.TokenService
}

func newAppServices(database database.Database, settings config.Settings, images storage.Store) appServices {
	return appServices{
		blogPosts: services.NewBlogPostService(
			database.BlogPostRepo(),
			database.TagRepo(),
			images,
			services.WithPageSize(settings.PageSize),
			services.WithMaxImageBytes(settings.Storage.MaxImageBytes),
		),
		tags:   services.NewTagService(database.TagRepo()),
		users:  services.NewUserService(database.UserRepo()),
		tokens: services.NewTokenService(settings.SecretKey, settings.TokenTTL),
	}
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, svc appServices, settings config.Settings, startupTime time.Time) *routeHandlers {
	maxImageBytes := settings.Storage.MaxImageBytes
	if maxImageBytes <= 0 {
		maxImageBytes = config.DefaultMaxImageBytes
	}
	return &routeHandlers{
		blogPostHandler: newBlogPostHandler(svc.blogPosts, svc.tags, maxImageBytes),
		accountHandler:  newAccountHandler(svc.users, svc.tokens, settings.CookieSecure),
		healthHandler:   newHealthHandler(database, startupTime),
	}
}
