package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogPostHandler struct {
	responder     Responder
	logger        zerolog.Logger
	posts         *services.BlogPostService
	tags          *services.TagService
	maxImageBytes int64
}

func newBlogPostHandler(posts *services.BlogPostService, tags *services.TagService, maxImageBytes int64) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		posts:         posts,
		tags:          tags,
		maxImageBytes: maxImageBytes,
	}
}

// blogIDParam reads the numeric post id from the route.
func blogIDParam(r *http.Request) (uint, error) {
	blogIDStr := chi.URLParam(r, "blogID")
	if blogIDStr == "" {
		return 0, errs.NewBadRequestError("missing blogID")
	}
	blogID, err := strconv.ParseUint(blogIDStr, 10, 64)
	if err != nil || blogID == 0 {
		return 0, errs.NewBadRequestError("invalid blogID")
	}
	return uint(blogID), nil
}

// pageParam defaults to 1 for missing or malformed values.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// tagParam splits ?tag=a,b and repeated ?tag= values into slugs.
func tagParam(r *http.Request) []string {
	var slugs []string
	seen := map[string]bool{}
	for _, value := range r.URL.Query()["tag"] {
		for _, part := range strings.Split(value, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			slugs = append(slugs, part)
		}
	}
	return slugs
}

func blogLocation(id uint) string {
	return fmt.Sprintf("/blogs/%d", id)
}

// index returns the landing page data
// @Summary Home page
// @Description Newest blog posts and every tag
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} homeResponse
// @Router / [get]
func (h blogPostHandler) index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := h.posts.RecentPosts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tags, err := h.tags.AllTags(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, homeResponse{
			RecentBlogs: newBlogPostViews(recent),
			Tags:        tags,
		})
	}
}

// listBlogPosts lists posts filtered by tags and title search
// @Summary List blog posts
// @Description Paginated posts, newest first. Every tag in ?tag= must match.
// @Tags Blog Posts
// @Produce json
// @Param tag query string false "Comma-separated tag slugs"
// @Param search query string false "Case-insensitive title search"
// @Param page query int false "Page number"
// @Success 200 {object} blogListResponse
// @Router /blogs [get]
func (h blogPostHandler) listBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected := tagParam(r)
		search := strings.TrimSpace(r.URL.Query().Get("search"))

		page, err := h.posts.ListPosts(r.Context(), selected, search, pageParam(r))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tags, err := h.tags.AllTags(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if selected == nil {
			selected = []string{}
		}
		h.responder.WriteJSON(w, blogListResponse{
			Blogs:        newBlogPostPage(page),
			Tags:         tags,
			SelectedTags: selected,
			Search:       search,
		})
	}
}

// getBlogPost returns one post and a few related ones
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param blogID path int true "Blog post ID"
// @Success 200 {object} blogDetailResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blogID"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /blogs/{blogID} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.GetPost(r.Context(), blogID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		related, err := h.posts.RelatedPosts(r.Context(), post)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogDetailResponse{
			Blog:         newBlogPostView(*post),
			RelatedBlogs: newBlogPostViews(related),
		})
	}
}

// myBlogPosts lists the current user's posts
// @Summary My blog posts
// @Tags Blog Posts
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} myBlogsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /blogs/my [get]
func (h blogPostHandler) myBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())

		page, err := h.posts.AuthorPosts(r.Context(), user, pageParam(r))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, myBlogsResponse{Blogs: newBlogPostPage(page)})
	}
}

// createForm returns the tag choices for a new post
// @Summary Blog post form choices
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} blogFormResponse
// @Router /blogs/create [get]
func (h blogPostHandler) createForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tags.AllTags(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, blogFormResponse{Tags: tags})
	}
}

// createBlogPost creates a post authored by the current user
// @Summary Create blog post
// @Description Accepts JSON or multipart form data with an optional image file
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} blogPostView
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /blogs/create [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())

		form, upload, cleanup, err := h.bindBlogPost(w, r)
		defer cleanup()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.CreatePost(r.Context(), user, services.PostInput{
			Title:   form.Title,
			Content: form.Content,
			TagIDs:  form.Tags,
			Image:   upload,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, blogLocation(post.ID), newBlogPostView(*post))
	}
}

// editForm returns a post with the tag choices, for its author or staff
// @Summary Edit blog post form
// @Tags Blog Posts
// @Produce json
// @Param blogID path int true "Blog post ID"
// @Success 200 {object} blogFormResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /blogs/{blogID}/edit [get]
func (h blogPostHandler) editForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.GetPostForUpdate(r.Context(), ctxGetUser(r.Context()), blogID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tags, err := h.tags.AllTags(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		view := newBlogPostView(*post)
		h.responder.WriteJSON(w, blogFormResponse{Blog: &view, Tags: tags})
	}
}

// updateBlogPost replaces a post's title, content and tags
// @Summary Update blog post
// @Description The stored image is kept unless a new one is uploaded
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Param blogID path int true "Blog post ID"
// @Success 200 {object} blogPostView
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /blogs/{blogID}/edit [post]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user := ctxGetUser(r.Context())
		// Permission comes before form validation so strangers never learn about form rules
		if _, err := h.posts.GetPostForUpdate(r.Context(), user, blogID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form, upload, cleanup, err := h.bindBlogPost(w, r)
		defer cleanup()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.UpdatePost(r.Context(), user, blogID, services.PostInput{
			Title:   form.Title,
			Content: form.Content,
			TagIDs:  form.Tags,
			Image:   upload,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.Header().Set("Location", blogLocation(post.ID))
		h.responder.WriteJSON(w, newBlogPostView(*post))
	}
}

// deleteConfirm shows the post about to be deleted
// @Summary Confirm blog post deletion
// @Tags Blog Posts
// @Produce json
// @Param blogID path int true "Blog post ID"
// @Success 200 {object} blogDetailResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /blogs/{blogID}/delete [get]
func (h blogPostHandler) deleteConfirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.GetPostForUpdate(r.Context(), ctxGetUser(r.Context()), blogID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogDetailResponse{Blog: newBlogPostView(*post)})
	}
}

// deleteBlogPost deletes a post by ID
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Param blogID path int true "Blog post ID"
// @Success 200 {object} statusResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /blogs/{blogID}/delete [post]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := blogIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.DeletePost(r.Context(), ctxGetUser(r.Context()), blogID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, statusResponse{
			Status:   "success",
			Message:  "blog post deleted successfully",
			Redirect: "/blogs/my",
		})
	}
}
