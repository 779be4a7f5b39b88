package services

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rpupo63/multiblog-backend/config"
	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rpupo63/multiblog-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PostInput is the validated content of the blog post form.
type PostInput struct {
	Title   string
	Content string
	TagIDs  []uint
	Image   *storage.Upload
}

type BlogPostService struct {
	posts         BlogPostStore
	tags          TagStore
	images        ImageStore
	sanitizer     *Sanitizer
	pageSize      int
	maxImageBytes int64
	logger        zerolog.Logger
}

// BlogPostOption customizes a BlogPostService.
type BlogPostOption func(*BlogPostService)

func WithPageSize(size int) BlogPostOption {
	return func(s *BlogPostService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func WithMaxImageBytes(n int64) BlogPostOption {
	return func(s *BlogPostService) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func NewBlogPostService(posts BlogPostStore, tags TagStore, images ImageStore, opts ...BlogPostOption) *BlogPostService {
	s := &BlogPostService{
		posts:         posts,
		tags:          tags,
		images:        images,
		sanitizer:     NewSanitizer(),
		pageSize:      config.DefaultPageSize,
		maxImageBytes: config.DefaultMaxImageBytes,
		logger:        log.With().Str("service", "blogPostService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize is the number of posts per listing page.
func (s *BlogPostService) PageSize() int {
	return s.pageSize
}

func (s *BlogPostService) RecentPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.posts.Recent(ctx, RecentLimit)
}

// ListPosts filters by tag slugs (all must match) and title search.
func (s *BlogPostService) ListPosts(ctx context.Context, tagSlugs []string, search string, page int) (models.Page[models.BlogPost], error) {
	filter := database.ListFilter{
		TagSlugs: tagSlugs,
		Search:   strings.TrimSpace(search),
	}
	return s.posts.List(ctx, filter, page, s.pageSize)
}

// AuthorPosts lists the posts written by author.
func (s *BlogPostService) AuthorPosts(ctx context.Context, author *models.User, page int) (models.Page[models.BlogPost], error) {
	if author == nil {
		return models.Page[models.BlogPost]{}, errs.NewLoginRequiredError()
	}
	return s.posts.List(ctx, database.ListFilter{AuthorID: author.ID}, page, s.pageSize)
}

func (s *BlogPostService) GetPost(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *BlogPostService) RelatedPosts(ctx context.Context, post *models.BlogPost) ([]models.BlogPost, error) {
	return s.posts.Related(ctx, post, RelatedLimit)
}

// Authorize allows the post's author and staff users.
func (s *BlogPostService) Authorize(user *models.User, post *models.BlogPost) error {
	if user == nil {
		return errs.NewLoginRequiredError()
	}
	if !user.CanModify(post) {
		return errs.NewForbiddenError("you do not have permission to modify this blog post")
	}
	return nil
}

// GetPostForUpdate loads a post the user is allowed to modify.
func (s *BlogPostService) GetPostForUpdate(ctx context.Context, user *models.User, id uint) (*models.BlogPost, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(user, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *BlogPostService) CreatePost(ctx context.Context, author *models.User, input PostInput) (*models.BlogPost, error) {
	if author == nil {
		return nil, errs.NewLoginRequiredError()
	}

	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:    strings.TrimSpace(input.Title),
		Content:  s.sanitizer.Clean(input.Content),
		AuthorID: author.ID,
	}
	if input.Image != nil {
		url, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		post.Image = &url
	}

	if err := s.posts.Add(ctx, post, tags); err != nil {
		s.logOrphanedImage(post.Image, err)
		return nil, err
	}
	s.logger.Info().Uint("blogPostID", post.ID).Uint("authorID", author.ID).Msg("Blog post created")

	return s.posts.FindByID(ctx, post.ID)
}

// UpdatePost replaces title, content and tags; the image only changes when a new one is supplied.
func (s *BlogPostService) UpdatePost(ctx context.Context, user *models.User, id uint, input PostInput) (*models.BlogPost, error) {
	post, err := s.GetPostForUpdate(ctx, user, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = s.sanitizer.Clean(input.Content)
	previous, uploaded := post.Image, (*string)(nil)
	if input.Image != nil {
		url, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		uploaded = &url
		post.Image = uploaded
	}

	if err := s.posts.Update(ctx, post, tags); err != nil {
		s.logOrphanedImage(uploaded, err)
		return nil, err
	}
	s.logger.Info().Uint("blogPostID", post.ID).Uint("userID", user.ID).Msg("Blog post updated")
	if uploaded != nil && previous != nil {
		s.logger.Info().Uint("blogPostID", post.ID).Str("image", *previous).Msg("Replaced image is no longer referenced")
	}

	return s.posts.FindByID(ctx, post.ID)
}

func (s *BlogPostService) DeletePost(ctx context.Context, user *models.User, id uint) error {
	post, err := s.GetPostForUpdate(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post); err != nil {
		return err
	}
	s.logger.Info().Uint("blogPostID", post.ID).Uint("userID", user.ID).Msg("Blog post deleted")
	return nil
}

// logOrphanedImage records a stored image whose post was never saved, so it can be cleaned up by hand.
func (s *BlogPostService) logOrphanedImage(url *string, cause error) {
	if url == nil {
		return
	}
	s.logger.Warn().Err(cause).Str("image", *url).Msg("Stored image is orphaned, blog post was not saved")
}

// resolveTags loads the selected tags and rejects unknown ids.
func (s *BlogPostService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, errs.NewFieldError("tags", "This field is required.")
	}

	tags, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, errs.NewFieldError("tags", "Select a valid choice. One or more tags do not exist.")
	}
	return tags, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// uploadImage sniffs the real content type before handing the image to storage.
func (s *BlogPostService) uploadImage(ctx context.Context, upload storage.Upload) (string, error) {
	if s.images == nil {
		return "", errs.NewInternalError("image storage is not configured")
	}
	if upload.Size > s.maxImageBytes {
		return "", errs.NewFieldError("image", "Image file too large.")
	}

	br := bufio.NewReaderSize(upload.Body, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", errs.NewFieldError("image", "Upload a valid image.")
	}
	contentType := http.DetectContentType(head)
	if !storage.IsAllowedContentType(contentType) {
		return "", errs.NewFieldError("image",
			"Upload a valid image. Allowed types: "+strings.Join(storage.AllowedContentTypes(), ", "))
	}
	upload.ContentType = contentType
	upload.Body = io.LimitReader(br, s.maxImageBytes)

	url, err := s.images.Save(ctx, upload)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", upload.Filename).Msg("Failed to store image")
		return "", errs.NewInternalErrorWithCause("store image", err)
	}
	return url, nil
}
