package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTags are created by SeedDefaults on an empty database.
var DefaultTags = []string{
	"Technology", "Programming", "Python",
	"Travel", "Food", "Health", "Science", "Education",
	"Art", "Music", "Photography", "Design", "Books",
}

// maxTagNameLength matches the varchar(50) name column.
const maxTagNameLength = 50

type TagService struct {
	tags   TagStore
	logger zerolog.Logger
}

func NewTagService(tags TagStore) *TagService {
	return &TagService{
		tags:   tags,
		logger: log.With().Str("service", "tagService").Logger(),
	}
}

func (s *TagService) AllTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.FindAll(ctx)
}

// CreateTag stores a tag; its slug is derived from the name.
func (s *TagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewFieldError("name", "This field is required.")
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return nil, errs.NewFieldError("name", "Ensure this value has at most 50 characters.")
	}
	tag := &models.Tag{Name: name}
	if err := s.tags.Add(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// SeedDefaults creates DefaultTags unless tags already exist. It returns how many were created.
func (s *TagService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.tags.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info().Int64("existing", count).Msg("Tags already exist, skipping")
		return 0, nil
	}

	for _, name := range DefaultTags {
		if _, err := s.CreateTag(ctx, name); err != nil {
			return 0, err
		}
	}
	s.logger.Info().Int("created", len(DefaultTags)).Msg("Created tags")
	return len(DefaultTags), nil
}
