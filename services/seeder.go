package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SeedUserCount    = 5
	SeedPostCount    = 10
	SeedUserPassword = "Password123"

	minSeedPostTags = 2
	maxSeedPostTags = 5
	maxSeedAgeDays  = 365
)

// Seeder fills an empty database with sample users, tags and posts.
type Seeder struct {
	users     *UserService
	userStore UserStore
	tags      *TagService
	tagStore  TagStore
	posts     BlogPostStore
	sanitizer *Sanitizer
	images    []string
	rand      *rand.Rand
	faker     *gofakeit.Faker
	now       func() time.Time
	logger    zerolog.Logger
}

// SeederOption customizes a Seeder.
type SeederOption func(*Seeder)

// WithSampleImages lets seeded posts reference one of urls. Posts may still
// be seeded without an image.
func WithSampleImages(urls ...string) SeederOption {
	return func(s *Seeder) {
		s.images = append(s.images[:0], urls...)
	}
}

// WithSeed makes the generated data repeatable.
func WithSeed(seed uint64) SeederOption {
	return func(s *Seeder) {
		s.rand = rand.New(rand.NewPCG(seed, seed))
		s.faker = gofakeit.New(seed)
	}
}

func WithSeedClock(now func() time.Time) SeederOption {
	return func(s *Seeder) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeedHashCost sets the bcrypt cost of seeded passwords.
func WithSeedHashCost(cost int) SeederOption {
	return func(s *Seeder) {
		s.users.WithHashCost(cost)
	}
}

func NewSeeder(users UserStore, tags TagStore, posts BlogPostStore, opts ...SeederOption) *Seeder {
	s := &Seeder{
		users:     NewUserService(users),
		userStore: users,
		tags:      NewTagService(tags),
		tagStore:  tags,
		posts:     posts,
		sanitizer: NewSanitizer(),
		rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		faker:     gofakeit.New(0),
		now:       time.Now,
		logger:    log.With().Str("service", "seeder").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedResult counts the rows each step created.
type SeedResult struct {
	Users int
	Tags  int
	Posts int
}

// Seed runs users, tags and posts in that order. Each step skips itself when
// its table already holds data.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	var err error

	if result.Users, err = s.SeedUsers(ctx); err != nil {
		return result, fmt.Errorf("seed users: %w", err)
	}
	if result.Tags, err = s.tags.SeedDefaults(ctx); err != nil {
		return result, fmt.Errorf("seed tags: %w", err)
	}
	if result.Posts, err = s.SeedPosts(ctx); err != nil {
		return result, fmt.Errorf("seed posts: %w", err)
	}
	return result, nil
}

// SeedUsers creates SeedUserCount active users sharing SeedUserPassword. A
// database with a single user (usually the superuser) still gets seeded.
func (s *Seeder) SeedUsers(ctx context.Context) (int, error) {
	count, err := s.userStore.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 1 {
		s.logger.Info().Int64("existing", count).Msg("Users already exist, skipping")
		return 0, nil
	}

	created := 0
	for i := 1; i <= SeedUserCount; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		username := fmt.Sprintf("user%d", i)
		if _, err := s.users.create(ctx, email, SeedUserPassword, &username, false); err != nil {
			return created, err
		}
		created++
	}
	s.logger.Info().Int("created", created).Msg("Created users")
	return created, nil
}

// SeedPosts creates SeedPostCount posts by random existing authors. Each post
// gets between 2 and 5 tags and a creation date within the last year.
func (s *Seeder) SeedPosts(ctx context.Context) (int, error) {
	count, err := s.posts.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info().Int64("existing", count).Msg("Posts already exist, skipping")
		return 0, nil
	}

	users, err := s.userStore.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	tags, err := s.tagStore.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 || len(tags) == 0 {
		return 0, errs.NewBadRequestError("seeding posts needs at least one user and one tag")
	}

	for i := 0; i < SeedPostCount; i++ {
		author := users[s.rand.IntN(len(users))]
		post := &models.BlogPost{
			Title:     strings.TrimSuffix(s.faker.Sentence(3+s.rand.IntN(5)), "."),
			Content:   s.sanitizer.Clean(s.content()),
			Image:     s.image(),
			AuthorID:  author.ID,
			CreatedAt: s.now().AddDate(0, 0, -s.rand.IntN(maxSeedAgeDays+1)).UTC(),
		}
		if err := s.posts.Add(ctx, post, s.pickTags(tags)); err != nil {
			return i, err
		}
	}
	s.logger.Info().Int("created", SeedPostCount).Msg("Created posts")
	return SeedPostCount, nil
}

func (s *Seeder) content() string {
	var b strings.Builder
	n := 2 + s.rand.IntN(3)
	for range n {
		b.WriteString("<p>")
		b.WriteString(s.faker.Paragraph(1, 3+s.rand.IntN(3), 12, " "))
		b.WriteString("</p>")
	}
	return b.String()
}

// image returns nil with the same odds as any single sample image.
func (s *Seeder) image() *string {
	i := s.rand.IntN(len(s.images) + 1)
	if i == len(s.images) {
		return nil
	}
	url := s.images[i]
	return &url
}

func (s *Seeder) pickTags(tags []models.Tag) []models.Tag {
	upper := min(maxSeedPostTags, len(tags))
	lower := min(minSeedPostTags, upper)
	n := lower + s.rand.IntN(upper-lower+1)

	picked := make([]models.Tag, 0, n)
	for _, i := range s.rand.Perm(len(tags))[:n] {
		picked = append(picked, tags[i])
	}
	return picked
}
