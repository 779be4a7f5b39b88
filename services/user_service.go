package services

import (
	"context"
	"strings"

	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type UserService struct {
	users  UserStore
	cost   int
	logger zerolog.Logger
}

func NewUserService(users UserStore) *UserService {
	return &UserService{
		users:  users,
		cost:   bcrypt.DefaultCost,
		logger: log.With().Str("service", "userService").Logger(),
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// GetByEmail returns nil when no user has the email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// Register creates an active, non-staff user.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.create(ctx, email, password, nil, false)
}

// CreateSuperuser creates an active staff user.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password, username string) (*models.User, error) {
	var name *string
	if username = strings.TrimSpace(username); username != "" {
		name = &username
	}
	return s.create(ctx, email, password, name, true)
}

func (s *UserService) create(ctx context.Context, email, password string, username *string, staff bool) (*models.User, error) {
	email = models.NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NewFieldConflictError("email", "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash password", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      staff,
	}
	if err := s.users.Add(ctx, user); err != nil {
		// A concurrent registration can still win the unique index.
		if errs.IsConflict(err) {
			return nil, errs.NewFieldConflictError("email", "Email already registered")
		}
		return nil, err
	}

	s.logger.Info().Uint("userID", user.ID).Bool("staff", staff).Msg("User registered")
	return user, nil
}

// Authenticate checks credentials. Unknown emails, wrong passwords and
// inactive accounts all produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, errs.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.NewInvalidCredentialsError()
	}
	if !user.IsActive {
		return nil, errs.NewInvalidCredentialsError()
	}
	return user, nil
}

// UpdateUsername changes the username and nothing else.
func (s *UserService) UpdateUsername(ctx context.Context, user *models.User, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.NewFieldError("username", "This field is required.")
	}

	current, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	current.Username = &username
	if err := s.users.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
