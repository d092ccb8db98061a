package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/devlink/internal/database"
	"github.com/isdelr/devlink/internal/models"
)

// maxPasswordBytes is the longest password bcrypt will hash.
const maxPasswordBytes = 72

// TokenIssuer creates session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error)
	Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides business logic for accounts and sign-in.
type UserService struct {
	store      database.UserStore
	tokens     TokenIssuer
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store database.UserStore, tokens TokenIssuer) *UserService {
	return &UserService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Register creates a new account, hashing its password, and signs the user in.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return models.AuthResult{}, err
	}
	if len(in.Password) > maxPasswordBytes {
		return models.AuthResult{}, models.NewValidationError("password must be at most 72 bytes")
	}

	_, err := s.store.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return models.AuthResult{}, models.NewValidationError("User already exists")
	case !errors.Is(err, models.ErrNotFound):
		return models.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return models.AuthResult{}, models.NewValidationError("User already exists")
		}
		return models.AuthResult{}, err
	}

	return s.authResult(user)
}

// Login verifies a user's credentials and issues a token.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error) {
	in.Email = models.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return models.AuthResult{}, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.AuthResult{}, models.ErrInvalidCredentials
		}
		return models.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return models.AuthResult{}, models.ErrInvalidCredentials
	}

	return s.authResult(user)
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitize(), nil
}

func (s *UserService) authResult(user models.User) (models.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return models.AuthResult{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
