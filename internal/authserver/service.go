// Package authserver is a development implementation of the Clubbies auth
// API: registration, password login and current-user lookup over SQLite.
package authserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jforbes02/Clubbies/internal/database/repository"
)

const (
	MinUsernameLength = 4
	MaxUsernameLength = 40
	MinPasswordLength = 6
)

// UserStore is the part of repository.UserRepo the service needs.
type UserStore interface {
	Create(ctx context.Context, u repository.User) error
	GetByID(ctx context.Context, id string) (repository.User, error)
	GetByLogin(ctx context.Context, login string) (repository.User, error)
	Conflict(ctx context.Context, username, email string) (string, error)
}

// Options configure a Service.
type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	MinAge     int
	BcryptCost int
	Logger     *slog.Logger
	Now        func() time.Time
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	minAge int
	cost   int
	logger *slog.Logger
	now    func() time.Time
}

// NewService returns a Service. The secret must be at least 32 bytes.
func NewService(users UserStore, opts Options) (*Service, error) {
	if len(opts.Secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(opts.Secret))
	}
	s := &Service{
		users:  users,
		secret: opts.Secret,
		ttl:    opts.TokenTTL,
		minAge: opts.MinAge,
		cost:   opts.BcryptCost,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// Claims are the JWT claims issued by the service.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) validate(in RegisterInput) error {
	var problems []string
	if n := utf8.RuneCountInString(in.Username); n < MinUsernameLength || n > MaxUsernameLength {
		problems = append(problems, fmt.Sprintf("username must be %d to %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || !strings.Contains(in.Email, "@") {
		problems = append(problems, "email is not a valid address")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if in.Age < s.minAge {
		problems = append(problems, fmt.Sprintf("age must be at least %d", s.minAge))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Register creates a user and returns an access token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (repository.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(in); err != nil {
		return repository.User{}, "", err
	}

	field, err := s.users.Conflict(ctx, in.Username, in.Email)
	if err != nil {
		return repository.User{}, "", fmt.Errorf("check conflict: %w", err)
	}
	switch field {
	case "username":
		return repository.User{}, "", ErrUsernameTaken
	case "email":
		return repository.User{}, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return repository.User{}, "", fmt.Errorf("bcrypt: %w", err)
	}
	u := repository.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Age:          in.Age,
		Role:         "user",
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return repository.User{}, "", fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "username", u.Username)

	token, err := s.issue(u)
	if err != nil {
		return repository.User{}, "", err
	}
	return u, token, nil
}

// Login checks a password for a username or email and issues a token.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("lookup user: %w", err)
		}
		s.logger.WarnContext(ctx, "failed login", "login", login, "reason", "user_not_found")
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login", "login", login, "reason", "invalid_password")
		return "", ErrInvalidCredentials
	}
	s.logger.InfoContext(ctx, "login", "user_id", u.ID)
	return s.issue(u)
}

func (s *Service) issue(u repository.User) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token issued by this service.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Me resolves a token to its user.
func (s *Service) Me(ctx context.Context, token string) (repository.User, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return repository.User{}, err
	}
	u, err := s.users.GetByID(ctx, claims.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, ErrUserNotFound
	}
	return u, err
}
