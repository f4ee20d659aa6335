package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tunenote/internal/domain"
	"tunenote/internal/repository"
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ValidationError indica un campo requerido ausente o vacío.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " must be provided"
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrCredentialMismatch cubre tanto email desconocido como contraseña
	// incorrecta, sin distinguirlos.
	ErrCredentialMismatch = errors.New("password and email do not match")
)

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	switch {
	case emailAddr == "":
		return domain.User{}, &ValidationError{Field: "email"}
	case password == "":
		return domain.User{}, &ValidationError{Field: "password"}
	case firstName == "":
		return domain.User{}, &ValidationError{Field: "firstName"}
	case lastName == "":
		return domain.User{}, &ValidationError{Field: "lastName"}
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate verifica email y contraseña con un único error de mismatch.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = strings.TrimSpace(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" {
		return domain.User{}, &ValidationError{Field: "email"}
	}
	if password == "" {
		return domain.User{}, &ValidationError{Field: "password"}
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrCredentialMismatch
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrCredentialMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrCredentialMismatch
	}
	return user, nil
}

// Profile es la vista del usuario que se devuelve al frontend.
type Profile struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	SpotifyEnabled bool   `json:"spotify_enabled"`
}

func (s *UserService) Profile(ctx context.Context, id string) (Profile, error) {
	if s.users == nil {
		return Profile{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}
	return Profile{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		SpotifyEnabled: user.SpotifyLinked(),
	}, nil
}
