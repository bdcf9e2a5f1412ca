// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP)     → parses forms, renders templates, redirects
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept primitives and models, not *http.Request, and return
// domain errors (apperror) or field-error maps, not status codes. The
// handler layer translates both into HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/auth"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

// AuthService handles signup and login.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - passwords *auth.PasswordService     → salted password hashing
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// SignUp validates a signup submission and creates the account.
//
// All field checks run independently; a submission failing three checks gets
// three entries in the returned FieldErrors. The user is created (and should
// be logged in by the caller) only when the map comes back empty.
//
// The name-taken check happens twice, on purpose:
//  1. GetUserByName here, for the friendly "User already exists" field error
//  2. the UNIQUE constraint in the database, which is the authoritative
//     check — two concurrent signups can both pass step 1, and the loser's
//     insert comes back as a conflict, mapped to the same field error
//
// The returned error is for infrastructure failures only.
func (s *AuthService) SignUp(ctx context.Context, name, password, verify, email string) (*model.User, FieldErrors, error) {
	errs := ValidateSignUp(name, password, verify, email)

	// Only probe for an existing user when the name itself is well-formed;
	// a malformed name already has its error.
	if _, taken := errs["name"]; !taken {
		_, err := s.users.GetUserByName(ctx, name)
		switch {
		case err == nil:
			errs["name"] = "User already exists"
		case errors.Is(err, apperror.ErrNotFound):
			// free — the good case
		default:
			return nil, nil, fmt.Errorf("service/auth: checking name %q: %w", name, err)
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	stored, err := s.passwords.Hash(name, password)
	if err != nil {
		return nil, nil, fmt.Errorf("service/auth: hashing password for %q: %w", name, err)
	}

	user := &model.User{
		Name:     name,
		Password: stored,
		Email:    email,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost a signup race on the unique name.
			return nil, FieldErrors{"name": "User already exists"}, nil
		}
		return nil, nil, fmt.Errorf("service/auth: creating user %q: %w", name, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil, nil
}

// LogIn verifies credentials and returns the user.
//
// Field errors mirror the signup flow: an unknown name reports on the name
// field, a wrong password on the password field. The stored value is a
// salted digest; a malformed one verifies false rather than erroring.
func (s *AuthService) LogIn(ctx context.Context, name, password string) (*model.User, FieldErrors, error) {
	user, err := s.users.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, FieldErrors{"name": "User doesn't exist"}, nil
		}
		return nil, nil, fmt.Errorf("service/auth: looking up user %q: %w", name, err)
	}

	if !s.passwords.Verify(name, password, user.Password) {
		return nil, FieldErrors{"password": "Invalid password"}, nil
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil, nil
}
