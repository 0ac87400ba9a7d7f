// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/eventhub/internal/auth"
	"github.com/olegiv/eventhub/internal/metrics"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/policy"
)

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username        string `form:"username" validate:"required,max=256"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirmPassword"`
}

// AccountService registers and authenticates accounts.
type AccountService struct {
	users    UserRepository
	activity ActivityRecorder
	validate *validator.Validate
	now      func() time.Time
}

// NewAccountService creates an AccountService. activity may be nil.
func NewAccountService(users UserRepository, activity ActivityRecorder) *AccountService {
	return &AccountService{
		users:    users,
		activity: activity,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Register creates an unapproved account with the User role.
//
// It fails with model.ErrMismatch when the confirmation differs, with a
// *model.ValidationError for malformed input and with model.ErrDuplicateEmail
// when the email is taken. Nothing is stored on failure.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = model.NormalizeEmail(in.Email)

	if in.Password != in.ConfirmPassword {
		metrics.Registrations.WithLabelValues("mismatch").Inc()
		return nil, model.ErrMismatch
	}

	verr := model.NewValidationError()
	if err := validateStruct(s.validate, in, verr); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := auth.ValidatePasswordPolicy(in.Password); err != nil {
			verr.Add("password", upperFirst(err.Error()))
		}
	}
	if err := verr.OrNil(); err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if _, err := s.users.ByEmail(ctx, in.Email); err == nil {
		metrics.Registrations.WithLabelValues("duplicate_email").Inc()
		return nil, model.ErrDuplicateEmail
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsApproved:   false,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			metrics.Registrations.WithLabelValues("duplicate_email").Inc()
			return nil, model.ErrDuplicateEmail
		}
		return nil, err
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	slog.Info("account registered", "user_id", user.ID, "email", user.Email)
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryUser,
		"Account registered, awaiting approval", userRef(user),
		map[string]any{"email": user.Email, "username": user.Username})

	return user, nil
}

// Authenticate checks an email/password pair.
//
// Failures are model.ErrNotFound (unknown email), model.ErrBadCredential
// (wrong password) and model.ErrNotApproved (correct password, account not
// yet approved). The password is verified before the approval flag so the
// approval state is only revealed to someone holding the password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("not_found").Inc()
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
	}
	if !ok {
		metrics.AuthAttempts.WithLabelValues("bad_credential").Inc()
		return nil, model.ErrBadCredential
	}

	if !user.IsApproved {
		metrics.AuthAttempts.WithLabelValues("not_approved").Inc()
		return nil, model.ErrNotApproved
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
				slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			} else {
				user.PasswordHash = hash
			}
		}
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt.Time = now
	user.LastLoginAt.Valid = true

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// User returns the account with id.
func (s *AccountService) User(ctx context.Context, id int64) (*model.User, error) {
	return s.users.ByID(ctx, id)
}

// ListUsers returns all accounts, pending ones first. Admins only.
func (s *AccountService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if !policy.CanAdminister(actor) {
		return nil, model.ErrForbidden
	}
	return s.users.List(ctx)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
