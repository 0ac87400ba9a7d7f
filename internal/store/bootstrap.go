// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/eventhub/internal/auth"
	"github.com/olegiv/eventhub/internal/model"
)

// BootstrapAdmin makes sure an approved admin account exists for email with
// the given password. It creates the account on first start, promotes an
// existing account registered with that email, and resets the password when
// it no longer matches. Running it again with the same input changes nothing.
func BootstrapAdmin(ctx context.Context, users *UserRepository, email, password string) (*model.User, error) {
	existing, err := users.ByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("checking for admin user: %w", err)
	}

	if existing != nil {
		ok, _ := auth.CheckPassword(password, existing.PasswordHash)
		if existing.IsAdmin() && existing.IsApproved && ok {
			slog.Info("admin user already exists, skipping bootstrap", "email", existing.Email)
			return existing, nil
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		if err := users.PromoteToAdmin(ctx, existing.ID, hash); err != nil {
			return nil, err
		}
		slog.Info("promoted existing account to admin", "id", existing.ID, "email", existing.Email)
		return users.ByID(ctx, existing.ID)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	admin, err := users.Create(ctx, &model.User{
		Username:     model.NormalizeEmail(email),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsApproved:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", admin.ID, "email", admin.Email)
	return admin, nil
}
