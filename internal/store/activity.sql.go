// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createActivity = `-- name: CreateActivity :exec
INSERT INTO activity (level, category, message, user_id, ip_address, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateActivityParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) error {
	_, err := q.db.ExecContext(ctx, createActivity,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.IpAddress,
		arg.Metadata,
		arg.CreatedAt,
	)
	return err
}

const listActivity = `-- name: ListActivity :many
SELECT id, level, category, message, user_id, ip_address, metadata, created_at
FROM activity
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListActivityParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListActivity(ctx context.Context, arg ListActivityParams) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listActivity, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID,
			&a.Level,
			&a.Category,
			&a.Message,
			&a.UserID,
			&a.IpAddress,
			&a.Metadata,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActivity = `-- name: CountActivity :one
SELECT COUNT(*) FROM activity`

func (q *Queries) CountActivity(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActivity).Scan(&count)
	return count, err
}

const deleteActivityBefore = `-- name: DeleteActivityBefore :execrows
DELETE FROM activity WHERE created_at < ?`

func (q *Queries) DeleteActivityBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteActivityBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
