package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type situationRepo struct {
	db *sql.DB
}

func (r *situationRepo) Get(ctx context.Context, userID, day string) (*Situation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, day, situation, created_at FROM situations WHERE user_id = ? AND day = ?`,
		userID, day)

	var s Situation
	var createdAt string
	if err := row.Scan(&s.UserID, &s.Day, &s.Situation, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get situation: %w", err)
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func (r *situationRepo) Put(ctx context.Context, s Situation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO situations (user_id, day, situation) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, day) DO UPDATE SET situation = excluded.situation`,
		s.UserID, s.Day, s.Situation)
	if err != nil {
		return fmt.Errorf("put situation: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
