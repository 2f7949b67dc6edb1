package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type lessonRepo struct {
	db *sql.DB
}

func (r *lessonRepo) Get(ctx context.Context, userID, day string) (*Lesson, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, day, content, evaluation, created_at FROM lessons WHERE user_id = ? AND day = ?`,
		userID, day)

	var l Lesson
	var content string
	var evaluation sql.NullString
	var createdAt string
	if err := row.Scan(&l.UserID, &l.Day, &content, &evaluation, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	l.Content = json.RawMessage(content)
	if evaluation.Valid {
		l.Evaluation = json.RawMessage(evaluation.String)
	}
	l.CreatedAt = parseTime(createdAt)
	return &l, nil
}

func (r *lessonRepo) Put(ctx context.Context, l Lesson) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lessons (user_id, day, content) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, day) DO UPDATE SET content = excluded.content`,
		l.UserID, l.Day, string(l.Content))
	if err != nil {
		return fmt.Errorf("put lesson: %w", err)
	}
	return nil
}

func (r *lessonRepo) SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lessons SET evaluation = ? WHERE user_id = ? AND day = ?`,
		string(eval), userID, day)
	if err != nil {
		return fmt.Errorf("set lesson evaluation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set lesson evaluation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
