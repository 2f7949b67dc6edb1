package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type writingRepo struct {
	db *sql.DB
}

func (r *writingRepo) Get(ctx context.Context, userID, day string) (*Writing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, day, goal, vocabs, evaluation, created_at FROM writings WHERE user_id = ? AND day = ?`,
		userID, day)

	var w Writing
	var vocabs string
	var evaluation sql.NullString
	var createdAt string
	if err := row.Scan(&w.UserID, &w.Day, &w.Goal, &vocabs, &evaluation, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get writing: %w", err)
	}
	w.Vocabs = json.RawMessage(vocabs)
	if evaluation.Valid {
		w.Evaluation = json.RawMessage(evaluation.String)
	}
	w.CreatedAt = parseTime(createdAt)
	return &w, nil
}

func (r *writingRepo) Put(ctx context.Context, w Writing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO writings (user_id, day, goal, vocabs) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, day) DO UPDATE SET goal = excluded.goal, vocabs = excluded.vocabs`,
		w.UserID, w.Day, w.Goal, string(w.Vocabs))
	if err != nil {
		return fmt.Errorf("put writing: %w", err)
	}
	return nil
}

func (r *writingRepo) SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE writings SET evaluation = ? WHERE user_id = ? AND day = ?`,
		string(eval), userID, day)
	if err != nil {
		return fmt.Errorf("set writing evaluation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set writing evaluation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
