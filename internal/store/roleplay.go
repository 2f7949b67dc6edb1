package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type roleplayRepo struct {
	db *sql.DB
}

func (r *roleplayRepo) GetSession(ctx context.Context, userID, day string) (*RoleplaySession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, day, goal, evaluation, created_at FROM roleplay_sessions WHERE user_id = ? AND day = ?`,
		userID, day)

	var s RoleplaySession
	var evaluation sql.NullString
	var createdAt string
	if err := row.Scan(&s.UserID, &s.Day, &s.Goal, &evaluation, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get roleplay session: %w", err)
	}
	if evaluation.Valid {
		s.Evaluation = json.RawMessage(evaluation.String)
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func (r *roleplayRepo) PutSession(ctx context.Context, s RoleplaySession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roleplay_sessions (user_id, day, goal) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, day) DO UPDATE SET goal = excluded.goal`,
		s.UserID, s.Day, s.Goal)
	if err != nil {
		return fmt.Errorf("put roleplay session: %w", err)
	}
	return nil
}

func (r *roleplayRepo) Turns(ctx context.Context, userID, day string) ([]ChatTurn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, role, content FROM roleplay_turns WHERE user_id = ? AND day = ? ORDER BY seq`,
		userID, day)
	if err != nil {
		return nil, fmt.Errorf("query roleplay turns: %w", err)
	}
	defer rows.Close()

	var turns []ChatTurn
	for rows.Next() {
		var t ChatTurn
		if err := rows.Scan(&t.Seq, &t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("scan roleplay turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// AppendTurns persists only turns not already stored. The UNIQUE constraint
// on (user_id, day, seq) makes replays of already-saved turns no-ops.
func (r *roleplayRepo) AppendTurns(ctx context.Context, userID, day string, turns []ChatTurn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append roleplay turns: %w", err)
	}
	defer tx.Rollback()

	for _, t := range turns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO roleplay_turns (user_id, day, seq, role, content) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, day, seq) DO NOTHING`,
			userID, day, t.Seq, t.Role, t.Content)
		if err != nil {
			return fmt.Errorf("append roleplay turn %d: %w", t.Seq, err)
		}
	}
	return tx.Commit()
}

func (r *roleplayRepo) SetEvaluation(ctx context.Context, userID, day string, eval json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE roleplay_sessions SET evaluation = ? WHERE user_id = ? AND day = ?`,
		string(eval), userID, day)
	if err != nil {
		return fmt.Errorf("set roleplay evaluation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set roleplay evaluation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
