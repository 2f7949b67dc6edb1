package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	success := 0
	if data.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events
			(provider, model, purpose, latency_ms, success, input_tokens, output_tokens, request_body, response_body, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.LatencyMs, success,
		data.InputTokens, data.OutputTokens,
		data.RequestBody, data.ResponseBody, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEventDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, provider, model, purpose, latency_ms, success, input_tokens, output_tokens,
		        request_body, response_body, error_message, created_at
		 FROM llm_events WHERE id = ?`, id)

	var e LLMEventDetail
	var success int
	var reqBody, respBody, errMsg sql.NullString
	var createdAt string
	err := row.Scan(&e.ID, &e.Provider, &e.Model, &e.Purpose, &e.LatencyMs,
		&success, &e.InputTokens, &e.OutputTokens, &reqBody, &respBody, &errMsg, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get llm event: %w", err)
	}
	e.Success = success == 1
	e.RequestBody = reqBody.String
	e.ResponseBody = respBody.String
	e.ErrorMessage = errMsg.String
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var where []string
	var args []any
	if opts.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, opts.Provider)
	}
	if opts.OnlyFailure {
		where = append(where, "success = 0")
	}

	q := `SELECT id, provider, model, purpose, latency_ms, success, input_tokens, output_tokens, error_message, created_at
	      FROM llm_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		var e LLMEvent
		var success int
		var errMsg sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.Purpose, &e.LatencyMs,
			&success, &e.InputTokens, &e.OutputTokens, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		e.Success = success == 1
		e.ErrorMessage = errMsg.String
		e.CreatedAt = parseTime(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
