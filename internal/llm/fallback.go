package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// FallbackDecoder is the two-tier decode policy for unreliable structured
// output. Tier one asks the provider for schema-constrained output. When
// that fails to decode (or the transport hiccups), tier two repeats the call
// in free-text mode, extracts the first balanced JSON object from the prose,
// and validates it against the schema manually. Both tiers failing
// propagates the tier-two error.
//
// Tiers are exposed separately (DecodeStructured, DecodeFreeText) so tests
// can exercise each independently.
type FallbackDecoder struct {
	Provider Provider
}

// Decode runs the full two-tier policy and unmarshals the winning JSON
// into out.
func (d FallbackDecoder) Decode(ctx context.Context, req Request, out any) error {
	if req.Schema == nil {
		return fmt.Errorf("fallback decode requires a schema")
	}

	err := d.DecodeStructured(ctx, req, out)
	if err == nil {
		return nil
	}

	// Auth and context errors don't get better by asking again.
	var auth *ErrAuth
	if errors.As(err, &auth) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return d.DecodeFreeText(ctx, req, out)
}

// DecodeStructured is tier one: schema-constrained provider output.
func (d FallbackDecoder) DecodeStructured(ctx context.Context, req Request, out any) error {
	resp, err := d.Provider.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return nil
}

// DecodeFreeText is tier two: free-text completion, brace-matched JSON
// extraction, manual schema validation.
func (d FallbackDecoder) DecodeFreeText(ctx context.Context, req Request, out any) error {
	freeReq := req
	freeReq.Schema = nil

	resp, err := d.Provider.Generate(ctx, freeReq)
	if err != nil {
		return err
	}

	raw, ok := ExtractJSON(resp.Text())
	if !ok {
		return &ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("no JSON object found in free-text response"),
		}
	}

	if err := validateResponse(req.Schema, raw); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}
