package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type deadlineRecorder struct {
	hadDeadline bool
	deadline    time.Time
}

func (d *deadlineRecorder) Generate(ctx context.Context, _ Request) (*Response, error) {
	d.deadline, d.hadDeadline = ctx.Deadline()
	return &Response{Content: json.RawMessage("ok")}, nil
}

func (d *deadlineRecorder) ModelID() string { return "recorder" }

func TestWithTimeoutBoundsGenerate(t *testing.T) {
	rec := &deadlineRecorder{}
	p := WithTimeout(rec, 45*time.Second)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !rec.hadDeadline {
		t.Fatal("call carried no deadline")
	}
	if remaining := time.Until(rec.deadline); remaining > 45*time.Second {
		t.Errorf("deadline %v out past the configured timeout", remaining)
	}
}

func TestWithTimeoutZeroIsPassthrough(t *testing.T) {
	rec := &deadlineRecorder{}
	if p := WithTimeout(rec, 0); p != Provider(rec) {
		t.Error("zero timeout should return the provider unchanged")
	}

	p := WithTimeout(rec, -time.Second)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.hadDeadline {
		t.Error("negative timeout must not add a deadline")
	}
}
