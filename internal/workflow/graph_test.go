package workflow

import (
	"context"
	"errors"
	"testing"
)

type counterState struct {
	Visits []string
	N      int
	Done   bool
}

func visit(name string) NodeFunc[counterState] {
	return func(_ context.Context, s counterState) (counterState, error) {
		s.Visits = append(s.Visits, name)
		s.N++
		return s, nil
	}
}

func TestPipeline_SequentialOrder(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddNode("c", visit("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", End).
		SetEntryPoint("a")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := p.Run(context.Background(), counterState{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(out.Visits) != len(want) {
		t.Fatalf("expected %d visits, got %v", len(want), out.Visits)
	}
	for i, name := range want {
		if out.Visits[i] != name {
			t.Errorf("visit %d: expected %q, got %q", i, name, out.Visits[i])
		}
	}
}

func TestPipeline_ConditionalBranch(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("check", func(_ context.Context, s counterState) (counterState, error) {
			s.Done = s.N > 0
			return s, nil
		}).
		AddNode("finish", visit("finish")).
		AddConditionalEdge("check", func(s counterState) string {
			if s.Done {
				return "evaluate"
			}
			return "end"
		}, map[string]string{"evaluate": "finish", "end": End}).
		AddEdge("finish", End).
		SetEntryPoint("check")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := p.Run(context.Background(), counterState{N: 0})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Visits) != 0 {
		t.Errorf("expected end branch to skip finish, got %v", out.Visits)
	}

	out, err = p.Run(context.Background(), counterState{N: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Visits) != 1 || out.Visits[0] != "finish" {
		t.Errorf("expected evaluate branch to run finish, got %v", out.Visits)
	}
}

func TestPipeline_UnknownBranchLabel(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("check", visit("check")).
		AddConditionalEdge("check", func(counterState) string { return "nope" },
			map[string]string{"end": End}).
		SetEntryPoint("check")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = p.Run(context.Background(), counterState{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for unknown label, got %v", err)
	}
}

func TestCompile_DuplicateNode(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("a", visit("a")).
		AddNode("a", visit("a")).
		SetEntryPoint("a")

	_, err := g.Compile()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for duplicate node, got %v", err)
	}
}

func TestCompile_EdgeToUnknownNode(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("a", visit("a")).
		AddEdge("a", "ghost").
		SetEntryPoint("a")

	_, err := g.Compile()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for unknown edge target, got %v", err)
	}
}

func TestCompile_MissingEntryPoint(t *testing.T) {
	g := NewGraph[counterState]().AddNode("a", visit("a"))

	_, err := g.Compile()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for missing entry, got %v", err)
	}
}

func TestPipeline_NodeErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	g := NewGraph[counterState]().
		AddNode("a", visit("a")).
		AddNode("b", func(_ context.Context, s counterState) (counterState, error) {
			return s, boom
		}).
		AddNode("c", visit("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", End).
		SetEntryPoint("a")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := p.Run(context.Background(), counterState{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped node error, got %v", err)
	}
	for _, v := range out.Visits {
		if v == "c" {
			t.Error("node after failure must not run")
		}
	}
}

func TestPipeline_RunawayGuard(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("loop", visit("loop")).
		AddEdge("loop", "loop").
		SetEntryPoint("loop")

	p, err := g.Compile(WithMaxSteps(5))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = p.Run(context.Background(), counterState{})
	var runaway *RunawayError
	if !errors.As(err, &runaway) {
		t.Fatalf("expected RunawayError, got %v", err)
	}
	if runaway.Steps != 5 {
		t.Errorf("expected 5 steps before abort, got %d", runaway.Steps)
	}
}

func TestPipeline_StreamObservesEveryNode(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddEdge("a", "b").
		AddEdge("b", End).
		SetEntryPoint("a")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var seen []string
	_, err = p.Stream(context.Background(), counterState{}, func(node string, s counterState) {
		seen = append(seen, node)
		// Observer fires after the node ran: its own visit must be recorded.
		if s.Visits[len(s.Visits)-1] != node {
			t.Errorf("observer for %q saw state from %v", node, s.Visits)
		}
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("expected observer order [a b], got %v", seen)
	}
}

func TestPipeline_NoEdgeTerminates(t *testing.T) {
	g := NewGraph[counterState]().
		AddNode("only", visit("only")).
		SetEntryPoint("only")

	p, err := g.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := p.Run(context.Background(), counterState{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.N != 1 {
		t.Errorf("expected exactly one execution, got %d", out.N)
	}
}
