// Package workflow provides a small directed-graph executor for multi-step
// LLM pipelines. A graph threads one state value through a sequence of named
// nodes; each node receives the current state and returns the updated state.
// Edges may be unconditional or chosen by a predicate over the state, and
// cycles are permitted up to a configurable step budget.
package workflow

import (
	"context"
	"fmt"
)

// End is the terminal pseudo-node. An edge pointing at End stops the run.
const End = "__end__"

// NodeFunc is one unit of work in a pipeline. It receives the accumulated
// state and returns the state with its own fields filled in. Implementations
// should only suspend on I/O (the completion client), never on CPU work.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Predicate inspects the state after a node completes and returns a branch
// label, which the conditional edge resolves to the next node name.
type Predicate[S any] func(state S) string

type conditionalEdge[S any] struct {
	predicate Predicate[S]
	branches  map[string]string
}

// Graph is a pipeline under construction. Build it with AddNode, AddEdge,
// AddConditionalEdge and SetEntryPoint, then call Compile. Construction
// errors are collected and reported by Compile.
type Graph[S any] struct {
	nodes       map[string]NodeFunc[S]
	edges       map[string]string
	conditional map[string]conditionalEdge[S]
	entry       string
	errs        []error
}

// NewGraph creates an empty graph.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:       make(map[string]NodeFunc[S]),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge[S]),
	}
}

// AddNode registers a named step. Registering the same name twice is a
// configuration error.
func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) *Graph[S] {
	if name == End {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node name %q is reserved", End)})
		return g
	}
	if _, dup := g.nodes[name]; dup {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q already registered", name)})
		return g
	}
	if fn == nil {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q has nil func", name)})
		return g
	}
	g.nodes[name] = fn
	return g
}

// AddEdge declares an unconditional transition from one node to another
// (or to End).
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if _, dup := g.edges[from]; dup {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q already has an outgoing edge", from)})
		return g
	}
	if _, dup := g.conditional[from]; dup {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q already has a conditional edge", from)})
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdge declares a branching transition: after from completes,
// predicate(state) yields a label that branches maps to the next node name.
func (g *Graph[S]) AddConditionalEdge(from string, predicate Predicate[S], branches map[string]string) *Graph[S] {
	if _, dup := g.edges[from]; dup {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q already has an outgoing edge", from)})
		return g
	}
	if _, dup := g.conditional[from]; dup {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("node %q already has a conditional edge", from)})
		return g
	}
	if predicate == nil {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("conditional edge from %q has nil predicate", from)})
		return g
	}
	if len(branches) == 0 {
		g.errs = append(g.errs, &ConfigError{Reason: fmt.Sprintf("conditional edge from %q has no branches", from)})
		return g
	}
	g.conditional[from] = conditionalEdge[S]{predicate: predicate, branches: branches}
	return g
}

// SetEntryPoint names the node execution starts from.
func (g *Graph[S]) SetEntryPoint(name string) *Graph[S] {
	g.entry = name
	return g
}

// Compile validates the graph and returns an executable Pipeline.
// All structural problems surface here as *ConfigError.
func (g *Graph[S]) Compile(opts ...Option) (*Pipeline[S], error) {
	if len(g.errs) > 0 {
		return nil, g.errs[0]
	}
	if g.entry == "" {
		return nil, &ConfigError{Reason: "no entry point set"}
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("entry point %q is not a registered node", g.entry)}
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("edge from unknown node %q", from)}
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return nil, &ConfigError{Reason: fmt.Sprintf("edge %q -> unknown node %q", from, to)}
			}
		}
	}
	for from, ce := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("conditional edge from unknown node %q", from)}
		}
		for label, target := range ce.branches {
			if target != End {
				if _, ok := g.nodes[target]; !ok {
					return nil, &ConfigError{Reason: fmt.Sprintf("branch %q from %q -> unknown node %q", label, from, target)}
				}
			}
		}
	}

	p := &Pipeline[S]{graph: g, maxSteps: defaultMaxSteps}
	for _, opt := range opts {
		opt(&p.cfg)
	}
	if p.cfg.maxSteps > 0 {
		p.maxSteps = p.cfg.maxSteps
	}
	return p, nil
}

const defaultMaxSteps = 32

type config struct {
	maxSteps int
}

// Option configures a compiled pipeline.
type Option func(*config)

// WithMaxSteps bounds the number of node executions per run. A run that
// exceeds the bound fails with *RunawayError rather than looping forever.
func WithMaxSteps(n int) Option {
	return func(c *config) { c.maxSteps = n }
}

// Pipeline is a compiled, executable graph. A Pipeline is immutable and safe
// for concurrent use; each Run owns its state value exclusively.
type Pipeline[S any] struct {
	graph    *Graph[S]
	cfg      config
	maxSteps int
}

// Observer is notified after each node completes, before the next node
// starts. Used to surface incremental progress (e.g. an SSE feed).
type Observer[S any] func(node string, state S)

// Run executes the pipeline to termination and returns the final state.
// A node error aborts the run and is returned wrapped with the node name.
func (p *Pipeline[S]) Run(ctx context.Context, initial S) (S, error) {
	return p.Stream(ctx, initial, nil)
}

// Stream executes like Run but additionally invokes observe after every
// completed node. Events are strictly sequential; nodes never run
// concurrently within one invocation.
func (p *Pipeline[S]) Stream(ctx context.Context, initial S, observe Observer[S]) (S, error) {
	state := initial
	current := p.graph.entry

	for steps := 0; current != End; steps++ {
		if steps >= p.maxSteps {
			return state, &RunawayError{Node: current, Steps: steps}
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		fn := p.graph.nodes[current]
		next, err := fn(ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %q: %w", current, err)
		}
		state = next

		if observe != nil {
			observe(current, state)
		}

		current, err = p.next(current, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// next resolves the outgoing transition of a completed node.
func (p *Pipeline[S]) next(from string, state S) (string, error) {
	if to, ok := p.graph.edges[from]; ok {
		return to, nil
	}
	if ce, ok := p.graph.conditional[from]; ok {
		label := ce.predicate(state)
		target, ok := ce.branches[label]
		if !ok {
			return "", &ConfigError{Reason: fmt.Sprintf("node %q: predicate returned unknown branch label %q", from, label)}
		}
		return target, nil
	}
	// No declared edge terminates the run.
	return End, nil
}
