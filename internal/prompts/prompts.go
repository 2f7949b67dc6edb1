// Package prompts loads the prompt templates embedded in the binary and
// renders them with exact-token substitution. Placeholders look like
// {{ name }}; rendering fails loudly if a placeholder is left unresolved,
// because a prompt with a literal "{{ situation }}" inside reads as garbage
// to the model and is painful to debug downstream.
package prompts

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var rawPrompts []byte

// Store holds the parsed templates keyed by name. Nested blocks flatten
// with a dot, e.g. "roleplay_goal_generator.system".
type Store struct {
	templates map[string]string
}

// Load parses the embedded prompt file. It fails only when the embedded
// YAML is malformed, which is a build-time mistake.
func Load() (*Store, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(rawPrompts, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded prompts: %w", err)
	}

	templates := make(map[string]string, len(doc))
	for name, v := range doc {
		switch t := v.(type) {
		case string:
			templates[name] = t
		case map[string]any:
			for sub, sv := range t {
				s, ok := sv.(string)
				if !ok {
					return nil, fmt.Errorf("prompt %s.%s: expected string, got %T", name, sub, sv)
				}
				templates[name+"."+sub] = s
			}
		default:
			return nil, fmt.Errorf("prompt %s: expected string or block, got %T", name, v)
		}
	}
	return &Store{templates: templates}, nil
}

// MustLoad is Load for initialization paths where a malformed embed should
// abort startup.
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns all template names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for n := range s.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render substitutes vars into the named template. Every placeholder in the
// template must be supplied; every supplied var must match a placeholder.
// Substitution walks the template once, so braces inside var values (learner
// chat turns, lesson text) pass through untouched and are never re-expanded.
func (s *Store) Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	used := make(map[string]bool, len(vars))
	var b strings.Builder
	rest := tmpl
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		end := strings.Index(rest, "}}")
		if end < 0 {
			return "", fmt.Errorf("prompt %q: unresolved placeholder %s", name, rest)
		}
		token := rest[:end+2]
		key := strings.TrimSpace(token[2 : len(token)-2])
		v, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("prompt %q: unresolved placeholder %s", name, token)
		}
		b.WriteString(v)
		used[key] = true
		rest = rest[end+2:]
	}

	for k := range vars {
		if !used[k] {
			return "", fmt.Errorf("prompt %q has no placeholder %q", name, k)
		}
	}
	return b.String(), nil
}
