package roleplay

import "github.com/Muhsiinn/Jonas-AI/internal/llm"

// ScenarioSchema defines the JSON schema for roleplay scenario generation.
var ScenarioSchema = &llm.Schema{
	Name:        "roleplay-scenario",
	Description: "A roleplay scenario with a conversational goal and two roles",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal": map[string]any{
				"type":        "string",
				"description": "Concrete conversational end goal, reachable in a short dialogue",
			},
			"user_role": map[string]any{
				"type":        "string",
				"description": "Role the learner plays",
			},
			"ai_role": map[string]any{
				"type":        "string",
				"description": "Role the assistant plays",
			},
		},
		"required":             []any{"goal", "user_role", "ai_role"},
		"additionalProperties": false,
	},
}

var critiqueProps = func(second string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"original":    map[string]any{"type": "string"},
			second:        map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
		},
		"required":             []any{"original", second, "explanation"},
		"additionalProperties": false,
	}
}

// EvaluationSchema defines the JSON schema for session evaluation.
var EvaluationSchema = &llm.Schema{
	Name:        "roleplay-evaluation",
	Description: "Structured evaluation of a finished roleplay session",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"grammarScore":      map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"clarityScore":      map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"naturalnessScore":  map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"keyMistake":        critiqueProps("corrected"),
			"improvedSentence":  critiqueProps("improved"),
			"vocabularyUpgrade": critiqueProps("upgraded"),
		},
		"required": []any{
			"grammarScore", "clarityScore", "naturalnessScore",
			"keyMistake", "improvedSentence", "vocabularyUpgrade",
		},
		"additionalProperties": false,
	},
}
