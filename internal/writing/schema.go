package writing

import "github.com/Muhsiinn/Jonas-AI/internal/llm"

// GoalSchema defines the JSON schema for writing goal generation.
var GoalSchema = &llm.Schema{
	Name:        "writing-goal",
	Description: "A concrete German writing goal derived from a daily situation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal": map[string]any{
				"type":        "string",
				"description": "The writing goal, 1-2 sentences in German",
			},
		},
		"required":             []any{"goal"},
		"additionalProperties": false,
	},
}

// VocabSchema defines the JSON schema for writing vocabulary generation.
var VocabSchema = &llm.Schema{
	Name:        "writing-vocab",
	Description: "Vocabulary items helping the learner complete the writing goal",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vocab": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"term":    map[string]any{"type": "string"},
						"meaning": map[string]any{"type": "string"},
						"example": map[string]any{"type": "string"},
					},
					"required":             []any{"term", "meaning", "example"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"vocab"},
		"additionalProperties": false,
	},
}

// EvaluationSchema defines the JSON schema for grading a writing attempt.
var EvaluationSchema = &llm.Schema{
	Name:        "writing-evaluation",
	Description: "Graded evaluation of a learner's writing attempt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":        map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"strengths":    map[string]any{"type": "string"},
			"improvements": map[string]any{"type": "string"},
			"review":       map[string]any{"type": "string"},
		},
		"required":             []any{"score", "strengths", "improvements", "review"},
		"additionalProperties": false,
	},
}
