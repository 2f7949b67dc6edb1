package lesson

import "github.com/Muhsiinn/Jonas-AI/internal/llm"

// ArticleSchema defines the JSON schema for the generated article.
var ArticleSchema = &llm.Schema{
	Name:        "lesson-article",
	Description: "A short German reading article split into paragraphs",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short, concrete title for the article",
			},
			"paragraphs": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
				"description": "The article body, 2-4 short paragraphs",
			},
		},
		"required":             []any{"title", "paragraphs"},
		"additionalProperties": false,
	},
}

// VocabSchema defines the JSON schema for vocabulary extraction.
var VocabSchema = &llm.Schema{
	Name:        "lesson-vocab",
	Description: "Vocabulary items extracted from the lesson text",
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

// GrammarSchema defines the JSON schema for grammar extraction.
var GrammarSchema = &llm.Schema{
	Name:        "lesson-grammar",
	Description: "Grammar rules that occur in the lesson text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"grammar": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"rule":        map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
						"examples": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"sentence":    map[string]any{"type": "string"},
									"explanation": map[string]any{"type": "string"},
								},
								"required":             []any{"sentence", "explanation"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []any{"rule", "explanation", "examples"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"grammar"},
		"additionalProperties": false,
	},
}

// QuestionSchema defines the JSON schema for comprehension questions.
var QuestionSchema = &llm.Schema{
	Name:        "lesson-questions",
	Description: "Comprehension questions about the lesson text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "integer"},
						"type": map[string]any{"type": "string", "enum": []any{"mcq", "short"}},
						"question": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required":             []any{"id", "type", "question"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// EvaluationSchema defines the JSON schema for grading learner answers.
var EvaluationSchema = &llm.Schema{
	Name:        "lesson-evaluation",
	Description: "Graded evaluation of a learner's answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"summary": map[string]any{"type": "string"},
			"focus_areas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"per_question": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id":          map[string]any{"type": "integer"},
						"correct":              map[string]any{"type": "boolean"},
						"correct_option_index": map[string]any{"type": "integer"},
						"ideal_answer":         map[string]any{"type": "string"},
						"explanation":          map[string]any{"type": "string"},
					},
					"required":             []any{"question_id", "correct"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"score", "summary", "focus_areas", "per_question"},
		"additionalProperties": false,
	},
}
