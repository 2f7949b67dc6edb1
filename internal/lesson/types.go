// Package lesson generates the daily reading lesson: an article written for
// the learner's situation and level, plus vocabulary, grammar rules and
// comprehension questions derived from it. The four stages run as a
// sequential pipeline; each stage reads what the previous ones produced.
package lesson

// Profile describes the learner the lesson is written for.
type Profile struct {
	ReadingLevel  string `json:"readingLevel"`
	SpeakingLevel string `json:"speakingLevel"`
	Region        string `json:"region"`
	Goal          string `json:"goal"`
}

// Article is the generated lesson text.
type Article struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// VocabItem is one vocabulary entry extracted from the article.
type VocabItem struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// GrammarExample is one illustrative sentence for a grammar rule.
type GrammarExample struct {
	Sentence    string `json:"sentence"`
	Explanation string `json:"explanation"`
}

// GrammarRule is one grammar point the article exercises.
type GrammarRule struct {
	Rule        string           `json:"rule"`
	Explanation string           `json:"explanation"`
	Examples    []GrammarExample `json:"examples"`
}

// Question is one comprehension question. Type is "mcq" or "short";
// Options is set only for mcq.
type Question struct {
	ID       int      `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Content is the complete lesson, the pipeline's final output.
type Content struct {
	Lesson    Article       `json:"lesson"`
	Vocabs    []VocabItem   `json:"vocabs"`
	Grammar   []GrammarRule `json:"grammar"`
	Questions []Question    `json:"questions"`
}

// State carries the pipeline's accumulating output between stages.
type State struct {
	Profile   Profile
	Situation string

	Lesson    *Article
	Vocabs    []VocabItem
	Grammar   []GrammarRule
	Questions []Question
}

// Answer is a learner's answer to one question, by question ID.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// QuestionFeedback is the per-question part of an evaluation.
type QuestionFeedback struct {
	QuestionID         int    `json:"question_id"`
	Correct            bool   `json:"correct"`
	CorrectOptionIndex *int   `json:"correct_option_index,omitempty"`
	IdealAnswer        string `json:"ideal_answer,omitempty"`
	Explanation        string `json:"explanation,omitempty"`
}

// Evaluation is the graded result of a learner's answers.
type Evaluation struct {
	Score       int                `json:"score"`
	Summary     string             `json:"summary"`
	FocusAreas  []string           `json:"focus_areas"`
	PerQuestion []QuestionFeedback `json:"per_question"`
}
