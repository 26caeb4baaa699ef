package domain

import (
	"strings"
	"time"
)

// QuestionType identifies how a question is answered and scored.
type QuestionType string

const (
	SingleSelect QuestionType = "single_select"
	MultiSelect  QuestionType = "multi_select"
	OpenText     QuestionType = "open_text"
)

// MaxKeywordHints bounds the number of keywords an open text question may carry.
const MaxKeywordHints = 5

// ParseQuestionType accepts the wire values and their upper-case names.
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case SingleSelect:
		return SingleSelect, true
	case MultiSelect:
		return MultiSelect, true
	case OpenText:
		return OpenText, true
	}
	return "", false
}

// Quiz is a named collection of questions. Questions point back to it, not the other way round.
type Quiz struct {
	ID          string    `json:"quizId"`
	Title       string    `json:"quizTitle"`
	Description *string   `json:"quizDescription,omitempty"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"lastModified"`
}

// Choice is one option of a question. For open text questions it is an accepted keyword.
type Choice struct {
	ID            string `json:"choiceId"`
	Text          string `json:"choiceText"`
	IsValidAnswer bool   `json:"isValidAnswer"`
}

// ChoiceInput is a choice before it has been assigned an id.
type ChoiceInput struct {
	Text          string `json:"choiceText" yaml:"text"`
	IsValidAnswer bool   `json:"isValidAnswer" yaml:"valid"`
}

// Question is a single prompt owned by a quiz.
type Question struct {
	ID        string       `json:"questionId"`
	QuizID    string       `json:"belongsToQuiz"`
	Text      string       `json:"questionText"`
	Type      QuestionType `json:"questionType"`
	Choices   []Choice     `json:"availableChoices"`
	CreatedAt time.Time    `json:"createdTimestamp"`
	UpdatedAt time.Time    `json:"lastModified"`
}

// AnswerKey returns the ids of the valid choices in choice order.
func (q Question) AnswerKey() []string {
	key := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		if c.IsValidAnswer {
			key = append(key, c.ID)
		}
	}
	return key
}

// Keywords returns the texts of the valid choices.
func (q Question) Keywords() []string {
	words := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		if c.IsValidAnswer {
			words = append(words, c.Text)
		}
	}
	return words
}

// Clone returns a copy that shares no slices with q.
func (q Question) Clone() Question {
	out := q
	out.Choices = append([]Choice(nil), q.Choices...)
	return out
}

// QuestionOutcome is the per-question line of a scoring result.
type QuestionOutcome struct {
	QuestionID      string   `json:"questionId"`
	WasCorrect      bool     `json:"wasCorrect"`
	ExpectedAnswers []string `json:"expectedAnswers"`
	ProvidedAnswers []string `json:"providedAnswers"`
}

// ScoringResult is computed per submission and never stored.
type ScoringResult struct {
	FinalScore       int               `json:"finalScore"`
	MaxPossibleScore int               `json:"maxPossibleScore"`
	ScorePercentage  int               `json:"scorePercentage"`
	Breakdown        []QuestionOutcome `json:"responseBreakdown"`
}
