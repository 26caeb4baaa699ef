package scoring

import (
	"math"
	"strings"

	"quizmaster-service/internal/domain"
)

// Strategy decides whether an answer is correct for a question of one type.
// A nil answer means the participant did not respond.
type Strategy interface {
	Correct(q domain.Question, answer domain.Answer) bool
}

// Engine routes each question to the strategy for its type and aggregates the result.
type Engine struct {
	strategies map[domain.QuestionType]Strategy
}

func NewEngine() *Engine {
	return &Engine{
		strategies: map[domain.QuestionType]Strategy{
			domain.SingleSelect: singleSelectStrategy{},
			domain.MultiSelect:  multiSelectStrategy{},
			domain.OpenText:     keywordStrategy{},
		},
	}
}

// Score evaluates responses against every question of a quiz. Each question is worth one point
// and an unanswered question is wrong. It returns false when there is nothing to score.
func (e *Engine) Score(questions []domain.Question, responses []domain.Response) (domain.ScoringResult, bool) {
	if len(questions) == 0 {
		return domain.ScoringResult{}, false
	}

	byQuestion := make(map[string]domain.Answer, len(responses))
	for _, r := range responses {
		// first response for a question wins
		if _, seen := byQuestion[r.QuestionID]; !seen {
			byQuestion[r.QuestionID] = r.Answer
		}
	}

	result := domain.ScoringResult{
		MaxPossibleScore: len(questions),
		Breakdown:        make([]domain.QuestionOutcome, 0, len(questions)),
	}
	for _, q := range questions {
		answer := byQuestion[q.ID]
		correct := false
		if s, ok := e.strategies[q.Type]; ok && answer != nil {
			correct = s.Correct(q, answer)
		}
		if correct {
			result.FinalScore++
		}
		result.Breakdown = append(result.Breakdown, domain.QuestionOutcome{
			QuestionID:      q.ID,
			WasCorrect:      correct,
			ExpectedAnswers: q.AnswerKey(),
			ProvidedAnswers: domain.Provided(answer),
		})
	}
	result.ScorePercentage = Percentage(result.FinalScore, result.MaxPossibleScore)
	return result, true
}

// Percentage rounds half away from zero, so 2/3 is 67 and 1/3 is 33.
func Percentage(achieved, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(achieved) / float64(max) * 100))
}

type singleSelectStrategy struct{}

func (singleSelectStrategy) Correct(q domain.Question, answer domain.Answer) bool {
	a, ok := answer.(domain.SingleSelectAnswer)
	if !ok || a.ChoiceID == "" {
		return false
	}
	for _, id := range q.AnswerKey() {
		if id == a.ChoiceID {
			return true
		}
	}
	return false
}

type multiSelectStrategy struct{}

func (multiSelectStrategy) Correct(q domain.Question, answer domain.Answer) bool {
	a, ok := answer.(domain.MultiSelectAnswer)
	if !ok {
		return false
	}
	return setEqual(toSet(q.AnswerKey()), toSet(a.ChoiceIDs))
}

type keywordStrategy struct{}

func (keywordStrategy) Correct(q domain.Question, answer domain.Answer) bool {
	a, ok := answer.(domain.TextAnswer)
	if !ok || a.Text == "" {
		return false
	}
	text := strings.ToLower(a.Text)
	for _, kw := range q.Keywords() {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
