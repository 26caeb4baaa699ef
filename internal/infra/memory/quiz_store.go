package memory

import (
	"sync"
	"time"

	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/idgen"
)

// QuizStore is the in-memory implementation of app.QuizStore.
// A single RWMutex serializes mutations against reads.
type QuizStore struct {
	ids   idgen.Generator
	clock func() time.Time

	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	quizOrder []string
	questions map[string]domain.Question
	byQuiz    map[string][]string
}

func NewQuizStore(ids idgen.Generator) *QuizStore {
	return NewQuizStoreWithClock(ids, time.Now)
}

// NewQuizStoreWithClock allows deterministic timestamps in tests.
func NewQuizStoreWithClock(ids idgen.Generator, now func() time.Time) *QuizStore {
	return &QuizStore{
		ids:       ids,
		clock:     now,
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string]domain.Question),
		byQuiz:    make(map[string][]string),
	}
}

func (s *QuizStore) CreateQuiz(title string, description *string) domain.Quiz {
	now := s.clock()
	quiz := domain.Quiz{
		ID:          s.ids.NewID(),
		Title:       title,
		Description: copyString(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	s.quizOrder = append(s.quizOrder, quiz.ID)
	return cloneQuiz(quiz)
}

func (s *QuizStore) GetQuiz(id string) (domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	return cloneQuiz(quiz), ok
}

func (s *QuizStore) ListQuizzes() []domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		out = append(out, cloneQuiz(s.quizzes[id]))
	}
	return out
}

func (s *QuizStore) AddQuestion(quizID, text string, t domain.QuestionType, choices []domain.ChoiceInput) (domain.Question, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[quizID]; !ok {
		return domain.Question{}, false, nil
	}
	if err := domain.ValidateQuestion(t, choices); err != nil {
		return domain.Question{}, true, err
	}

	now := s.clock()
	q := domain.Question{
		ID:        s.ids.NewID(),
		QuizID:    quizID,
		Text:      text,
		Type:      t,
		Choices:   make([]domain.Choice, 0, len(choices)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, c := range choices {
		q.Choices = append(q.Choices, domain.Choice{
			ID:            s.ids.NewID(),
			Text:          c.Text,
			IsValidAnswer: c.IsValidAnswer,
		})
	}

	s.questions[q.ID] = q
	s.byQuiz[quizID] = append(s.byQuiz[quizID], q.ID)
	return q.Clone(), true, nil
}

func (s *QuizStore) GetQuestion(id string) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, false
	}
	return q.Clone(), true
}

func (s *QuizStore) ListQuestionsForQuiz(quizID string) []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byQuiz[quizID]
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.questions[id].Clone())
	}
	return out
}

func (s *QuizStore) QuestionCount(quizID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byQuiz[quizID])
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	q.Description = copyString(q.Description)
	return q
}
