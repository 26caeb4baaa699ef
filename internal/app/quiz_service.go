package app

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/scoring"
)

// QuizStore holds quizzes and questions for the lifetime of the process.
// Lookups report absence with a boolean, never with an error.
type QuizStore interface {
	CreateQuiz(title string, description *string) domain.Quiz
	GetQuiz(id string) (domain.Quiz, bool)
	ListQuizzes() []domain.Quiz
	// AddQuestion validates and stores a question atomically. ok is false when the quiz is unknown;
	// err is a *domain.ValidationError when the choices break the type's rules.
	AddQuestion(quizID, text string, t domain.QuestionType, choices []domain.ChoiceInput) (q domain.Question, ok bool, err error)
	GetQuestion(id string) (domain.Question, bool)
	ListQuestionsForQuiz(quizID string) []domain.Question
	QuestionCount(quizID string) int
}

// ViewLoader produces participant views on a cache miss.
type ViewLoader func(ctx context.Context) ([]domain.ParticipantQuestion, error)

// ParticipantViewCache caches sanitized question lists (in-memory, Redis, etc).
// Implementations return a copy the caller may modify, and treat a non-positive TTL as caching disabled.
type ParticipantViewCache interface {
	GetOrLoad(ctx context.Context, key string, load ViewLoader) ([]domain.ParticipantQuestion, error)
}

// QuizService contains the quiz authoring and scoring use cases.
type QuizService struct {
	store  QuizStore
	engine *scoring.Engine
	views  ParticipantViewCache
	logger *zap.Logger
}

type Option func(*QuizService)

// WithViewCache caches participant question lists.
func WithViewCache(c ParticipantViewCache) Option {
	return func(s *QuizService) { s.views = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *QuizService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewQuizService(store QuizStore, opts ...Option) *QuizService {
	s := &QuizService{
		store:  store,
		engine: scoring.NewEngine(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateQuiz always succeeds; title rules are enforced at the wire boundary.
func (s *QuizService) CreateQuiz(_ context.Context, title string, description *string) domain.Quiz {
	quiz := s.store.CreateQuiz(title, description)
	s.logger.Debug("quiz created", zap.String("quiz_id", quiz.ID))
	return quiz
}

func (s *QuizService) ListQuizzes(_ context.Context) []domain.Quiz {
	return s.store.ListQuizzes()
}

func (s *QuizService) GetQuiz(_ context.Context, quizID string) (domain.Quiz, bool) {
	return s.store.GetQuiz(quizID)
}

// AttachQuestion adds a question to an existing quiz. Nothing is stored when validation fails.
func (s *QuizService) AttachQuestion(_ context.Context, quizID, text string, t domain.QuestionType, choices []domain.ChoiceInput) (domain.Question, bool, error) {
	q, ok, err := s.store.AddQuestion(quizID, text, t, choices)
	if err != nil || !ok {
		return domain.Question{}, ok, err
	}
	s.logger.Debug("question attached",
		zap.String("quiz_id", quizID),
		zap.String("question_id", q.ID),
		zap.String("type", string(t)),
	)
	return q, true, nil
}

func (s *QuizService) GetQuestion(_ context.Context, questionID string) (domain.Question, bool) {
	return s.store.GetQuestion(questionID)
}

// ParticipantQuestions returns the sanitized questions of a quiz in attachment order.
func (s *QuizService) ParticipantQuestions(ctx context.Context, quizID string) ([]domain.ParticipantQuestion, bool) {
	if _, ok := s.store.GetQuiz(quizID); !ok {
		return nil, false
	}
	load := func(context.Context) ([]domain.ParticipantQuestion, error) {
		return domain.ToParticipantViews(s.store.ListQuestionsForQuiz(quizID)), nil
	}
	if s.views == nil {
		views, _ := load(ctx)
		return views, true
	}

	// Questions are append-only, so the count is a revision: a new question changes the key.
	key := quizID + ":" + strconv.Itoa(s.store.QuestionCount(quizID))
	views, err := s.views.GetOrLoad(ctx, key, load)
	if err != nil {
		s.logger.Warn("participant view cache failed", zap.String("quiz_id", quizID), zap.Error(err))
		views, _ = load(ctx)
	}
	return views, true
}

// Submit scores responses against the quiz's answer keys. It returns false when the quiz is
// unknown or has no questions; the two cases are intentionally indistinguishable.
func (s *QuizService) Submit(_ context.Context, quizID string, raw []domain.RawResponse) (domain.ScoringResult, bool) {
	if _, ok := s.store.GetQuiz(quizID); !ok {
		return domain.ScoringResult{}, false
	}
	questions := s.store.ListQuestionsForQuiz(quizID)
	responses := Normalize(questions, raw)

	result, ok := s.engine.Score(questions, responses)
	if ok {
		s.logger.Debug("submission scored",
			zap.String("quiz_id", quizID),
			zap.Int("score", result.FinalScore),
			zap.Int("max", result.MaxPossibleScore),
		)
	}
	return result, ok
}

// Normalize resolves alias fields of each raw response using the type of the question it targets.
// Responses for questions outside the quiz are dropped.
func Normalize(questions []domain.Question, raw []domain.RawResponse) []domain.Response {
	types := make(map[string]domain.QuestionType, len(questions))
	for _, q := range questions {
		types[q.ID] = q.Type
	}
	out := make([]domain.Response, 0, len(raw))
	for _, r := range raw {
		t, ok := types[r.TargetID()]
		if !ok {
			continue
		}
		out = append(out, r.Normalize(t))
	}
	return out
}
