// Package seed pre-populates the quiz store from a catalog at startup.
// Seeded quizzes go through the same validation as quizzes created over the API.
package seed

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// Quiz is a catalog entry.
type Quiz struct {
	Title       string     `json:"title" yaml:"title"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

type Question struct {
	Text    string               `json:"text" yaml:"text"`
	Type    string               `json:"type" yaml:"type"`
	Choices []domain.ChoiceInput `json:"choices" yaml:"choices"`
}

// Loader reads catalog entries from a backing source.
type Loader interface {
	LoadSeeds(ctx context.Context) ([]Quiz, error)
}

// FileLoader reads a YAML document of the form `quizzes: [...]`.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadSeeds(_ context.Context) ([]Quiz, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc struct {
		Quizzes []Quiz `yaml:"quizzes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return doc.Quizzes, nil
}

// Stats summarizes a seeding run.
type Stats struct {
	Quizzes   int
	Questions int
	Skipped   int
}

// Check reports why an entry cannot be imported, or nil.
func Check(q Quiz) error {
	if q.Title == "" {
		return fmt.Errorf("%w: missing title", domain.ErrSeedInvalid)
	}
	for i, question := range q.Questions {
		t, ok := domain.ParseQuestionType(question.Type)
		if !ok {
			return fmt.Errorf("%w: question %d: %w", domain.ErrSeedInvalid, i, domain.ErrUnknownQuestionType)
		}
		if err := domain.ValidateQuestion(t, question.Choices); err != nil {
			return fmt.Errorf("%w: question %d: %w", domain.ErrSeedInvalid, i, err)
		}
	}
	return nil
}

// Apply imports every valid entry. Invalid entries are logged and skipped as a whole,
// so a quiz is never created with only part of its questions.
func Apply(ctx context.Context, service *app.QuizService, quizzes []Quiz, logger *zap.Logger) Stats {
	if logger == nil {
		logger = zap.NewNop()
	}
	var stats Stats
	for _, entry := range quizzes {
		if err := Check(entry); err != nil {
			logger.Warn("skipping seed quiz", zap.String("title", entry.Title), zap.Error(err))
			stats.Skipped++
			continue
		}

		quiz := service.CreateQuiz(ctx, entry.Title, entry.Description)
		stats.Quizzes++
		for _, question := range entry.Questions {
			t, _ := domain.ParseQuestionType(question.Type)
			if _, _, err := service.AttachQuestion(ctx, quiz.ID, question.Text, t, question.Choices); err != nil {
				logger.Warn("seed question rejected", zap.String("quiz_id", quiz.ID), zap.Error(err))
				continue
			}
			stats.Questions++
		}
	}
	return stats
}

// Run loads from every loader in order and applies the results.
func Run(ctx context.Context, service *app.QuizService, logger *zap.Logger, loaders ...Loader) (Stats, error) {
	var total Stats
	for _, l := range loaders {
		quizzes, err := l.LoadSeeds(ctx)
		if err != nil {
			return total, err
		}
		s := Apply(ctx, service, quizzes, logger)
		total.Quizzes += s.Quizzes
		total.Questions += s.Questions
		total.Skipped += s.Skipped
	}
	return total, nil
}
