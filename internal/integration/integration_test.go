package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/idgen"
	"quizmaster-service/internal/infra/memory"
	pgseed "quizmaster-service/internal/infra/postgres"
	pgmigrations "quizmaster-service/internal/infra/postgres/migrations"
	infraredis "quizmaster-service/internal/infra/redis"
	"quizmaster-service/internal/seed"
)

func TestSeedCatalogAndSubmitEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateAndSeed(t, ctx, pgURL, map[string]seed.Quiz{
		"arith": arithmeticQuiz(),
		"broken": {
			Title: "Broken quiz",
			Questions: []seed.Question{{
				Text: "Pick one of these",
				Type: "single_select",
				Choices: []domain.ChoiceInput{
					{Text: "a", IsValidAnswer: true},
					{Text: "b", IsValidAnswer: true},
				},
			}},
		},
	})

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	service := app.NewQuizService(
		memory.NewQuizStore(idgen.NewUUIDGenerator()),
		app.WithViewCache(infraredis.NewViewCache(redisClient, 5*time.Minute)),
	)

	stats, err := seed.Run(ctx, service, nil, pgseed.NewSeedLoader(pool))
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if stats.Quizzes != 1 || stats.Questions != 2 || stats.Skipped != 1 {
		t.Fatalf("unexpected seed stats %+v", stats)
	}

	quizzes := service.ListQuizzes(ctx)
	if len(quizzes) != 1 || quizzes[0].Title != "Arithmetic" {
		t.Fatalf("expected only the valid quiz, got %+v", quizzes)
	}
	quizID := quizzes[0].ID

	views, found := service.ParticipantQuestions(ctx, quizID)
	if !found || len(views) != 2 {
		t.Fatalf("participant questions: found=%v len=%d", found, len(views))
	}
	keys, err := redisClient.Keys(ctx, "quiz:"+quizID+":*").Result()
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one cached view, got %v (%v)", keys, err)
	}

	questions := questionsByText(t, service, ctx, quizID)
	single := questions["What is 2 + 2?"]
	multi := questions["Which numbers are even?"]

	result, found := service.Submit(ctx, quizID, []domain.RawResponse{
		{TargetQuestionID: single.ID, SelectedChoiceID: single.AnswerKey()[0]},
		{QuestionID: multi.ID, SelectedOptionIDs: []string{multi.Choices[0].ID}},
	})
	if !found {
		t.Fatalf("submit: quiz not found")
	}
	if result.FinalScore != 1 || result.MaxPossibleScore != 2 || result.ScorePercentage != 50 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func questionsByText(t *testing.T, service *app.QuizService, ctx context.Context, quizID string) map[string]domain.Question {
	t.Helper()
	views, _ := service.ParticipantQuestions(ctx, quizID)
	out := make(map[string]domain.Question, len(views))
	for _, v := range views {
		q, ok := service.GetQuestion(ctx, v.QuestionID)
		if !ok {
			t.Fatalf("question %s not found", v.QuestionID)
		}
		out[q.Text] = q
	}
	return out
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, stop := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://quiz:quizpass@%s/quizdb?sslmode=disable", addr), stop
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, stop := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")
	return "redis://" + addr, stop
}

// startContainer runs req and returns the host:port mapped to exposed.
func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, exposed nat.Port) (string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	stop := func() { _ = container.Terminate(ctx) }

	host, err := container.Host(ctx)
	if err != nil {
		stop()
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := container.MappedPort(ctx, exposed)
	if err != nil {
		stop()
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return net.JoinHostPort(host, port.Port()), stop
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, quizzes map[string]seed.Quiz) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	position := 0
	for _, id := range []string{"arith", "broken"} {
		quiz, ok := quizzes[id]
		if !ok {
			continue
		}
		data, err := json.Marshal(quiz)
		if err != nil {
			t.Fatalf("marshal quiz: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO quiz_seeds (id, data, position) VALUES (?, ?::jsonb, ?) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
			id, string(data), position,
		); err != nil {
			t.Fatalf("insert seed %s: %v", id, err)
		}
		position++
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO quiz_seeds (id, data, enabled) VALUES ('disabled', '{"title":"Hidden quiz","questions":[]}'::jsonb, FALSE)`,
	); err != nil {
		t.Fatalf("insert disabled seed: %v", err)
	}
}

func arithmeticQuiz() seed.Quiz {
	return seed.Quiz{
		Title: "Arithmetic",
		Questions: []seed.Question{
			{
				Text: "What is 2 + 2?",
				Type: "single_select",
				Choices: []domain.ChoiceInput{
					{Text: "3", IsValidAnswer: false},
					{Text: "4", IsValidAnswer: true},
					{Text: "5", IsValidAnswer: false},
				},
			},
			{
				Text: "Which numbers are even?",
				Type: "multi_select",
				Choices: []domain.ChoiceInput{
					{Text: "2", IsValidAnswer: true},
					{Text: "4", IsValidAnswer: true},
					{Text: "7", IsValidAnswer: false},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
