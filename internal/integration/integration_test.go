package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	pgloader "daily-quiz-service/internal/infra/postgres"
	pgmigrations "daily-quiz-service/internal/infra/postgres/migrations"
	infraredis "daily-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestDailyAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	today := domain.DateOf(time.Now())
	seedQuestion(t, ctx, pgURL, sampleQuestion(today))

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewQuestionLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	questionRepo := infraredis.NewQuestionRepository(redisClient, loader, 5*time.Minute)
	progressStore := infraredis.NewProgressStore(redisClient)
	progress := app.NewProgressService(progressStore)
	quiz := app.NewDailyQuizService(questionRepo, progress)

	view, err := quiz.QuestionOfDay(ctx)
	if err != nil {
		t.Fatalf("question of day: %v", err)
	}
	if view.ID != "q1" || len(view.Options) != 3 {
		t.Fatalf("unexpected question view %+v", view)
	}

	result, record, err := quiz.SubmitAnswer(ctx, "device-1", domain.AnswerSubmission{
		QuestionID: "q1",
		OptionID:   "o2",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Awarded != 10 {
		t.Fatalf("expected correct answer worth 10, got %+v", result)
	}
	if record.TotalPoints != 10 || record.CurrentStreak != 1 || record.LastPlayedDate != today {
		t.Fatalf("unexpected progress %+v", record)
	}

	// A fresh service over the same Redis must see the persisted record.
	reloaded := app.NewProgressService(infraredis.NewProgressStore(redisClient)).Load(ctx, "device-1")
	if reloaded != record {
		t.Fatalf("persisted record mismatch: got %+v, want %+v", reloaded, record)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestion(t *testing.T, ctx context.Context, dsn string, question domain.Question) {
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

	data, err := json.Marshal(question)
	if err != nil {
		t.Fatalf("marshal question: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO daily_questions (quiz_date, data) VALUES (?, ?::jsonb) ON CONFLICT (quiz_date) DO UPDATE SET data=EXCLUDED.data`, question.Date, string(data)); err != nil {
		t.Fatalf("insert question: %v", err)
	}
}

func sampleQuestion(date string) domain.Question {
	return domain.Question{
		ID:     "q1",
		Date:   date,
		Prompt: "What is 2 + 2?",
		Options: []domain.Option{
			{ID: "o1", Text: "3", Correct: false},
			{ID: "o2", Text: "4", Correct: true},
			{ID: "o3", Text: "5", Correct: false},
		},
		Points: 10,
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
