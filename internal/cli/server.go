package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
	pgloader "daily-quiz-service/internal/infra/postgres"
	redisinfra "daily-quiz-service/internal/infra/redis"
	transport "daily-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daily quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Question.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var progressRepo app.ProgressRepository
	if redisClient != nil {
		progressRepo = redisinfra.NewProgressStore(redisClient)
	} else {
		progressRepo = memory.NewProgressStore()
	}

	progress := app.NewProgressService(progressRepo)
	quiz := app.NewDailyQuizService(questionRepo, progress)
	countdown := app.NewCountdownClock()
	wsHandler := transport.NewWSHandler(quiz, progress, countdown)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting daily quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds today's question for demo runs without Postgres.
func sampleQuestions() map[string]domain.Question {
	today := domain.DateOf(time.Now())
	return map[string]domain.Question{
		today: {
			ID:     "q-" + today,
			Date:   today,
			Prompt: "Which planet is known as the Red Planet?",
			Options: []domain.Option{
				{ID: "o1", Text: "Venus", Correct: false},
				{ID: "o2", Text: "Mars", Correct: true},
				{ID: "o3", Text: "Jupiter", Correct: false},
			},
			Points: 10,
		},
	}
}
