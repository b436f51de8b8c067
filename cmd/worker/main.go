package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/passdesk/passdesk/internal/artifact"
	"github.com/passdesk/passdesk/internal/config"
	"github.com/passdesk/passdesk/internal/notify"
	"github.com/passdesk/passdesk/internal/queue"
	"github.com/passdesk/passdesk/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	storage := artifact.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	qrWorker := workers.NewQRWorker(storage)
	emailWorker := workers.NewEmailWorker(notify.NewSMTPMailer(cfg.SMTP))

	registry.Register(queue.TypeRenderQR, asynq.HandlerFunc(qrWorker.ProcessTask))
	registry.Register(queue.TypeSendEmail, asynq.HandlerFunc(emailWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
