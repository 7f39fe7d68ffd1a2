package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Careline/internal/compose"
	config "github.com/NordCoder/Careline/internal/config/checkin-ingest"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/llm"
	"github.com/NordCoder/Careline/internal/mailer"
	"github.com/NordCoder/Careline/internal/obs"
	"github.com/NordCoder/Careline/internal/repository/kafka"
	pg "github.com/NordCoder/Careline/internal/repository/postgres"
	ingest "github.com/NordCoder/Careline/internal/services/checkin-ingest"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/checkin-ingest.yaml"
}

func wiring(db *pg.DB, cfg *config.Config, l *zap.Logger) *ingest.Handler {
	var out notification.Sender
	if err := cfg.SMTP.Validate(); err != nil {
		l.Error("mail config invalid; welcome-back mail disabled", zap.Error(err))
	} else if cfg.SMTP.Enabled {
		out = mailer.New(cfg.SMTP).WithLogger(l)
	}

	gen, err := llm.NewClient(cfg.LLM)
	if err != nil {
		l.Error("llm config invalid; text generation disabled", zap.Error(err))
		gen = nil
	}

	return &ingest.Handler{
		Store:            pg.NewCheckinRepo(db),
		Tx:               pg.NewTransactor(db, l),
		Notifs:           pg.NewNotificationRepo(db),
		Composer:         &compose.Composer{WebAppURL: cfg.WebAppURL, Gen: gen, Log: l},
		Out:              out,
		Clock:            systemClock{},
		WelcomeBackAfter: cfg.Ingest.WelcomeBackAfter,
		Window:           cfg.Ingest.MemoryWindow,
		Log:              l,
	}
}

func main() {
	// init
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting checkin-ingest",
		zap.Any("kafka_in", cfg.In),
		zap.Duration("welcome_back_after", cfg.Ingest.WelcomeBackAfter),
		zap.String("metrics_addr", cfg.Ingest.MetricsAddr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Ingest.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	// kafka
	cons := kafka.BootstrapConsumer(rootCtx, &kafka.ConsumerConfig{
		Brokers: cfg.In.Brokers,
		GroupID: cfg.In.GroupID,
		Topic:   cfg.In.Topic,
	}, l).WithLogger(l)
	defer func() { _ = cons.Close() }()

	// start
	ctrl := ingest.NewController(l, cons, wiring(db, cfg, l))
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("controller error", zap.Error(runErr))
		}
	}

	// graceful metrics server shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
