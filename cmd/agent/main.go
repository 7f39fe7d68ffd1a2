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
	config "github.com/NordCoder/Careline/internal/config/agent"
	"github.com/NordCoder/Careline/internal/domain/notification"
	"github.com/NordCoder/Careline/internal/llm"
	"github.com/NordCoder/Careline/internal/mailer"
	"github.com/NordCoder/Careline/internal/obs"
	kafkaRepo "github.com/NordCoder/Careline/internal/repository/kafka"
	pg "github.com/NordCoder/Careline/internal/repository/postgres"
	"github.com/NordCoder/Careline/internal/services/agent"
	"github.com/NordCoder/Careline/internal/services/agent/repo"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/agent.yaml"
}

func main() {
	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
	l.Info("starting agent",
		zap.Duration("tick", cfg.Sched.Tick),
		zap.Duration("periodic_interval", cfg.Sched.PeriodicInterval),
		zap.Duration("inactivity_threshold", cfg.Sched.InactivityThreshold),
		zap.Bool("smtp_enabled", cfg.SMTP.Enabled),
		zap.String("metrics_addr", cfg.Sched.MetricsAddr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db: the primary persisted state; unreadable here is fatal before
	// any loop iteration begins.
	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// notifier: a broken mail config disables mail, not the loop.
	var out notification.Sender
	if err := cfg.SMTP.Validate(); err != nil {
		l.Error("mail config invalid; notifications disabled", zap.Error(err))
	} else if cfg.SMTP.Enabled {
		out = mailer.New(cfg.SMTP).WithLogger(l)
	} else {
		l.Warn("notifications are disabled; due sends will be skipped")
	}

	// text generation (optional)
	gen, err := llm.NewClient(cfg.LLM)
	if err != nil {
		l.Error("llm config invalid; text generation disabled", zap.Error(err))
		gen = nil
	}

	// kafka egress (optional)
	var events notification.Events
	if cfg.Kafka.Enabled {
		prod := kafkaRepo.BootstrapProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, l)
		defer func() { _ = prod.Close() }()
		events = kafkaRepo.NewNotificationEventsKafka(prod)
	}

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Sched.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	// wiring
	checkins := pg.NewCheckinRepo(db)
	uc := &agent.Usecase{
		Checkins: repo.CheckinReader{R: checkins},
		Schedule: repo.ScheduleStore{R: pg.NewScheduleRepo(db)},
		Notifs:   repo.NotificationLog{R: pg.NewNotificationRepo(db)},
		Composer: &compose.Composer{WebAppURL: cfg.WebAppURL, Gen: gen, Log: l},
		Out:      out,
		Events:   events,
		Clock:    systemClock{},
		Policy: agent.Policy{
			PeriodicInterval:    cfg.Sched.PeriodicInterval,
			InactivityThreshold: cfg.Sched.InactivityThreshold,
		},
		Window: cfg.Sched.MemoryWindow,
		Log:    l,
	}
	// The schedule state and the last-checkin marker must be readable
	// before the first tick; failing here beats looping on warnings
	// against a missing or unmigrated schema.
	pfCtx, pfCancel := context.WithTimeout(ctx, 5*time.Second)
	err = uc.Preflight(pfCtx)
	pfCancel()
	if err != nil {
		l.Fatal("persisted state unreadable", zap.Error(err))
	}

	runner := agent.New(l, uc, &cfg.Sched)

	// run
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("agent started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
