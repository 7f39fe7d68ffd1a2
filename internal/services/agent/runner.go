package agent

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/NordCoder/Careline/internal/config/agent"
	"github.com/NordCoder/Careline/internal/domain/schedule"
)

// Runner drives the agent: one logical timer, one tick at a time. A tick
// fully completes, send attempt included, before the next evaluation, so
// overlapping evaluations can never double-send.
type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *config.SchedCfg

	mTicks   prometheus.Counter
	mSent    prometheus.Counter
	mSkipped prometheus.Counter
	mErr     prometheus.Counter
	mTickDur prometheus.Histogram
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SchedCfg) *Runner {
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_ticks_total", Help: "Evaluation cycles run",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_notifications_sent_total", Help: "Notifications dispatched",
		}),
		mSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_sends_skipped_total", Help: "Due sends suppressed (notifications disabled)",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_errors_total", Help: "Errors in agent loop",
		}),
		mTickDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "agent_tick_duration_seconds", Help: "Agent tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	r.mTicks.Inc()

	res, err := r.UC.Tick(ctx)
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("tick error", zap.String("decision", res.Decision.String()), zap.Error(err))
	}
	if res.Sent {
		r.mSent.Inc()
	}
	if res.Skipped {
		r.mSkipped.Inc()
	}
	if res.Decision != schedule.Idle {
		r.Log.Debug("tick done",
			zap.String("decision", res.Decision.String()),
			zap.Bool("sent", res.Sent),
			zap.Bool("skipped", res.Skipped),
		)
	}
	r.mTickDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
