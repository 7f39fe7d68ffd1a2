package ingest

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	kafkax "github.com/NordCoder/Careline/internal/repository/kafka"
)

// Controller pumps CheckinSubmitted events from Kafka into the handler.
type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler

	mConsumed prometheus.Counter
	mBad      prometheus.Counter
	mErrors   prometheus.Counter
}

func NewController(log *zap.Logger, sub *kafkax.Consumer, uc *Handler) *Controller {
	return &Controller{
		Log: log,
		Sub: sub,
		UC:  uc,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "checkin_ingest_events_consumed_total",
			Help: "CheckinSubmitted events consumed",
		}),
		mBad: promauto.NewCounter(prometheus.CounterOpts{
			Name: "checkin_ingest_events_malformed_total",
			Help: "Events dropped as undecodable",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "checkin_ingest_errors_total",
			Help: "Handler errors",
		}),
	}
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(err error) {
			c.mBad.Inc()
			c.Log.Warn("malformed checkin event", zap.Error(err))
		},
		func(ctx context.Context, _ []byte, ev *kafkax.CheckinSubmitted) error {
			c.mConsumed.Inc()
			err := c.UC.HandleSubmission(ctx, Submission{
				Timestamp:    ev.Timestamp,
				Mood:         ev.Mood,
				ResponseText: ev.ResponseText,
				Analysis:     ev.Analysis,
			})
			if err != nil {
				c.mErrors.Inc()
			}
			return err
		},
	)

	if err := c.Sub.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		c.Log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}
