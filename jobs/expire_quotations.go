package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/skyfalke/backoffice/internal/jobs"
	"github.com/skyfalke/backoffice/internal/quotations"
)

// ExpireQuotationsJob moves sent quotations past their expiry date to the
// expired state.
type ExpireQuotationsJob struct {
	Quotations *quotations.Service
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewExpireQuotationsJob wires dependencies for the expiry sweep handler.
func NewExpireQuotationsJob(svc *quotations.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpireQuotationsJob {
	return &ExpireQuotationsJob{
		Quotations: svc,
		Logger:     logger,
		Metrics:    metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes quotations:expire tasks.
func (j *ExpireQuotationsJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Quotations == nil {
		return errors.New("expire quotations: handler not configured")
	}

	tracker := j.metrics().Track(TaskTypeExpireQuotations)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	asOf := j.now().Truncate(24 * time.Hour)
	expired, err := j.Quotations.ExpireDue(ctx, asOf)
	if err != nil {
		resultErr = err
		j.logger().Error("expiry sweep", slog.Any("error", err), slog.Int("expired", expired))
		return resultErr
	}

	j.metrics().AddQuotationsExpired(expired)
	j.logger().Info("expiry sweep completed", slog.Int("expired", expired))
	return resultErr
}

func (j *ExpireQuotationsJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeExpireQuotations))
	}
	return slog.Default().With(slog.String("job", TaskTypeExpireQuotations))
}

func (j *ExpireQuotationsJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ExpireQuotationsJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
