package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/pkg/config"
	"github.com/zeenat-khan28/sports-dbms/pkg/jobs"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
)

// NotificationService dispatches outbound email on a background worker queue.
// Enqueueing is fire-and-forget: a failed or dropped delivery never affects
// the workflow state that triggered it.
type NotificationService struct {
	queue       *jobs.Queue[mailer.Message]
	sendTimeout time.Duration
	enabled     bool
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewNotificationService constructs the notification service and its queue.
// Call Start before enqueueing and Stop on shutdown.
func NewNotificationService(sender mailer.Sender, cfg config.NotifyConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		sendTimeout: cfg.SendTimeout,
		enabled:     cfg.Enabled,
		logger:      logger,
	}
	s.queue = jobs.NewQueue[mailer.Message]("notifications", s.deliver(sender), jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// WithMetrics attaches queue instrumentation.
func (s *NotificationService) WithMetrics(metrics *MetricsService) *NotificationService {
	s.metrics = metrics
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// Notify queues a message for delivery. Failures are logged and dropped.
func (s *NotificationService) Notify(msg mailer.Message) {
	if !s.enabled {
		return
	}
	err := s.queue.Enqueue(jobs.Job[mailer.Message]{ID: uuid.NewString(), Payload: msg})
	if err != nil {
		s.logger.Warn("failed to queue notification",
			zap.String("to", msg.To), zap.Error(err))
		return
	}
	s.metrics.RecordMailQueued()
}

func (s *NotificationService) deliver(sender mailer.Sender) jobs.Handler[mailer.Message] {
	return func(ctx context.Context, job jobs.Job[mailer.Message]) error {
		done := make(chan error, 1)
		go func() { done <- sender.Send(job.Payload) }()

		timeout := s.sendTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return context.DeadlineExceeded
		case err := <-done:
			return err
		}
	}
}
