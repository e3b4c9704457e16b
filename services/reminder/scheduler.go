package reminder

import (
	"context"
	"errors"
	"fmt"

	"vetclinic/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt builds the asynq connection from configuration.
func RedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisReminderDB,
	}
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Scheduler enqueues reminders.
type Scheduler struct {
	client enqueuer
	logger *zap.Logger
}

func NewScheduler(opt asynq.RedisClientOpt, logger *zap.Logger) *Scheduler {
	return newScheduler(asynq.NewClient(opt), logger)
}

func newScheduler(c enqueuer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{client: c, logger: logger.Named("reminder")}
}

// ScheduleRevaccination enqueues a reminder for payload.DueAt and returns the task id.
// Scheduling the same vaccination twice is not an error.
func (s *Scheduler) ScheduleRevaccination(ctx context.Context, payload RevaccinationPayload) (string, error) {
	task, opts, err := NewRevaccinationTask(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build reminder task: %w", err)
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Debug("reminder already scheduled", zap.Int("vaccination_id", payload.VaccinationID))
		return taskID(payload), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	s.logger.Info("revaccination reminder scheduled",
		zap.String("task_id", info.ID),
		zap.Int("pet_id", payload.PetID),
		zap.Time("due_at", payload.DueAt))
	return info.ID, nil
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}
