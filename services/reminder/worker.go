package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"vetclinic/services/events"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker processes due reminders and announces them as vaccination.due events.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(opt asynq.RedisClientOpt, publisher events.Publisher, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("reminder-worker")
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRevaccination, HandleRevaccination(publisher, logger))
	return &Worker{srv: srv, mux: mux, logger: logger}
}

// Run blocks until ctx is done. Startup is retried with a linear backoff.
func (w *Worker) Run(ctx context.Context) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.srv.Start(w.mux); err == nil {
			break
		}
		w.logger.Warn("failed to start worker", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*2) * time.Second):
		}
	}
	if err != nil {
		return fmt.Errorf("reminder worker did not start: %w", err)
	}
	w.logger.Info("reminder worker started")
	<-ctx.Done()
	w.srv.Shutdown()
	return nil
}

func HandleRevaccination(publisher events.Publisher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p RevaccinationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}

		logger.Info("revaccination due",
			zap.Int("pet_id", p.PetID),
			zap.String("vaccine", p.VaccineName),
			zap.Time("due_at", p.DueAt))

		e := events.New(events.VaccinationDue, strconv.Itoa(p.PetID), p)
		if err := publisher.Publish(ctx, e); err != nil {
			logger.Error("failed to publish reminder", zap.Error(err))
			return err
		}
		return nil
	}
}
