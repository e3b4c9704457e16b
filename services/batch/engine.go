// Package batch submits N independent child creations as one logical user action against a
// backend that has no transaction spanning them.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("vetclinic/batch")

// Policy decides what happens to already created records when some creations fail.
type Policy int

const (
	// Keep leaves created records in place and reports them.
	Keep Policy = iota
	// Compensate deletes created records before reporting the failure.
	Compensate
)

func (p Policy) String() string {
	if p == Compensate {
		return "compensate"
	}
	return "keep"
}

// ParsePolicy maps the BATCH_ON_PARTIAL_FAILURE setting to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return Keep, nil
	case "compensate":
		return Compensate, nil
	}
	return Keep, fmt.Errorf("unknown partial failure policy %q", s)
}

type Config struct {
	// Workers bounds concurrent creations (default 4).
	Workers int
	Policy  Policy
	Logger  *zap.Logger
}

// Engine runs batches. It is safe for concurrent use.
type Engine struct {
	workers int
	policy  Policy
	logger  *zap.Logger
}

func New(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{workers: cfg.Workers, policy: cfg.Policy, logger: cfg.Logger.Named("batch")}
}

func (e *Engine) Policy() Policy { return e.policy }

// Result describes a batch in which every creation succeeded.
type Result[T any] struct {
	BatchID string
	Items   []T
	IDs     []int
}

// Job describes one batch. Undo is required for the Compensate policy.
type Job[T any] struct {
	N      int
	Create func(ctx context.Context, i int) (T, error)
	ID     func(T) int
	Undo   func(ctx context.Context, id int) error
}

// Run issues job.N creations with at most Workers in flight. Every item is attempted even after
// a failure, so the outcome is exact: either all N exist, or a *PartialBatchFailure names the ids
// that were created.
func Run[T any](ctx context.Context, e *Engine, job Job[T]) (Result[T], error) {
	if job.N < 1 {
		return Result[T]{}, fmt.Errorf("batch size must be at least 1 (got %d)", job.N)
	}
	batchID := uuid.NewString()
	log := e.logger.With(zap.String("batch_id", batchID), zap.Int("requested", job.N))

	ctx, span := tracer.Start(ctx, "batch.Run")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID), attribute.Int("batch.requested", job.N))

	items := make([]T, job.N)
	errs := make([]error, job.N)
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := 0; i < job.N; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			items[i], errs[i] = job.Create(ctx, i)
			return nil
		})
	}
	g.Wait()

	var (
		succeeded []int
		created   []T
		failures  []ItemError
	)
	for i := range items {
		if errs[i] != nil {
			failures = append(failures, ItemError{Index: i, Err: errs[i]})
			continue
		}
		created = append(created, items[i])
		succeeded = append(succeeded, job.ID(items[i]))
	}

	if len(failures) == 0 {
		log.Info("batch committed")
		return Result[T]{BatchID: batchID, Items: created, IDs: succeeded}, nil
	}

	pf := &PartialBatchFailure{
		BatchID:   batchID,
		Requested: job.N,
		Succeeded: succeeded,
		Failures:  failures,
		undo:      job.Undo,
	}
	span.SetStatus(codes.Error, "partial batch failure")
	span.SetAttributes(attribute.Int("batch.succeeded", len(succeeded)))
	log.Warn("batch partially failed",
		zap.Int("succeeded", len(succeeded)),
		zap.Int("failed", len(failures)),
		zap.String("policy", e.policy.String()))

	if e.policy == Compensate && len(succeeded) > 0 {
		if job.Undo == nil {
			pf.CompensationErr = fmt.Errorf("no undo operation configured")
		} else {
			pf.Compensated, pf.CompensationErr = compensate(context.WithoutCancel(ctx), e.workers, succeeded, job.Undo)
		}
		if pf.CompensationErr != nil {
			log.Error("batch compensation incomplete", zap.Ints("compensated", pf.Compensated), zap.Error(pf.CompensationErr))
		}
	}
	return Result[T]{BatchID: batchID, Items: created, IDs: succeeded}, pf
}

func compensate(ctx context.Context, workers int, ids []int, undo func(context.Context, int) error) ([]int, error) {
	var (
		mu   sync.Mutex
		done []int
		errs []string
	)
	var g errgroup.Group
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			err := undo(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("%d: %v", id, err))
				return nil
			}
			done = append(done, id)
			return nil
		})
	}
	g.Wait()
	sort.Ints(done)
	if len(errs) > 0 {
		sort.Strings(errs)
		return done, fmt.Errorf("failed to undo %d record(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return done, nil
}
