package enrichment

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Recommendation is the settled value for a field group.
type Recommendation struct {
	Text       string
	Generation uint64
	Failed     bool
	Key        RecommendationKey
}

type pendingGen struct {
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (p *pendingGen) release() {
	p.once.Do(func() { close(p.done) })
}

// RecommendationTracker runs recommendation requests per field group (typically one pet form)
// and keeps only the result of the latest request. Issuing a new request cancels the one it
// supersedes; a response that arrives for an older generation is dropped.
type RecommendationTracker struct {
	rec    Recommender
	seq    *Sequencer
	scope  *Scope
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	current  map[string]Recommendation
	inflight map[string]*pendingGen
	onUpdate func(group string, r Recommendation)
}

func NewRecommendationTracker(parent context.Context, rec Recommender, logger *zap.Logger) *RecommendationTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationTracker{
		rec:      rec,
		seq:      NewSequencer(),
		scope:    NewScope(parent),
		logger:   logger.Named("recommendation"),
		current:  make(map[string]Recommendation),
		inflight: make(map[string]*pendingGen),
	}
}

// OnUpdate registers fn to be called after a generation settles. fn runs on the worker goroutine.
func (t *RecommendationTracker) OnUpdate(fn func(group string, r Recommendation)) {
	t.mu.Lock()
	t.onUpdate = fn
	t.mu.Unlock()
}

// Request starts a recommendation for key and returns its generation. It returns 0 once the
// tracker is closed.
func (t *RecommendationTracker) Request(group string, key RecommendationKey) uint64 {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}
	gen := t.seq.Next(group)
	if prev := t.inflight[group]; prev != nil {
		prev.cancel()
		prev.release()
	}
	ctx, cancel := context.WithCancel(t.scope.Context())
	p := &pendingGen{gen: gen, cancel: cancel, done: make(chan struct{})}
	t.inflight[group] = p
	t.mu.Unlock()

	started := t.scope.Go(func(context.Context) {
		defer cancel()
		text, err := t.rec.Recommend(ctx, key)
		t.settle(group, p, key, text, err)
	})
	if !started {
		cancel()
		p.release()
	}
	return gen
}

func (t *RecommendationTracker) settle(group string, p *pendingGen, key RecommendationKey, text string, err error) {
	defer p.release()

	t.mu.Lock()
	if t.closed || t.inflight[group] != p || !t.seq.IsCurrent(group, p.gen) {
		t.mu.Unlock()
		t.logger.Debug("discarding superseded recommendation", zap.String("group", group), zap.Uint64("generation", p.gen))
		return
	}
	r := Recommendation{Text: text, Generation: p.gen, Key: key}
	if err != nil {
		r.Text = NoRecommendation
		r.Failed = true
		if !errors.Is(err, context.Canceled) {
			t.logger.Warn("recommendation failed", zap.String("group", group), zap.Error(&Failure{Kind: KindRecommendation, Key: group, Err: err}))
		}
	}
	t.current[group] = r
	delete(t.inflight, group)
	fn := t.onUpdate
	t.mu.Unlock()

	if fn != nil {
		fn(group, r)
	}
}

// Current returns the latest settled recommendation for group.
func (t *RecommendationTracker) Current(group string) (Recommendation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.current[group]
	return r, ok
}

// Await blocks until the latest generation for group has settled and returns it.
func (t *RecommendationTracker) Await(ctx context.Context, group string) (Recommendation, bool, error) {
	for {
		t.mu.Lock()
		p := t.inflight[group]
		if p == nil || t.closed {
			r, ok := t.current[group]
			t.mu.Unlock()
			return r, ok, nil
		}
		t.mu.Unlock()

		select {
		case <-p.done:
		case <-ctx.Done():
			return Recommendation{}, false, ctx.Err()
		}
	}
}

// Close cancels in-flight requests and waits for them. No result is recorded afterwards.
func (t *RecommendationTracker) Close() {
	t.mu.Lock()
	t.closed = true
	pending := make([]*pendingGen, 0, len(t.inflight))
	for _, p := range t.inflight {
		p.cancel()
		pending = append(pending, p)
	}
	t.mu.Unlock()

	t.scope.Close()
	for _, p := range pending {
		p.release()
	}
}
