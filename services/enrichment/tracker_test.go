package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRecommender blocks each request until its gate for the key's age is opened.
type gatedRecommender struct {
	mu    sync.Mutex
	gates map[int]chan struct{}
	fail  map[int]bool
}

func newGatedRecommender() *gatedRecommender {
	return &gatedRecommender{gates: map[int]chan struct{}{}, fail: map[int]bool{}}
}

func (g *gatedRecommender) gate(age int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[age]
	if !ok {
		ch = make(chan struct{})
		g.gates[age] = ch
	}
	return ch
}

func (g *gatedRecommender) Recommend(ctx context.Context, key RecommendationKey) (string, error) {
	<-g.gate(key.Age)
	g.mu.Lock()
	fail := g.fail[key.Age]
	g.mu.Unlock()
	if fail {
		return "", errors.New("provider down")
	}
	return fmt.Sprintf("advice for age %d", key.Age), nil
}

// ignoresCancel ensures a superseded response still arrives so the discard path is exercised.
type ignoresCancel struct{ *gatedRecommender }

func (i ignoresCancel) Recommend(_ context.Context, key RecommendationKey) (string, error) {
	return i.gatedRecommender.Recommend(context.Background(), key)
}

func TestTracker_LatestEditWinsWhenOlderFinishesLast(t *testing.T) {
	rec := newGatedRecommender()
	tr := NewRecommendationTracker(context.Background(), ignoresCancel{rec}, nil)
	defer tr.Close()

	e1 := tr.Request("pet", RecommendationKey{Age: 1, BreedID: 2})
	e2 := tr.Request("pet", RecommendationKey{Age: 5, BreedID: 2})
	require.Greater(t, e2, e1)

	close(rec.gate(5))
	r, ok, err := tr.Await(context.Background(), "pet")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "advice for age 5", r.Text)
	assert.Equal(t, e2, r.Generation)

	close(rec.gate(1))
	time.Sleep(20 * time.Millisecond)
	r, _ = tr.Current("pet")
	assert.Equal(t, "advice for age 5", r.Text)
}

func TestTracker_LatestEditWinsWhenOlderFinishesFirst(t *testing.T) {
	rec := newGatedRecommender()
	tr := NewRecommendationTracker(context.Background(), ignoresCancel{rec}, nil)
	defer tr.Close()

	tr.Request("pet", RecommendationKey{Age: 1, BreedID: 2})
	tr.Request("pet", RecommendationKey{Age: 5, BreedID: 2})

	close(rec.gate(1))
	time.Sleep(20 * time.Millisecond)
	_, ok := tr.Current("pet")
	assert.False(t, ok)

	close(rec.gate(5))
	r, ok, err := tr.Await(context.Background(), "pet")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "advice for age 5", r.Text)
}

func TestTracker_FailureStoresSentinel(t *testing.T) {
	rec := newGatedRecommender()
	rec.fail[3] = true
	close(rec.gate(3))
	tr := NewRecommendationTracker(context.Background(), rec, nil)
	defer tr.Close()

	var updates []Recommendation
	var mu sync.Mutex
	tr.OnUpdate(func(_ string, r Recommendation) {
		mu.Lock()
		updates = append(updates, r)
		mu.Unlock()
	})

	tr.Request("pet", RecommendationKey{Age: 3, BreedID: 1})
	r, ok, err := tr.Await(context.Background(), "pet")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, r.Failed)
	assert.Equal(t, NoRecommendation, r.Text)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTracker_GroupsAreIndependent(t *testing.T) {
	rec := newGatedRecommender()
	close(rec.gate(1))
	close(rec.gate(2))
	tr := NewRecommendationTracker(context.Background(), rec, nil)
	defer tr.Close()

	tr.Request("pet-1", RecommendationKey{Age: 1, BreedID: 1})
	tr.Request("pet-2", RecommendationKey{Age: 2, BreedID: 1})

	a, _, _ := tr.Await(context.Background(), "pet-1")
	b, _, _ := tr.Await(context.Background(), "pet-2")
	assert.Equal(t, "advice for age 1", a.Text)
	assert.Equal(t, "advice for age 2", b.Text)
}

func TestTracker_CloseDiscardsInFlight(t *testing.T) {
	rec := newGatedRecommender()
	tr := NewRecommendationTracker(context.Background(), rec, nil)

	tr.Request("pet", RecommendationKey{Age: 9, BreedID: 1})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(rec.gate(9))
	}()
	tr.Close()

	_, ok := tr.Current("pet")
	assert.False(t, ok)
	assert.Zero(t, tr.Request("pet", RecommendationKey{Age: 9}))
}

func TestSequencer(t *testing.T) {
	s := NewSequencer()
	assert.Equal(t, uint64(1), s.Next("a"))
	assert.Equal(t, uint64(2), s.Next("a"))
	assert.Equal(t, uint64(1), s.Next("b"))
	assert.True(t, s.IsCurrent("a", 2))
	assert.False(t, s.IsCurrent("a", 1))
	assert.False(t, s.IsCurrent("c", 0))
}

type stubSource struct {
	text string
	err  error
}

func (s stubSource) GetRecommendation(context.Context, int, int) (string, error) { return s.text, s.err }

type stubGenerator struct{ prompt string }

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return "  Annual booster.  ", nil
}

func TestRecommenders(t *testing.T) {
	ctx := context.Background()

	text, err := NewAPIRecommender(stubSource{text: "Walk daily"}).Recommend(ctx, RecommendationKey{Age: 2, BreedID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Walk daily", text)

	_, err = NewAPIRecommender(stubSource{text: " "}).Recommend(ctx, RecommendationKey{Age: 2, BreedID: 1})
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = NewAPIRecommender(stubSource{}).Recommend(ctx, RecommendationKey{Age: 2})
	assert.ErrorIs(t, err, ErrEmptyInput)

	gen := &stubGenerator{}
	text, err = NewGeminiRecommender(gen).Recommend(ctx, RecommendationKey{Age: 4, BreedName: "Beagle"})
	require.NoError(t, err)
	assert.Equal(t, "Annual booster.", text)
	assert.Contains(t, gen.prompt, "4 year old Beagle")
}

func TestScope_CloseCancelsAndWaits(t *testing.T) {
	s := NewScope(context.Background())
	stopped := make(chan struct{})
	require.True(t, s.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	}))
	s.Close()
	select {
	case <-stopped:
	default:
		t.Fatal("Close returned before work stopped")
	}
	assert.False(t, s.Go(func(context.Context) {}))
	s.Close()
}
