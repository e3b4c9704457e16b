package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Slot is a typed view of one named slot.
type Slot[T any] struct {
	name   string
	encode func(T) (string, error)
	decode func(string) (T, error)
}

// IntSlot stores an int as its decimal string ("42").
func IntSlot(name string) Slot[int] {
	return Slot[int]{
		name:   name,
		encode: func(v int) (string, error) { return strconv.Itoa(v), nil },
		decode: strconv.Atoi,
	}
}

// JSONSlot stores T as a JSON document.
func JSONSlot[T any](name string) Slot[T] {
	return Slot[T]{
		name: name,
		encode: func(v T) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		decode: func(s string) (T, error) {
			var v T
			err := json.Unmarshal([]byte(s), &v)
			return v, err
		},
	}
}

func (s Slot[T]) Name() string { return s.name }

// Put overwrites the slot.
func (s Slot[T]) Put(ctx context.Context, store Store, v T) error {
	raw, err := s.encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", s.name, err)
	}
	return store.Set(ctx, s.name, raw)
}

// Peek reads the slot without consuming it.
func (s Slot[T]) Peek(ctx context.Context, store Store) (T, bool, error) {
	var zero T
	raw, ok, err := store.Get(ctx, s.name)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := s.decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode slot %s: %w", s.name, err)
	}
	return v, true, nil
}

func (s Slot[T]) Clear(ctx context.Context, store Store) error {
	return store.Clear(ctx, s.name)
}

// Claim reads a present slot and returns a handle that can clear it exactly once.
func (s Slot[T]) Claim(ctx context.Context, store Store) (*Claim[T], error) {
	v, ok, err := s.Peek(ctx, store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.name, ErrSlotEmpty)
	}
	return &Claim[T]{slot: s, store: store, value: v}, nil
}

// Take claims and immediately consumes the slot.
func (s Slot[T]) Take(ctx context.Context, store Store) (T, error) {
	c, err := s.Claim(ctx, store)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Consume(ctx); err != nil {
		var zero T
		return zero, err
	}
	return c.Value(), nil
}

// Claim holds a value read from a slot. The backing slot is cleared by Consume, at most once.
type Claim[T any] struct {
	slot  Slot[T]
	store Store
	value T

	mu       sync.Mutex
	consumed bool
}

func (c *Claim[T]) Value() T { return c.value }

// Consume clears the backing slot. A second call returns ErrClaimConsumed.
func (c *Claim[T]) Consume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return fmt.Errorf("%s: %w", c.slot.name, ErrClaimConsumed)
	}
	if err := c.slot.Clear(ctx, c.store); err != nil {
		return err
	}
	c.consumed = true
	return nil
}

func (c *Claim[T]) Consumed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed
}
