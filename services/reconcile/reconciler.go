// Package reconcile decides, after a mutation on one list item, whether the local list can be
// patched with the server's response or must be refetched.
package reconcile

import (
	"context"
	"fmt"
)

// Outcome records which path a reconciliation took.
type Outcome int

const (
	Patched Outcome = iota + 1
	Refetched
)

func (o Outcome) String() string {
	switch o {
	case Patched:
		return "patched"
	case Refetched:
		return "refetched"
	}
	return "unknown"
}

// Reconciler keeps a list of T consistent with the server after single-item mutations.
type Reconciler[T any] struct {
	// Key returns the identity of an item.
	Key func(T) int
	// Fetch loads the authoritative list.
	Fetch func(ctx context.Context) ([]T, error)
}

// Apply reconciles list after the item with the given id was mutated. resp is the server's
// representation (nil when the response carried none). The patch is applied only when resp has
// the mutated id, confirm accepts it and the item is present in list; every other case refetches.
// The returned slice is a new list; list itself is not modified.
func (r Reconciler[T]) Apply(ctx context.Context, list []T, id int, resp *T, confirm func(T) bool) ([]T, Outcome, error) {
	if resp != nil && r.Key(*resp) == id && (confirm == nil || confirm(*resp)) {
		for i := range list {
			if r.Key(list[i]) != id {
				continue
			}
			out := append([]T(nil), list...)
			out[i] = *resp
			return out, Patched, nil
		}
	}

	fresh, err := r.Fetch(ctx)
	if err != nil {
		return list, Refetched, fmt.Errorf("failed to refetch list: %w", err)
	}
	return fresh, Refetched, nil
}
