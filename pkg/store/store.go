package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested entity is not in the store
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity indicates a stored entity could not be decoded
	ErrInvalidEntity = errors.New("invalid stored entity")
)

// Entity is anything a Collection can hold.
type Entity interface {
	StoreID() string
}

// Collection is a local snapshot of one kind of remote data.
//
// Replace is all-or-nothing: entries missing from the new set are removed.
// Implementations provide their own atomicity for Replace; callers serialize
// concurrent writers to the same collection.
type Collection[E Entity] interface {
	// All returns every entity in insertion order.
	All(ctx context.Context) ([]E, error)

	// Get returns the entity with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (E, error)

	// Replace clears the collection and inserts items.
	Replace(ctx context.Context, items []E) error

	// Upsert inserts or overwrites items by ID.
	Upsert(ctx context.Context, items ...E) error

	// Clear removes every entity.
	Clear(ctx context.Context) error
}

// dedupByID collapses entities sharing an ID. The last one wins and takes
// the position of the first.
func dedupByID[E Entity](items []E) []E {
	index := make(map[string]int, len(items))
	out := make([]E, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.StoreID()]; ok {
			out[i] = item
			continue
		}
		index[item.StoreID()] = len(out)
		out = append(out, item)
	}
	return out
}
