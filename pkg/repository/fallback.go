package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// CacheFallback is the read path shared by every domain.
//
// R is the remote representation, E the stored entity and T the model
// returned to callers.
type CacheFallback[R any, E store.Entity, T any] struct {
	// Name labels logs and metrics
	Name string

	// Remote fetches the current data from the booking API
	Remote func(ctx context.Context) ([]R, error)

	// Local is the snapshot replaced on every non-empty remote response
	Local store.Collection[E]

	// ToEntity maps a remote item to its stored form
	ToEntity func(R) E

	// ToModel maps a stored entity to the returned model
	ToModel func(E) T

	Logger zerolog.Logger
}

// Fetch returns fresh data when the remote has some, the stored snapshot
// when the remote answers empty, and an empty slice on any failure.
// The error is non-nil only when ctx was cancelled.
func (c *CacheFallback[R, E, T]) Fetch(ctx context.Context) (result.Result[[]T], error) {
	var source string
	r, err := result.Catching(ctx, func(ctx context.Context) ([]T, error) {
		items, src, err := c.fetch(ctx)
		source = src
		return items, err
	})
	if err != nil {
		repositoryFetchesTotal.WithLabelValues(c.Name, sourceCancelled).Inc()
		c.Logger.Debug().Err(err).Str("repository", c.Name).Msg("Fetch cancelled")
		return r, err
	}

	if !r.IsOk() {
		repositoryFetchesTotal.WithLabelValues(c.Name, sourceDefault).Inc()
		repositoryFallbacksTotal.WithLabelValues(c.Name, reasonError).Inc()
		c.Logger.Warn().
			Err(r.Err()).
			Str("repository", c.Name).
			Msg("Fetch failed, returning empty result")
		return result.Ok([]T{}), nil
	}

	repositoryFetchesTotal.WithLabelValues(c.Name, source).Inc()
	if source == sourceLocal {
		repositoryFallbacksTotal.WithLabelValues(c.Name, reasonEmptyRemote).Inc()
		c.Logger.Debug().
			Str("repository", c.Name).
			Int("count", len(r.Value())).
			Msg("Remote returned no data, served local snapshot")
	}
	return r, nil
}

func (c *CacheFallback[R, E, T]) fetch(ctx context.Context) ([]T, string, error) {
	remote, err := c.Remote(ctx)
	if err != nil {
		return nil, sourceRemote, fmt.Errorf("remote %s: %w", c.Name, err)
	}

	if len(remote) == 0 {
		items, err := c.readLocal(ctx)
		return items, sourceLocal, err
	}

	entities := make([]E, 0, len(remote))
	for _, item := range remote {
		entities = append(entities, c.ToEntity(item))
	}

	if err := c.Local.Replace(ctx, entities); err != nil {
		return nil, sourceRemote, fmt.Errorf("replace local %s: %w", c.Name, err)
	}

	c.Logger.Debug().
		Str("repository", c.Name).
		Int("count", len(entities)).
		Msg("Replaced local snapshot")

	items, err := c.readLocal(ctx)
	return items, sourceRemote, err
}

func (c *CacheFallback[R, E, T]) readLocal(ctx context.Context) ([]T, error) {
	entities, err := c.Local.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local %s: %w", c.Name, err)
	}

	items := make([]T, 0, len(entities))
	for _, e := range entities {
		items = append(items, c.ToModel(e))
	}
	return items, nil
}
