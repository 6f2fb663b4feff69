package pagination

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/logging"
)

// Config wires a Paginator to a concrete data source.
// OnRequest and NextKey are required; the remaining callbacks may be nil.
type Config[K any, T any] struct {
	// Name labels logs and metrics (e.g. "flight_search")
	Name string

	// InitialKey is the key used for the first request and after Reset
	InitialKey K

	// OnLoadUpdated is told when a request starts (true) and ends (false)
	OnLoadUpdated func(loading bool)

	// OnRequest fetches the page identified by key
	OnRequest func(ctx context.Context, key K) ([]T, error)

	// NextKey derives the following key from the items just fetched
	NextKey func(items []T) K

	// OnError receives request failures. Cancellation is not reported here.
	OnError func(err error)

	// OnSuccess receives the fetched items and the key of the next page
	OnSuccess func(items []T, nextKey K)
}

// ErrInvalidConfig is returned by New when a required callback is missing.
var ErrInvalidConfig = errors.New("pagination: OnRequest and NextKey are required")

// Paginator loads successive pages with at most one request in flight.
// It is safe for concurrent use.
type Paginator[K any, T any] struct {
	cfg    Config[K, T]
	logger zerolog.Logger

	mu       sync.Mutex
	key      K
	inFlight bool
}

// New creates a Paginator positioned at cfg.InitialKey.
func New[K any, T any](cfg Config[K, T]) (*Paginator[K, T], error) {
	if cfg.OnRequest == nil || cfg.NextKey == nil {
		return nil, ErrInvalidConfig
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &Paginator[K, T]{
		cfg:    cfg,
		logger: logging.NewLogger(logging.ComponentPaginator).With().Str("paginator", cfg.Name).Logger(),
		key:    cfg.InitialKey,
	}, nil
}

// LoadNextItems requests the page at the current key.
//
// If a request is already running the call returns nil immediately without
// invoking any callback. Otherwise OnLoadUpdated(true) fires, the request
// runs, and OnLoadUpdated(false) fires after either OnError or OnSuccess.
// The key only advances after a successful request, to NextKey(items).
//
// If ctx is cancelled during the request, the context error is returned and
// OnError is not called.
func (p *Paginator[K, T]) LoadNextItems(ctx context.Context) error {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		PaginatorDeduplicated.WithLabelValues(p.cfg.Name).Inc()
		return nil
	}
	p.inFlight = true
	key := p.key
	p.mu.Unlock()

	p.notifyLoading(true)

	start := time.Now()
	items, err := p.cfg.OnRequest(ctx, key)

	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			PaginatorRequests.WithLabelValues(p.cfg.Name, "cancelled").Inc()
			p.notifyLoading(false)
			return err
		}

		PaginatorRequests.WithLabelValues(p.cfg.Name, "error").Inc()
		p.logger.Warn().
			Err(err).
			Interface("key", key).
			Msg("Page request failed")

		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
		p.notifyLoading(false)
		return nil
	}

	next := p.cfg.NextKey(items)

	p.mu.Lock()
	p.key = next
	p.mu.Unlock()

	PaginatorRequests.WithLabelValues(p.cfg.Name, "success").Inc()
	p.logger.Debug().
		Interface("key", key).
		Interface("next_key", next).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Page loaded")

	if p.cfg.OnSuccess != nil {
		p.cfg.OnSuccess(items, next)
	}
	p.notifyLoading(false)
	return nil
}

// Reset moves the key back to InitialKey. A request already in flight is
// left alone and will still advance the key when it completes.
func (p *Paginator[K, T]) Reset() {
	p.mu.Lock()
	p.key = p.cfg.InitialKey
	p.mu.Unlock()
}

// Seek moves the key to key, for callers that fetched pages outside the
// paginator. Like Reset it leaves a request in flight alone.
func (p *Paginator[K, T]) Seek(key K) {
	p.mu.Lock()
	p.key = key
	p.mu.Unlock()
}

// CurrentKey returns the key the next request will use.
func (p *Paginator[K, T]) CurrentKey() K {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Loading reports whether a request is in flight.
func (p *Paginator[K, T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

func (p *Paginator[K, T]) notifyLoading(loading bool) {
	if p.cfg.OnLoadUpdated != nil {
		p.cfg.OnLoadUpdated(loading)
	}
}
