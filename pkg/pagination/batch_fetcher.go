package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BatchConfig holds batch fetcher configuration
type BatchConfig struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages caps how many pages are fetched (0 = no cap)
	MaxPages int
}

// DefaultBatchConfig returns a conservative configuration for the booking API
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		MaxPages:       50,
	}
}

// PageFetcher fetches a single page-numbered page.
// Pages start at 1; totalPages is reported by the remote source.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) (items []T, totalPages int, err error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, page int) ([]T, int, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, page int) ([]T, int, error) {
	return f(ctx, page)
}

type pageResult[T any] struct {
	page  int
	items []T
}

// BatchFetcher fetches every page of a listing using a worker pool
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  BatchConfig
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetcher PageFetcher[T], config BatchConfig) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches page 1 to learn the page count, then the remaining pages
// in parallel. Items are returned in page order. On a worker error the pages
// fetched so far are returned together with the error.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()

	firstItems, totalPages, err := bf.fetcher.FetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	if bf.config.MaxPages > 0 && totalPages > bf.config.MaxPages {
		log.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", bf.config.MaxPages).
			Msg("Page count capped")
		totalPages = bf.config.MaxPages
	}

	if totalPages <= 1 {
		BatchPagesFetched.Add(1)
		return firstItems, nil
	}

	log.Debug().
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	pages := make(map[int][]T, totalPages)
	pages[1] = firstItems

	pageQueue := make(chan int, totalPages)
	results := make(chan pageResult[T], totalPages)
	errs := make(chan error, bf.config.MaxConcurrency)

	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, results, errs, &wg, i)
	}

	go func() {
		wg.Wait()
		close(results)
		close(errs)
	}()

	for r := range results {
		pages[r.page] = r.items
	}

	out := flatten(pages)
	BatchPagesFetched.Add(float64(len(pages)))

	if err := <-errs; err != nil {
		log.Warn().
			Err(err).
			Int("fetched_pages", len(pages)).
			Int("total_pages", totalPages).
			Msg("Worker error - returning partial results")
		return out, fmt.Errorf("partial fetch (%d/%d pages): %w", len(pages), totalPages, err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	log.Debug().
		Int("pages", len(pages)).
		Int("items", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}

// worker processes pages from the queue
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- pageResult[T], errs chan<- error, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for page := range pageQueue {
		if ctx.Err() != nil {
			return
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		items, _, err := bf.fetcher.FetchPage(pageCtx, page)
		cancel()

		if err != nil {
			log.Debug().
				Err(err).
				Int("worker_id", workerID).
				Int("page", page).
				Msg("Page fetch failed")

			select {
			case errs <- err:
			default:
			}
			return
		}

		// results is buffered for every page, so this never blocks
		results <- pageResult[T]{page: page, items: items}
	}
}

func flatten[T any](pages map[int][]T) []T {
	nums := make([]int, 0, len(pages))
	total := 0
	for n, items := range pages {
		nums = append(nums, n)
		total += len(items)
	}
	sort.Ints(nums)

	out := make([]T, 0, total)
	for _, n := range nums {
		out = append(out, pages[n]...)
	}
	return out
}
