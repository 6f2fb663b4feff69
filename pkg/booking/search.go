package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/Sternrassler/flight-booking-client/pkg/pagination"
)

// FlightSource is the remote collaborator for flight search.
// totalPages is the page count reported by the server (0 if unknown).
type FlightSource interface {
	SearchFlights(ctx context.Context, q SearchQuery, page int) (flights []Flight, totalPages int, err error)
}

// SearchState is a snapshot of the flight search list.
type SearchState struct {
	Query      SearchQuery
	Items      []Flight
	Loading    bool
	Err        error
	Page       int
	EndReached bool
}

// FlightSearch accumulates flight search results page by page.
// Page numbers start at 1; a page shorter than the query's page size marks
// the end of the results.
type FlightSearch struct {
	source FlightSource

	mu          sync.Mutex
	state       SearchState
	fetchedPage int
	paginator   *pagination.Paginator[int, Flight]
}

// NewFlightSearch creates a search for q. The query is validated.
func NewFlightSearch(source FlightSource, q SearchQuery) (*FlightSearch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s := &FlightSearch{
		source: source,
		state:  SearchState{Query: q, Page: 1},
	}

	p, err := pagination.New(pagination.Config[int, Flight]{
		Name:          "flight_search",
		InitialKey:    1,
		OnLoadUpdated: s.setLoading,
		OnRequest:     s.request,
		NextKey:       s.nextPage,
		OnError:       s.setError,
		OnSuccess:     s.appendPage,
	})
	if err != nil {
		return nil, err
	}
	s.paginator = p
	return s, nil
}

// LoadMore fetches the next page unless the end has been reached or a
// request is already running.
func (s *FlightSearch) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	end := s.state.EndReached
	s.mu.Unlock()
	if end {
		return nil
	}
	return s.paginator.LoadNextItems(ctx)
}

// Reset clears the results and starts over with q.
func (s *FlightSearch) Reset(q SearchQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = SearchState{Query: q, Page: 1, Loading: s.state.Loading}
	s.mu.Unlock()

	s.paginator.Reset()
	return nil
}

// State returns a copy of the current state.
func (s *FlightSearch) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]Flight(nil), s.state.Items...)
	return st
}

// LoadAll fetches every result page in parallel and replaces the list.
// On success the paginator continues after the last fetched page, so a
// following LoadMore never repeats a page. On failure the list is left as it
// was and the partial results are only returned to the caller, since they
// may have gaps.
func (s *FlightSearch) LoadAll(ctx context.Context, cfg pagination.BatchConfig) ([]Flight, error) {
	q := s.State().Query

	var (
		mu         sync.Mutex
		lastPage   int
		totalPages int
	)
	fetcher := pagination.NewBatchFetcher[Flight](pagination.PageFetcherFunc[Flight](
		func(ctx context.Context, page int) ([]Flight, int, error) {
			flights, total, err := s.source.SearchFlights(ctx, q, page)
			if err != nil {
				return nil, 0, err
			}
			mu.Lock()
			if page > lastPage {
				lastPage = page
			}
			if page == 1 {
				totalPages = total
			}
			mu.Unlock()
			return flights, total, nil
		}), cfg)

	flights, err := fetcher.FetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			s.state.Err = err
		}
		return flights, err
	}

	s.state.Items = flights
	s.state.Page = lastPage + 1
	s.state.Err = nil
	// MaxPages may stop short of the reported page count
	s.state.EndReached = lastPage >= totalPages
	s.paginator.Seek(s.state.Page)

	return flights, nil
}

func (s *FlightSearch) request(ctx context.Context, page int) ([]Flight, error) {
	s.mu.Lock()
	q := s.state.Query
	s.mu.Unlock()

	flights, _, err := s.source.SearchFlights(ctx, q, page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetchedPage = page
	s.mu.Unlock()
	return flights, nil
}

// nextPage follows the page the items were fetched from.
func (s *FlightSearch) nextPage(_ []Flight) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchedPage + 1
}

func (s *FlightSearch) setLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.mu.Unlock()
}

func (s *FlightSearch) setError(err error) {
	s.mu.Lock()
	s.state.Err = err
	s.mu.Unlock()
}

func (s *FlightSearch) appendPage(items []Flight, next int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = append(s.state.Items, items...)
	s.state.Page = next
	s.state.Err = nil
	s.state.EndReached = len(items) < s.state.Query.Size()
}
