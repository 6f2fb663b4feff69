package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/flight-booking-client/pkg/pagination"
)

type fakeFlights struct {
	mu       sync.Mutex
	total    int // total results
	failPage int
	pages    []int
	queries  []SearchQuery
}

func (f *fakeFlights) SearchFlights(_ context.Context, q SearchQuery, page int) ([]Flight, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	f.queries = append(f.queries, q)

	if page == f.failPage {
		return nil, 0, errors.New("search unavailable")
	}

	size := q.Size()
	totalPages := (f.total + size - 1) / size
	var out []Flight
	for i := (page - 1) * size; i < page*size && i < f.total; i++ {
		out = append(out, Flight{ID: fmt.Sprintf("F%03d", i), Origin: q.Origin, Destination: q.Destination})
	}
	return out, totalPages, nil
}

func validQuery() SearchQuery {
	return SearchQuery{Origin: "VIE", Destination: "LHR", Date: "2026-11-02", Passengers: 1, PageSize: 20}
}

func TestNewFlightSearch_InvalidQuery(t *testing.T) {
	q := validQuery()
	q.Destination = "VIE"

	_, err := NewFlightSearch(&fakeFlights{}, q)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestFlightSearch_LoadsPagesInOrder(t *testing.T) {
	src := &fakeFlights{total: 45}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.LoadMore(ctx))
	st := s.State()
	assert.Len(t, st.Items, 20)
	assert.Equal(t, 2, st.Page)
	assert.False(t, st.EndReached)
	assert.False(t, st.Loading)

	require.NoError(t, s.LoadMore(ctx))
	require.NoError(t, s.LoadMore(ctx))
	st = s.State()
	assert.Len(t, st.Items, 45)
	assert.True(t, st.EndReached)

	// End reached: no further requests
	require.NoError(t, s.LoadMore(ctx))
	assert.Equal(t, []int{1, 2, 3}, src.pages)
}

func TestFlightSearch_ErrorKeepsPage(t *testing.T) {
	src := &fakeFlights{total: 60, failPage: 2}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.LoadMore(ctx))
	require.NoError(t, s.LoadMore(ctx))

	st := s.State()
	assert.Error(t, st.Err)
	assert.Equal(t, 2, st.Page)
	assert.Len(t, st.Items, 20)

	src.failPage = 0
	require.NoError(t, s.LoadMore(ctx))
	st = s.State()
	assert.NoError(t, st.Err)
	assert.Len(t, st.Items, 40)
	assert.Equal(t, []int{1, 2, 2}, src.pages)
}

func TestFlightSearch_Reset(t *testing.T) {
	src := &fakeFlights{total: 100}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.LoadMore(ctx))
	require.NoError(t, s.LoadMore(ctx))

	q := validQuery()
	q.Destination = "CDG"
	require.NoError(t, s.Reset(q))

	st := s.State()
	assert.Empty(t, st.Items)
	assert.Equal(t, 1, st.Page)

	require.NoError(t, s.LoadMore(ctx))
	assert.Equal(t, []int{1, 2, 1}, src.pages)
	assert.Equal(t, "CDG", src.queries[2].Destination)

	q.Origin = ""
	assert.ErrorIs(t, s.Reset(q), ErrInvalid)
}

func TestFlightSearch_LoadAll(t *testing.T) {
	src := &fakeFlights{total: 65}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)

	flights, err := s.LoadAll(context.Background(), pagination.BatchConfig{MaxConcurrency: 2})
	require.NoError(t, err)
	require.Len(t, flights, 65)
	assert.Equal(t, "F000", flights[0].ID)
	assert.Equal(t, "F064", flights[64].ID)
	assert.True(t, s.State().EndReached)
}

func TestFlightSearch_LoadAllThenLoadMore(t *testing.T) {
	src := &fakeFlights{total: 65}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.LoadAll(ctx, pagination.BatchConfig{MaxConcurrency: 2})
	require.NoError(t, err)

	st := s.State()
	assert.Equal(t, 5, st.Page)
	assert.True(t, st.EndReached)

	require.NoError(t, s.LoadMore(ctx))
	assert.Len(t, s.State().Items, 65)
	assert.Len(t, src.pages, 4, "no page after the last one is requested")
}

func TestFlightSearch_LoadAllCappedContinuesWithLoadMore(t *testing.T) {
	src := &fakeFlights{total: 65}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	flights, err := s.LoadAll(ctx, pagination.BatchConfig{MaxConcurrency: 2, MaxPages: 2})
	require.NoError(t, err)
	require.Len(t, flights, 40)

	st := s.State()
	assert.Equal(t, 3, st.Page)
	assert.False(t, st.EndReached)

	require.NoError(t, s.LoadMore(ctx))
	st = s.State()
	require.Len(t, st.Items, 60)
	assert.Equal(t, "F040", st.Items[40].ID)
	assert.Equal(t, 4, st.Page)
	assert.Equal(t, 3, src.pages[len(src.pages)-1])
}

func TestFlightSearch_LoadAllFailureKeepsList(t *testing.T) {
	src := &fakeFlights{total: 65, failPage: 3}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)
	ctx := context.Background()

	partial, err := s.LoadAll(ctx, pagination.BatchConfig{MaxConcurrency: 1})
	require.Error(t, err)
	assert.NotEmpty(t, partial)

	st := s.State()
	assert.Empty(t, st.Items, "partial results must not replace the list")
	assert.Equal(t, 1, st.Page)
	assert.Error(t, st.Err)
	assert.False(t, st.EndReached)

	src.failPage = 0
	require.NoError(t, s.LoadMore(ctx))
	require.NoError(t, s.LoadMore(ctx))

	seen := make(map[string]int)
	for _, f := range s.State().Items {
		seen[f.ID]++
	}
	assert.Len(t, s.State().Items, 40)
	assert.Equal(t, 1, seen["F000"])
	assert.Equal(t, 1, seen["F020"])
}

func TestFlightSearch_LoadAllCancelled(t *testing.T) {
	src := &fakeFlights{total: 65}
	s, err := NewFlightSearch(src, validQuery())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.LoadAll(ctx, pagination.BatchConfig{MaxConcurrency: 2})
	require.Error(t, err)
	assert.NoError(t, s.State().Err, "cancellation is not a search error")
}
