// Package pagination provides incremental and batch page loading for
// paginated booking API listings such as flight search results.
//
// Paginator loads one page at a time and keeps at most one request in
// flight. Calls made while a request is running are dropped, so a UI can
// call LoadNextItems on every scroll-threshold event:
//
//	p, err := pagination.New(pagination.Config[int, booking.Flight]{
//		Name:       "flight_search",
//		InitialKey: 1,
//		OnRequest: func(ctx context.Context, page int) ([]booking.Flight, error) {
//			return api.SearchFlights(ctx, query, page)
//		},
//		NextKey:   func(items []booking.Flight) int { return page + 1 },
//		OnSuccess: func(items []booking.Flight, next int) { state.Append(items) },
//		OnError:   func(err error) { state.SetError(err) },
//	})
//	_ = p.LoadNextItems(ctx)
//
// The key advances only after a successful request, and is derived from the
// fetched items. Reset moves the key back to the initial key without
// touching a request already in flight.
//
// BatchFetcher fetches page 1 to learn the total page count and then the
// remaining pages with a worker pool, returning items in page order.
package pagination
