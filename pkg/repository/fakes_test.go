package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

var errNetwork = errors.New("network unreachable")

// memCollection is an in-memory store.Collection with failure injection.
type memCollection[E store.Entity] struct {
	mu       sync.Mutex
	items    []E
	replaces int
	failAll  error
	failPut  error
}

func (m *memCollection[E]) All(context.Context) ([]E, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]E(nil), m.items...), nil
}

func (m *memCollection[E]) Get(_ context.Context, id string) (E, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.StoreID() == id {
			return it, nil
		}
	}
	var zero E
	return zero, store.ErrNotFound
}

func (m *memCollection[E]) Replace(_ context.Context, items []E) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	m.replaces++
	m.items = append([]E(nil), items...)
	return nil
}

func (m *memCollection[E]) Upsert(_ context.Context, items ...E) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
outer:
	for _, it := range items {
		for i, existing := range m.items {
			if existing.StoreID() == it.StoreID() {
				m.items[i] = it
				continue outer
			}
		}
		m.items = append(m.items, it)
	}
	return nil
}

func (m *memCollection[E]) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *memCollection[E]) snapshot() []E {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]E(nil), m.items...)
}

// fakeRemote implements Remote with canned responses.
type fakeRemote struct {
	mu sync.Mutex

	offers       []client.OfferDTO
	partners     []client.PartnerDTO
	account      *client.AccountDTO
	reservations []client.ReservationDTO
	created      *client.ReservationDTO
	err          error

	// block, when set, makes every call wait for ctx to be done
	block bool

	calls    int
	lastBody client.CreateReservationDTO
}

func (f *fakeRemote) call(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	block, err := f.block, f.err
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeRemote) BestOffers(ctx context.Context) ([]client.OfferDTO, error) {
	if err := f.call(ctx); err != nil {
		return nil, err
	}
	return f.offers, nil
}

func (f *fakeRemote) Partners(ctx context.Context) ([]client.PartnerDTO, error) {
	if err := f.call(ctx); err != nil {
		return nil, err
	}
	return f.partners, nil
}

func (f *fakeRemote) Account(ctx context.Context) (*client.AccountDTO, error) {
	if err := f.call(ctx); err != nil {
		return nil, err
	}
	return f.account, nil
}

func (f *fakeRemote) Reservations(ctx context.Context) ([]client.ReservationDTO, error) {
	if err := f.call(ctx); err != nil {
		return nil, err
	}
	return f.reservations, nil
}

func (f *fakeRemote) CreateReservation(ctx context.Context, body client.CreateReservationDTO) (*client.ReservationDTO, error) {
	f.mu.Lock()
	f.lastBody = body
	f.mu.Unlock()
	if err := f.call(ctx); err != nil {
		return nil, err
	}
	return f.created, nil
}
