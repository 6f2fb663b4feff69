package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/logging"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// Repository is the data API exposed to the presentation layer.
//
// Read paths always succeed; the error return is reserved for cancellation.
type Repository interface {
	GetBestOffers(ctx context.Context) (result.Result[[]booking.Offer], error)
	GetPartners(ctx context.Context) (result.Result[[]booking.Partner], error)
	GetAccount(ctx context.Context) (result.Result[*booking.Account], error)
	SaveReservation(ctx context.Context, req booking.ReservationRequest) (result.Result[booking.Reservation], error)
	RefreshReservations(ctx context.Context) (result.Result[[]booking.Reservation], error)
	Reservation(ctx context.Context, id string) (result.Result[booking.Reservation], error)
}

// Remote is the complete remote source; *client.Client implements it.
type Remote interface {
	OffersRemote
	PartnersRemote
	AccountRemote
	ReservationsRemote
}

// Stores holds the local collection of every domain.
type Stores struct {
	Offers       store.Collection[store.OfferRecord]
	Partners     store.Collection[store.PartnerRecord]
	Accounts     store.Collection[store.AccountRecord]
	Reservations store.Collection[store.ReservationRecord]
}

// NewGormStores returns SQLite-backed stores. db must be migrated with
// store.AutoMigrate.
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Offers:       store.NewGormCollection[store.OfferRecord](db, "offers"),
		Partners:     store.NewGormCollection[store.PartnerRecord](db, "partners"),
		Accounts:     store.NewGormCollection[store.AccountRecord](db, "accounts"),
		Reservations: store.NewGormCollection[store.ReservationRecord](db, "reservations"),
	}
}

// NewRedisStores returns Redis-backed stores. scope narrows every key, e.g.
// {"user": "u-1"} when several users share one Redis.
func NewRedisStores(rdb *redis.Client, scope map[string]string) Stores {
	key := func(collection string) store.CollectionKey {
		return store.CollectionKey{Collection: collection, Scope: scope}
	}
	return Stores{
		Offers:       store.NewRedisCollection[store.OfferRecord](rdb, key("offers")),
		Partners:     store.NewRedisCollection[store.PartnerRecord](rdb, key("partners")),
		Accounts:     store.NewRedisCollection[store.AccountRecord](rdb, key("accounts")),
		Reservations: store.NewRedisCollection[store.ReservationRecord](rdb, key("reservations")),
	}
}

// Validate checks that every collection is set.
func (s Stores) Validate() error {
	switch {
	case s.Offers == nil:
		return fmt.Errorf("offers store is required")
	case s.Partners == nil:
		return fmt.Errorf("partners store is required")
	case s.Accounts == nil:
		return fmt.Errorf("accounts store is required")
	case s.Reservations == nil:
		return fmt.Errorf("reservations store is required")
	}
	return nil
}

// Booking implements Repository on top of the per-domain repositories.
type Booking struct {
	*Offers
	*Partners
	*Account
	*Reservations
}

var _ Repository = (*Booking)(nil)

// New wires every domain repository to remote and stores.
// It panics if a store is missing.
func New(remote Remote, stores Stores, opts ...Option) *Booking {
	if err := stores.Validate(); err != nil {
		panic(err.Error())
	}

	logger := logging.NewLogger(logging.ComponentRepository)

	return &Booking{
		Offers:       NewOffers(remote, stores.Offers, logger, opts...),
		Partners:     NewPartners(remote, stores.Partners, logger, opts...),
		Account:      NewAccount(remote, stores.Accounts, logger, opts...),
		Reservations: NewReservations(remote, stores.Reservations, logger, opts...),
	}
}
