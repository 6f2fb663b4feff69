package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// OffersRemote is the remote source of best offers.
type OffersRemote interface {
	BestOffers(ctx context.Context) ([]client.OfferDTO, error)
}

// Offers serves the best offers.
type Offers struct {
	fallback *CacheFallback[client.OfferDTO, store.OfferRecord, booking.Offer]
}

// NewOffers creates the offers repository.
func NewOffers(remote OffersRemote, local store.Collection[store.OfferRecord], logger zerolog.Logger, opts ...Option) *Offers {
	o := applyOptions(opts)
	return &Offers{fallback: &CacheFallback[client.OfferDTO, store.OfferRecord, booking.Offer]{
		Name:     "offers",
		Remote:   remote.BestOffers,
		Local:    local,
		ToEntity: offerRecord(o.now),
		ToModel:  offerModel,
		Logger:   logger,
	}}
}

// GetBestOffers returns the best offers. The result is always a success;
// err is non-nil only when ctx was cancelled.
func (r *Offers) GetBestOffers(ctx context.Context) (result.Result[[]booking.Offer], error) {
	return r.fallback.Fetch(ctx)
}
