package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// PartnersRemote is the remote source of loyalty partners.
type PartnersRemote interface {
	Partners(ctx context.Context) ([]client.PartnerDTO, error)
}

// Partners serves the loyalty partners.
type Partners struct {
	fallback *CacheFallback[client.PartnerDTO, store.PartnerRecord, booking.Partner]
}

// NewPartners creates the partners repository.
func NewPartners(remote PartnersRemote, local store.Collection[store.PartnerRecord], logger zerolog.Logger, opts ...Option) *Partners {
	o := applyOptions(opts)
	return &Partners{fallback: &CacheFallback[client.PartnerDTO, store.PartnerRecord, booking.Partner]{
		Name:     "partners",
		Remote:   remote.Partners,
		Local:    local,
		ToEntity: partnerRecord(o.now),
		ToModel:  partnerModel,
		Logger:   logger,
	}}
}

// GetPartners returns the loyalty partners. The result is always a success;
// err is non-nil only when ctx was cancelled.
func (r *Partners) GetPartners(ctx context.Context) (result.Result[[]booking.Partner], error) {
	return r.fallback.Fetch(ctx)
}
