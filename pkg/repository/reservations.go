package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

// ReservationsRemote is the remote side of reservations.
type ReservationsRemote interface {
	Reservations(ctx context.Context) ([]client.ReservationDTO, error)
	CreateReservation(ctx context.Context, body client.CreateReservationDTO) (*client.ReservationDTO, error)
}

// Reservations creates and lists reservations.
type Reservations struct {
	remote   ReservationsRemote
	local    store.Collection[store.ReservationRecord]
	fallback *CacheFallback[client.ReservationDTO, store.ReservationRecord, booking.Reservation]
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewReservations creates the reservations repository.
func NewReservations(remote ReservationsRemote, local store.Collection[store.ReservationRecord], logger zerolog.Logger, opts ...Option) *Reservations {
	o := applyOptions(opts)
	return &Reservations{
		remote: remote,
		local:  local,
		fallback: &CacheFallback[client.ReservationDTO, store.ReservationRecord, booking.Reservation]{
			Name:     "reservations",
			Remote:   remote.Reservations,
			Local:    local,
			ToEntity: reservationRecord,
			ToModel:  reservationModel,
			Logger:   logger,
		},
		logger: logger,
		now:    o.now,
		newID:  o.newID,
	}
}

// SaveReservation creates a reservation on the server and always stores it
// locally: the server's reservation on success, otherwise a pending one
// built from req.
//
// The Result fails when req is invalid (nothing is sent or stored) or when
// the local write fails. err is non-nil only when ctx was cancelled.
func (r *Reservations) SaveReservation(ctx context.Context, req booking.ReservationRequest) (result.Result[booking.Reservation], error) {
	if err := req.Validate(); err != nil {
		reservationSavesTotal.WithLabelValues("failed").Inc()
		return result.Fail[booking.Reservation](err), nil
	}

	id := r.newID()
	remoteRes, err := result.Catching(ctx, func(ctx context.Context) (*client.ReservationDTO, error) {
		return r.remote.CreateReservation(ctx, client.NewCreateReservationDTO(id, req))
	})
	if err != nil {
		reservationSavesTotal.WithLabelValues("cancelled").Inc()
		return result.Result[booking.Reservation]{}, err
	}

	var rec store.ReservationRecord
	outcome := "synced"
	if dto := remoteRes.Value(); remoteRes.IsOk() && dto != nil {
		rec = reservationRecord(*dto)
	} else {
		outcome = "local_only"
		rec = pendingRecord(id, req, r.now())
		r.logger.Warn().
			Err(remoteRes.Err()).
			Str("reservation_id", id).
			Str("flight_id", req.FlightID).
			Msg("Reservation not confirmed by server, stored as pending")
	}

	saved, err := result.Catching(ctx, func(ctx context.Context) (booking.Reservation, error) {
		if err := r.local.Upsert(ctx, rec); err != nil {
			return booking.Reservation{}, fmt.Errorf("store reservation %s: %w", rec.ID, err)
		}
		return reservationModel(rec), nil
	})
	if err != nil {
		reservationSavesTotal.WithLabelValues("cancelled").Inc()
		return saved, err
	}
	if !saved.IsOk() {
		outcome = "failed"
		r.logger.Error().Err(saved.Err()).Str("reservation_id", rec.ID).Msg("Failed to store reservation")
	}

	reservationSavesTotal.WithLabelValues(outcome).Inc()
	return saved, nil
}

// RefreshReservations replaces the stored reservations with the server's
// list. Like every read path it never fails; err is non-nil only when ctx
// was cancelled.
func (r *Reservations) RefreshReservations(ctx context.Context) (result.Result[[]booking.Reservation], error) {
	return r.fallback.Fetch(ctx)
}

// Reservation reads one reservation from the local store. The Result wraps
// store.ErrNotFound for unknown IDs.
func (r *Reservations) Reservation(ctx context.Context, id string) (result.Result[booking.Reservation], error) {
	return result.Catching(ctx, func(ctx context.Context) (booking.Reservation, error) {
		rec, err := r.local.Get(ctx, id)
		if err != nil {
			return booking.Reservation{}, err
		}
		return reservationModel(rec), nil
	})
}
