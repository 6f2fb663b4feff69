package repository

import (
	"time"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

func offerRecord(now func() time.Time) func(client.OfferDTO) store.OfferRecord {
	return func(d client.OfferDTO) store.OfferRecord {
		return store.OfferRecord{
			ID:          d.ID,
			Title:       d.Title,
			Destination: d.Destination,
			Discount:    d.Discount,
			ImageURL:    d.ImageURL,
			StoredAt:    now(),
		}
	}
}

func offerModel(r store.OfferRecord) booking.Offer {
	return booking.Offer{
		ID:          r.ID,
		Title:       r.Title,
		Destination: r.Destination,
		Discount:    r.Discount,
		ImageURL:    r.ImageURL,
	}
}

func partnerRecord(now func() time.Time) func(client.PartnerDTO) store.PartnerRecord {
	return func(d client.PartnerDTO) store.PartnerRecord {
		return store.PartnerRecord{
			ID:       d.ID,
			Name:     d.Name,
			Category: d.Category,
			LogoURL:  d.LogoURL,
			StoredAt: now(),
		}
	}
}

func partnerModel(r store.PartnerRecord) booking.Partner {
	return booking.Partner{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		LogoURL:  r.LogoURL,
	}
}

func accountRecord(now func() time.Time) func(client.AccountDTO) store.AccountRecord {
	return func(d client.AccountDTO) store.AccountRecord {
		return store.AccountRecord{
			ID:       d.ID,
			Name:     d.Name,
			Email:    d.Email,
			Tier:     d.Tier,
			Miles:    d.Miles,
			StoredAt: now(),
		}
	}
}

func accountModel(r store.AccountRecord) booking.Account {
	return booking.Account{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Tier:  r.Tier,
		Miles: r.Miles,
	}
}

// reservationRecord maps a server reservation; server data is always synced.
func reservationRecord(d client.ReservationDTO) store.ReservationRecord {
	return store.ReservationRecord{
		ID:        d.ID,
		FlightID:  d.FlightID,
		Passenger: d.Passenger,
		Seat:      d.Seat,
		Class:     d.Class,
		Status:    d.Status,
		Synced:    true,
		CreatedAt: d.CreatedAt,
	}
}

// pendingRecord is the client-constructed reservation stored when the
// server could not be reached.
func pendingRecord(id string, req booking.ReservationRequest, createdAt time.Time) store.ReservationRecord {
	return store.ReservationRecord{
		ID:        id,
		FlightID:  req.FlightID,
		Passenger: req.Passenger,
		Seat:      req.Seat,
		Class:     req.Class,
		Status:    booking.StatusPending,
		Synced:    false,
		CreatedAt: createdAt,
	}
}

func reservationModel(r store.ReservationRecord) booking.Reservation {
	return booking.Reservation{
		ID:        r.ID,
		FlightID:  r.FlightID,
		Passenger: r.Passenger,
		Seat:      r.Seat,
		Class:     r.Class,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
