package client

import (
	"encoding/json"
	"time"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
)

// envelope is the wrapper every booking API response body uses.
type envelope[T any] struct {
	Data T `json:"data"`
}

// errorBody is the error response body.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeErrorBody(body []byte) string {
	var e errorBody
	if len(body) == 0 || json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// OfferDTO is a best offer as returned by GET /v1/offers/best.
type OfferDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Discount    int    `json:"discount"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// PartnerDTO is a loyalty partner as returned by GET /v1/partners.
type PartnerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	LogoURL  string `json:"logoUrl,omitempty"`
}

// AccountDTO is the loyalty account as returned by GET /v1/account.
type AccountDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Tier  string `json:"tier"`
	Miles int64  `json:"miles"`
}

// ReservationDTO is a reservation as returned by the reservation endpoints.
type ReservationDTO struct {
	ID        string    `json:"id"`
	FlightID  string    `json:"flightId"`
	Passenger string    `json:"passenger"`
	Seat      string    `json:"seat,omitempty"`
	Class     string    `json:"class"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateReservationDTO is the body of POST /v1/reservations.
// ClientReference doubles as the idempotency key.
type CreateReservationDTO struct {
	ClientReference string `json:"clientReference"`
	FlightID        string `json:"flightId"`
	Passenger       string `json:"passenger"`
	Seat            string `json:"seat,omitempty"`
	Class           string `json:"class"`
}

// FlightDTO is one flight search result.
type FlightDTO struct {
	ID          string    `json:"id"`
	Number      string    `json:"flightNumber"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"departureTime"`
	ArriveAt    time.Time `json:"arrivalTime"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
}

// Flight converts the DTO into the domain model.
func (d FlightDTO) Flight() booking.Flight {
	return booking.Flight{
		ID:          d.ID,
		Number:      d.Number,
		Origin:      d.Origin,
		Destination: d.Destination,
		DepartAt:    d.DepartAt,
		ArriveAt:    d.ArriveAt,
		Price:       d.Price,
		Currency:    d.Currency,
	}
}

// NewCreateReservationDTO builds the request body for req.
func NewCreateReservationDTO(clientReference string, req booking.ReservationRequest) CreateReservationDTO {
	return CreateReservationDTO{
		ClientReference: clientReference,
		FlightID:        req.FlightID,
		Passenger:       req.Passenger,
		Seat:            req.Seat,
		Class:           req.Class,
	}
}
