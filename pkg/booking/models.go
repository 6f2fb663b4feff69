// Package booking defines the domain model of the booking client and the
// flight search use case built on the paginator.
package booking

import "time"

// Offer is a promoted fare shown on the home screen.
type Offer struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Discount    int    `json:"discount"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Partner is a loyalty programme partner.
type Partner struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	LogoURL  string `json:"logo_url,omitempty"`
}

// Account is the signed-in user's loyalty account.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Tier  string `json:"tier"`
	Miles int64  `json:"miles"`
}

// Reservation statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reservation is a seat booked on a flight.
// Status is StatusPending until the server has confirmed it.
type Reservation struct {
	ID        string    `json:"id"`
	FlightID  string    `json:"flight_id"`
	Passenger string    `json:"passenger"`
	Seat      string    `json:"seat,omitempty"`
	Class     string    `json:"class"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Confirmed reports whether the server accepted the reservation.
func (r Reservation) Confirmed() bool {
	return r.Status == StatusConfirmed
}

// ReservationRequest is what the user submits to book a flight.
type ReservationRequest struct {
	FlightID  string `json:"flight_id" validate:"required"`
	Passenger string `json:"passenger" validate:"required,max=128"`
	Seat      string `json:"seat,omitempty" validate:"omitempty,max=4"`
	Class     string `json:"class" validate:"required,oneof=economy premium business first"`
}

// Flight is one flight search result.
type Flight struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"depart_at"`
	ArriveAt    time.Time `json:"arrive_at"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
}

// DefaultPageSize is used when a SearchQuery does not set one.
const DefaultPageSize = 20

// SearchQuery describes a flight search.
type SearchQuery struct {
	Origin      string `json:"origin" validate:"required,len=3,alpha"`
	Destination string `json:"destination" validate:"required,len=3,alpha,nefield=Origin"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Passengers  int    `json:"passengers" validate:"min=1,max=9"`
	PageSize    int    `json:"page_size" validate:"min=0,max=100"`
}

// Size returns the effective page size.
func (q SearchQuery) Size() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}
