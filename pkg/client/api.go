package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
)

// Booking API endpoints.
const (
	PathBestOffers   = "/v1/offers/best"
	PathPartners     = "/v1/partners"
	PathAccount      = "/v1/account"
	PathFlights      = "/v1/flights"
	PathReservations = "/v1/reservations"
)

// HeaderTotalPages carries the page count of a paged listing.
const HeaderTotalPages = "X-Total-Pages"

// HeaderIdempotencyKey makes reservation creation safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// BestOffers fetches the current best offers.
func (c *Client) BestOffers(ctx context.Context) ([]OfferDTO, error) {
	var out envelope[[]OfferDTO]
	if _, err := c.getJSON(ctx, PathBestOffers, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Partners fetches the loyalty partners.
func (c *Client) Partners(ctx context.Context) ([]PartnerDTO, error) {
	var out envelope[[]PartnerDTO]
	if _, err := c.getJSON(ctx, PathPartners, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Account fetches the loyalty account. It returns nil without error when
// the user has no account.
func (c *Client) Account(ctx context.Context) (*AccountDTO, error) {
	var out envelope[*AccountDTO]
	if _, err := c.getJSON(ctx, PathAccount, nil, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out.Data, nil
}

// Reservations fetches the user's reservations.
func (c *Client) Reservations(ctx context.Context) ([]ReservationDTO, error) {
	var out envelope[[]ReservationDTO]
	if _, err := c.getJSON(ctx, PathReservations, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateReservation books a seat. The client reference is sent as the
// idempotency key so retried attempts do not create duplicates.
func (c *Client) CreateReservation(ctx context.Context, body CreateReservationDTO) (*ReservationDTO, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal reservation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathReservations, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if body.ClientReference != "" {
		req.Header.Set(HeaderIdempotencyKey, body.ClientReference)
	}

	var out envelope[*ReservationDTO]
	if _, err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("create reservation: empty response")
	}
	return out.Data, nil
}

// SearchFlights fetches one page (1-based) of flight search results and the
// total page count reported by the server (0 if not reported).
func (c *Client) SearchFlights(ctx context.Context, q booking.SearchQuery, page int) ([]booking.Flight, int, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("date", q.Date)
	params.Set("passengers", strconv.Itoa(q.Passengers))
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(q.Size()))

	var out envelope[[]FlightDTO]
	header, err := c.getJSON(ctx, PathFlights, params, &out)
	if err != nil {
		return nil, 0, err
	}

	totalPages := 0
	if v := header.Get(HeaderTotalPages); v != "" {
		totalPages, err = strconv.Atoi(v)
		if err != nil {
			return nil, 0, fmt.Errorf("parse %s header: %w", HeaderTotalPages, err)
		}
	}

	flights := make([]booking.Flight, 0, len(out.Data))
	for _, d := range out.Data {
		flights = append(flights, d.Flight())
	}
	return flights, totalPages, nil
}

var _ booking.FlightSource = (*Client)(nil)

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(req, out)
}

// doJSON runs req through Do and decodes a 2xx body into out.
// Non-2xx responses become an *APIError.
func (c *Client) doJSON(req *http.Request, out any) (http.Header, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    errorMessage(resp),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.Header, fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return resp.Header, nil
}
