package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/flight-booking-client/internal/testutil"
	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/ratelimit"
)

// setupTestRedis creates a test Redis client.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig(baseURL, "TestApp/1.0.0 (test@example.com)")
	cfg.RequestsPerSecond = 0
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.SetRetryConfig(fastRetry())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig("https://api.example.com", "TestApp/1.0.0"),
		},
		{
			name:        "missing base url",
			config:      DefaultConfig("", "TestApp/1.0.0"),
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name:        "unsupported scheme",
			config:      DefaultConfig("ftp://api.example.com", "TestApp/1.0.0"),
			expectError: true,
			errorMsg:    `base url must be http or https (got "ftp://api.example.com")`,
		},
		{
			name:        "empty user agent",
			config:      DefaultConfig("https://api.example.com", ""),
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "negative retries",
			config: Config{
				BaseURL:    "https://api.example.com",
				UserAgent:  "TestApp/1.0.0",
				MaxRetries: -1,
			},
			expectError: true,
			errorMsg:    "max_retries must be >= 0 (got -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if client == nil {
				t.Error("Client is nil")
			}
			if client.RateLimiter() != nil {
				t.Error("RateLimiter should be nil without Redis")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("https://api.example.com", "TestApp/1.0.0")

	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestsPerSecond <= 0 {
		t.Errorf("RequestsPerSecond = %v, should be > 0", cfg.RequestsPerSecond)
	}
	if cfg.MaxRetries < 1 {
		t.Errorf("MaxRetries = %d, should be >= 1", cfg.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
}

func TestDo_HeadersSet(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(PathPartners, testutil.NewJSONResponse([]PartnerDTO{}))

	cfg := DefaultConfig(mock.URL(), "TestApp/1.0.0 (test@example.com)")
	cfg.APIToken = "secret"
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Partners(context.Background()); err != nil {
		t.Fatalf("Partners() error = %v", err)
	}

	h := mock.LastHeader()
	if got := h.Get("User-Agent"); got != "TestApp/1.0.0 (test@example.com)" {
		t.Errorf("User-Agent = %q", got)
	}
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if got := h.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestBestOffers(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(PathBestOffers, testutil.NewJSONResponse([]OfferDTO{
		{ID: "1", Title: "Autumn in Lisbon", Destination: "LIS", Discount: 30},
		{ID: "2", Title: "City break", Destination: "PRG", Discount: 15},
	}))

	c := newTestClient(t, mock.URL())
	offers, err := c.BestOffers(context.Background())
	if err != nil {
		t.Fatalf("BestOffers() error = %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("len(offers) = %d, want 2", len(offers))
	}
	if offers[0].ID != "1" || offers[0].Discount != 30 {
		t.Errorf("offers[0] = %+v", offers[0])
	}
}

func TestAccount_NotFoundIsNil(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	c := newTestClient(t, mock.URL())
	account, err := c.Account(context.Background())
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	if account != nil {
		t.Errorf("Account() = %+v, want nil", account)
	}
	if got := mock.PathCount(PathAccount); got != 1 {
		t.Errorf("404 should not be retried, got %d requests", got)
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetSequence(PathPartners,
		testutil.NewServerErrorResponse(),
		testutil.NewRateLimitResponse(),
		testutil.NewJSONResponse([]PartnerDTO{{ID: "p1", Name: "Hotel Partner"}}),
	)

	c := newTestClient(t, mock.URL())
	partners, err := c.Partners(context.Background())
	if err != nil {
		t.Fatalf("Partners() error = %v", err)
	}
	if len(partners) != 1 || partners[0].ID != "p1" {
		t.Errorf("partners = %+v", partners)
	}
	if got := mock.PathCount(PathPartners); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestDo_RetryExhausted(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(PathBestOffers, testutil.NewServerErrorResponse())

	c := newTestClient(t, mock.URL())
	_, err := c.BestOffers(context.Background())
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("error = %v, want ErrRetryExhausted", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v does not wrap APIError", err)
	}
	if apiErr.Message != "internal server error" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if got := mock.PathCount(PathBestOffers); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(PathReservations, testutil.NewBadRequestResponse("flight is full"))

	c := newTestClient(t, mock.URL())
	_, err := c.CreateReservation(context.Background(), CreateReservationDTO{FlightID: "F1"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.ErrorClass != ErrorClassClient || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if apiErr.Message != "flight is full" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if got := mock.PathCount(PathReservations); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestCreateReservation_ReplaysBodyOnRetry(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	created := testutil.NewJSONResponse(ReservationDTO{
		ID:        "srv-1",
		FlightID:  "F1",
		Passenger: "Ada Lovelace",
		Class:     "economy",
		Status:    booking.StatusConfirmed,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	})
	created.StatusCode = http.StatusCreated
	mock.SetSequence("POST "+PathReservations, testutil.NewServerErrorResponse(), created)

	c := newTestClient(t, mock.URL())
	body := NewCreateReservationDTO("ref-123", booking.ReservationRequest{
		FlightID:  "F1",
		Passenger: "Ada Lovelace",
		Class:     "economy",
	})

	res, err := c.CreateReservation(context.Background(), body)
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	if res.ID != "srv-1" || res.Status != booking.StatusConfirmed {
		t.Errorf("reservation = %+v", res)
	}

	var sent CreateReservationDTO
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("second attempt body: %v", err)
	}
	if sent != body {
		t.Errorf("replayed body = %+v, want %+v", sent, body)
	}
	if got := mock.LastHeader().Get(HeaderIdempotencyKey); got != "ref-123" {
		t.Errorf("Idempotency-Key = %q", got)
	}
}

func TestSearchFlights(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler(PathFlights, testutil.FlightsHandler(45))

	c := newTestClient(t, mock.URL())
	q := booking.SearchQuery{Origin: "VIE", Destination: "LHR", Date: "2026-11-02", Passengers: 1}

	flights, totalPages, err := c.SearchFlights(context.Background(), q, 3)
	if err != nil {
		t.Fatalf("SearchFlights() error = %v", err)
	}
	if totalPages != 3 {
		t.Errorf("totalPages = %d, want 3", totalPages)
	}
	if len(flights) != 5 {
		t.Fatalf("len(flights) = %d, want 5", len(flights))
	}
	if flights[0].ID != "FL0040" || flights[0].Origin != "VIE" {
		t.Errorf("flights[0] = %+v", flights[0])
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	resp := testutil.NewJSONResponse([]OfferDTO{})
	resp.Delay = time.Second
	mock.SetResponse(PathBestOffers, resp)

	c := newTestClient(t, mock.URL())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.BestOffers(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("cancellation must not be retried")
	}
}

func TestDo_BlockedByRateLimiter(t *testing.T) {
	redisClient := setupTestRedis(t)

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(PathPartners, testutil.NewJSONResponse([]PartnerDTO{}))

	cfg := DefaultConfig(mock.URL(), "TestApp/1.0.0")
	cfg.Redis = redisClient
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	h := http.Header{}
	h.Set(ratelimit.HeaderRemaining, "1")
	h.Set(ratelimit.HeaderReset, "60")
	tracker := ratelimit.NewTracker(redisClient, zerolog.Nop())
	if err := tracker.UpdateFromHeaders(context.Background(), h); err != nil {
		t.Fatalf("UpdateFromHeaders: %v", err)
	}

	_, err = c.Partners(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if got := mock.GetRequestCount(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
