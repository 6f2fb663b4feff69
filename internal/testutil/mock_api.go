// Package testutil provides testing utilities for the booking API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock booking API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount int
	pathCounts   map[string]int
	lastHeader   http.Header
	lastBody     []byte
}

// NewMockAPI creates a new mock booking API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastHeader = r.Header.Clone()
		mock.lastBody = body
		handler, exists := mock.handlers[r.Method+" "+r.URL.Path]
		if !exists {
			handler, exists = mock.handlers[r.URL.Path]
		}
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, r, NewNotFoundResponse())
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastHeader = nil
	m.lastBody = nil
}

// SetHandler sets a custom handler for a path. The path may be prefixed
// with a method, e.g. "POST /v1/reservations".
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, r, resp)
	})
}

// SetSequence serves the responses in order; the last one repeats.
func (m *MockAPI) SetSequence(path string, resps ...MockResponse) {
	if len(resps) == 0 {
		return
	}
	var (
		mu sync.Mutex
		i  int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := resps[i]
		if i < len(resps)-1 {
			i++
		}
		mu.Unlock()
		writeResponse(w, r, resp)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastHeader returns the headers of the most recent request.
func (m *MockAPI) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// LastBody returns the body of the most recent request.
func (m *MockAPI) LastBody() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBody
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp MockResponse) {
	if resp.Delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(resp.Delay):
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"X-RateLimit-Remaining": "100",
		"X-RateLimit-Reset":     "60",
		"Content-Type":          "application/json; charset=utf-8",
	}
}

// NewJSONResponse creates a 200 OK response with data wrapped in the
// {"data": ...} envelope.
func NewJSONResponse(data any) MockResponse {
	body, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal response: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "not found"}`,
		Headers:    defaultHeaders(),
	}
}

// NewBadRequestResponse creates a 400 Bad Request response.
func NewBadRequestResponse(msg string) MockResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "1",
			"Retry-After":           "0",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
		Headers:    defaultHeaders(),
	}
}

// Flight is the wire form of a flight served by FlightsHandler.
type Flight struct {
	ID          string    `json:"id"`
	Number      string    `json:"flightNumber"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"departureTime"`
	ArriveAt    time.Time `json:"arrivalTime"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
}

// FlightsHandler serves total flights for any route, paged by the "page" and
// "page_size" query parameters, with the X-Total-Pages header set.
func FlightsHandler(total int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			writeResponse(w, r, NewBadRequestResponse("invalid page"))
			return
		}
		size, err := strconv.Atoi(q.Get("page_size"))
		if err != nil || size < 1 {
			size = 20
		}

		depart := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
		flights := []Flight{}
		for i := (page - 1) * size; i < page*size && i < total; i++ {
			flights = append(flights, Flight{
				ID:          fmt.Sprintf("FL%04d", i),
				Number:      fmt.Sprintf("XB%d", 100+i),
				Origin:      q.Get("origin"),
				Destination: q.Get("destination"),
				DepartAt:    depart.Add(time.Duration(i) * time.Hour),
				ArriveAt:    depart.Add(time.Duration(i)*time.Hour + 2*time.Hour),
				Price:       99 + float64(i),
				Currency:    "EUR",
			})
		}

		resp := NewJSONResponse(flights)
		resp.Headers["X-Total-Pages"] = strconv.Itoa((total + size - 1) / size)
		writeResponse(w, r, resp)
	}
}
