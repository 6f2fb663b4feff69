package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/logging"
	"github.com/Sternrassler/flight-booking-client/pkg/metrics"
	"github.com/Sternrassler/flight-booking-client/pkg/repository"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// statusClientClosedRequest is the non-standard code (nginx 499) recorded
// when the client went away before the response was ready.
const statusClientClosedRequest = 499

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the repository over HTTP with /metrics and /health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.NewLogger(logging.ComponentServer)
			srv := &http.Server{
				Addr:              c.cfg.ListenAddr,
				Handler:           newServer(c.app.repo, c.app.client, c.cfg.PageSize, logger),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return runServer(cmd.Context(), srv, logger)
		},
	}
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type server struct {
	repo     repository.Repository
	flights  booking.FlightSource
	pageSize int
	logger   zerolog.Logger
}

func newServer(repo repository.Repository, flights booking.FlightSource, pageSize int, logger zerolog.Logger) http.Handler {
	s := &server{repo: repo, flights: flights, pageSize: pageSize, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /v1/offers", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.repo.GetBestOffers(r.Context())
		writeResult(s, w, r, res, err)
	})
	mux.HandleFunc("GET /v1/partners", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.repo.GetPartners(r.Context())
		writeResult(s, w, r, res, err)
	})
	mux.HandleFunc("GET /v1/account", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.repo.GetAccount(r.Context())
		writeResult(s, w, r, res, err)
	})
	mux.HandleFunc("GET /v1/reservations", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.repo.RefreshReservations(r.Context())
		writeResult(s, w, r, res, err)
	})
	mux.HandleFunc("GET /v1/reservations/{id}", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.repo.Reservation(r.Context(), r.PathValue("id"))
		writeResult(s, w, r, res, err)
	})
	mux.HandleFunc("POST /v1/reservations", s.saveReservation)
	mux.HandleFunc("GET /v1/flights", s.searchFlights)
	return mux
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) saveReservation(w http.ResponseWriter, r *http.Request) {
	var req booking.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.repo.SaveReservation(r.Context(), req)
	writeResult(s, w, r, res, err)
}

func (s *server) searchFlights(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := booking.SearchQuery{
		Origin:      params.Get("from"),
		Destination: params.Get("to"),
		Date:        params.Get("date"),
		Passengers:  1,
		PageSize:    s.pageSize,
	}
	page := 1
	for name, dst := range map[string]*int{"passengers": &q.Passengers, "page": &page} {
		if v := params.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			*dst = n
		}
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if page < 1 {
		writeError(w, http.StatusBadRequest, errors.New("page must be >= 1"))
		return
	}

	flights, totalPages, err := s.flights.SearchFlights(r.Context(), q, page)
	if err != nil && r.Context().Err() != nil {
		writeCancelled(s, w, r, err)
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("flight search failed")
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("X-Total-Pages", strconv.Itoa(totalPages))
	writeJSON(w, http.StatusOK, flights)
}

func writeResult[T any](s *server, w http.ResponseWriter, r *http.Request, res result.Result[T], err error) {
	if err != nil {
		writeCancelled(s, w, r, err)
		return
	}
	v, err := res.Get()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, booking.ErrInvalid):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err)
	}
}

// writeCancelled answers a request whose context ended. The client is
// usually gone, but the status keeps access logs and metrics honest.
func writeCancelled(s *server, w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request cancelled")
	writeError(w, statusClientClosedRequest, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	text := http.StatusText(status)
	if status == statusClientClosedRequest {
		text = "Client Closed Request"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   text,
		"message": err.Error(),
	})
}
