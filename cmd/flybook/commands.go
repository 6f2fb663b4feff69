package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/flight-booking-client/pkg/booking"
	"github.com/Sternrassler/flight-booking-client/pkg/pagination"
	"github.com/Sternrassler/flight-booking-client/pkg/result"
)

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes the value of a successful result. A failed result
// and a cancellation both become the command error.
func printResult[T any](c *cli, res result.Result[T], err error) error {
	if err != nil {
		return err
	}
	v, err := res.Get()
	if err != nil {
		return err
	}
	return c.print(v)
}

func (c *cli) offersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offers",
		Short: "Show the best offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.repo.GetBestOffers(cmd.Context())
			return printResult(c, res, err)
		},
	}
}

func (c *cli) partnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partners",
		Short: "List loyalty partners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.repo.GetPartners(cmd.Context())
			return printResult(c, res, err)
		},
	}
}

func (c *cli) accountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the loyalty account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.repo.GetAccount(cmd.Context())
			return printResult(c, res, err)
		},
	}
}

func (c *cli) reservationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "Manage reservations",
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch reservations from the API and update the local copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.repo.RefreshReservations(cmd.Context())
			return printResult(c, res, err)
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a locally stored reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.repo.Reservation(cmd.Context(), args[0])
			return printResult(c, res, err)
		},
	}

	var req booking.ReservationRequest
	save := &cobra.Command{
		Use:   "save",
		Short: "Book a flight; kept locally as pending when the API is unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.repo.SaveReservation(cmd.Context(), req)
			if err != nil {
				return err
			}
			r, err := res.Get()
			if err != nil {
				return err
			}
			if !r.Confirmed() {
				c.log.Warn().Str("reservation_id", r.ID).Msg("reservation stored locally, not confirmed by the API")
			}
			return c.print(r)
		},
	}
	save.Flags().StringVar(&req.FlightID, "flight", "", "flight ID")
	save.Flags().StringVar(&req.Passenger, "passenger", "", "passenger name")
	save.Flags().StringVar(&req.Seat, "seat", "", "seat, e.g. 12A")
	save.Flags().StringVar(&req.Class, "class", "economy", "cabin class (economy|premium|business|first)")

	cmd.AddCommand(refresh, get, save)
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		q     booking.SearchQuery
		pages int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search flights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if q.PageSize == 0 {
				q.PageSize = c.cfg.PageSize
			}
			s, err := booking.NewFlightSearch(c.app.client, q)
			if err != nil {
				return err
			}

			if all {
				flights, err := s.LoadAll(cmd.Context(), pagination.DefaultBatchConfig())
				if err != nil {
					return err
				}
				return c.print(flights)
			}

			if pages < 1 {
				return fmt.Errorf("pages must be >= 1 (got %d)", pages)
			}
			for i := 0; i < pages && !s.State().EndReached; i++ {
				if err := s.LoadMore(cmd.Context()); err != nil {
					return err
				}
				if st := s.State(); st.Err != nil {
					return st.Err
				}
			}
			return c.print(s.State().Items)
		},
	}

	cmd.Flags().StringVar(&q.Origin, "from", "", "origin airport (IATA)")
	cmd.Flags().StringVar(&q.Destination, "to", "", "destination airport (IATA)")
	cmd.Flags().StringVar(&q.Date, "date", "", "departure date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&q.Passengers, "passengers", 1, "number of passengers")
	cmd.Flags().IntVar(&pages, "pages", 1, "pages to load")
	cmd.Flags().BoolVar(&all, "all", false, "load every page in parallel")
	return cmd
}
