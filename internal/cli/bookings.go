package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"hotelbook/pkg/client"
	"hotelbook/pkg/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func bookingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Create and inspect bookings through the API",
	}

	cmd.AddCommand(bookingsCreateCmd(opts))
	cmd.AddCommand(bookingsCancelCmd(opts))
	cmd.AddCommand(bookingsGetCmd(opts))
	cmd.AddCommand(bookingsListCmd(opts))
	return cmd
}

func (o *options) bookingClient() (*client.BookingClient, error) {
	if o.userID == "" {
		return nil, fmt.Errorf("--user is required")
	}
	return client.NewBookingClient(o.baseURL, o.userID), nil
}

func bookingsCreateCmd(opts *options) *cobra.Command {
	var req model.CreateBookingRequest
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.bookingClient()
			if err != nil {
				return err
			}
			if idempotencyKey == "" {
				idempotencyKey = uuid.NewString()
			}

			resp, err := c.Create(cmd.Context(), &req, idempotencyKey)
			if err != nil {
				return err
			}
			if err := checkResponse(resp); err != nil {
				return fmt.Errorf("%w (retry with --idempotency-key %s)", err, idempotencyKey)
			}
			if opts.outputJSON {
				return printRaw(cmd.OutOrStdout(), resp.Body)
			}

			result, err := c.DecodeCreateResult(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if resp.Header.Get("Idempotent-Replayed") == "true" {
				fmt.Fprintln(out, "Replayed earlier response")
			}
			printBookings(out, []*model.Booking{result.Booking})
			fmt.Fprintf(out, "Idempotency key: %s\n", idempotencyKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.HotelID, "hotel", "", "Hotel ID")
	cmd.Flags().StringVar(&req.RoomTypeID, "room-type", "", "Room type ID")
	cmd.Flags().StringVar(&req.CheckIn, "check-in", "", "Check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.CheckOut, "check-out", "", "Check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&req.Guests, "guests", 1, "Number of guests")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Reuse a key to retry safely (default: random)")
	for _, name := range []string{"hotel", "room-type", "check-in", "check-out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func bookingsCancelCmd(opts *options) *cobra.Command {
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.bookingClient()
			if err != nil {
				return err
			}
			resp, err := c.Cancel(cmd.Context(), args[0], idempotencyKey)
			if err != nil {
				return err
			}
			return printBookingResponse(cmd.OutOrStdout(), opts, c, resp)
		},
	}
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for the cancellation")
	return cmd
}

func bookingsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <booking-id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.bookingClient()
			if err != nil {
				return err
			}
			resp, err := c.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printBookingResponse(cmd.OutOrStdout(), opts, c, resp)
		},
	}
}

func bookingsListCmd(opts *options) *cobra.Command {
	var limit int
	var offset int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.bookingClient()
			if err != nil {
				return err
			}
			resp, err := c.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if err := checkResponse(resp); err != nil {
				return err
			}
			if opts.outputJSON {
				return printRaw(cmd.OutOrStdout(), resp.Body)
			}

			bookings, meta, err := c.DecodeBookings(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(bookings) == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}
			printBookings(out, bookings)
			fmt.Fprintf(out, "Showing %d of %d\n", len(bookings), meta.TotalCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Page size")
	cmd.Flags().Int64Var(&offset, "offset", 0, "Page offset")
	return cmd
}

func availabilityCheckCmd(opts *options) *cobra.Command {
	var roomTypeID, checkIn, checkOut string
	var rooms int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a room type can be booked for a stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.NewBookingClient(opts.baseURL, opts.userID)
			resp, err := c.CheckAvailability(cmd.Context(), roomTypeID, checkIn, checkOut, rooms)
			if err != nil {
				return err
			}
			if err := checkResponse(resp); err != nil {
				return err
			}
			if opts.outputJSON {
				return printRaw(cmd.OutOrStdout(), resp.Body)
			}

			result, err := c.DecodeAvailability(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Available {
				fmt.Fprintf(out, "Available: %d of %d rooms free (%s)\n", result.AvailableRooms, result.TotalRooms, result.Source)
			} else {
				fmt.Fprintf(out, "Not available on: %v\n", result.UnavailableDates)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&roomTypeID, "room-type", "", "Room type ID")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "Check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&rooms, "rooms", 0, "Rooms required (default 1)")
	for _, name := range []string{"room-type", "check-in", "check-out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printBookingResponse(out io.Writer, opts *options, c *client.BookingClient, resp *client.Response) error {
	if err := checkResponse(resp); err != nil {
		return err
	}
	if opts.outputJSON {
		return printRaw(out, resp.Body)
	}
	booking, err := c.DecodeBooking(resp)
	if err != nil {
		return err
	}
	printBookings(out, []*model.Booking{booking})
	return nil
}

// checkResponse turns an API error body into a Go error.
func checkResponse(resp *client.Response) error {
	return resp.Err()
}

func printRaw(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = out.Write(body)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}

func printBookings(out io.Writer, bookings []*model.Booking) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tROOM TYPE\tCHECK-IN\tCHECK-OUT\tNIGHTS\tTOTAL")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.2f %s\n",
			b.ID,
			b.Status,
			b.RoomTypeID,
			b.CheckIn.Format(dateLayout),
			b.CheckOut.Format(dateLayout),
			b.Nights,
			b.TotalAmount,
			b.Currency,
		)
	}
	_ = w.Flush()
}
