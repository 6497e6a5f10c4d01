package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/spf13/cobra"
)

func newBookCommand(rt *runtime) *cobra.Command {
	var (
		roomID, checkIn, checkOut string
		adults, children          int
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := rt.requireSession()
			if err != nil {
				return err
			}

			in, out, err := parseStay(checkIn, checkOut)
			if err != nil {
				return err
			}

			b, err := api.CreateBooking(cmd.Context(), roomID, domain.BookingDetails{
				CheckIn:     in,
				CheckOut:    out,
				NumAdults:   adults,
				NumChildren: children,
			})
			if err != nil {
				return err
			}

			rt.printf("Booking confirmed. Confirmation code: %s\n", b.ConfirmationCode)
			rt.printf("%s to %s, %d guest(s), booking id %s\n", b.CheckIn, b.CheckOut, b.TotalGuests, b.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "room ID")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&adults, "adults", 1, "number of adults")
	cmd.Flags().IntVar(&children, "children", 0, "number of children")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")

	return cmd
}

func newBookingsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List, cancel and look up bookings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your bookings, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				api, err := rt.requireSession()
				if err != nil {
					return err
				}

				bookings, err := api.ListMyBookings(cmd.Context())
				if err != nil {
					return err
				}
				if len(bookings) == 0 {
					rt.printf("You have no bookings\n")
					return nil
				}
				return rt.printBookings(bookings)
			},
		},
		&cobra.Command{
			Use:   "cancel <booking-id>",
			Short: "Cancel a booking",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				api, err := rt.requireSession()
				if err != nil {
					return err
				}

				if err := api.CancelBooking(cmd.Context(), args[0]); err != nil {
					return err
				}
				rt.printf("Booking %s cancelled\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "find <confirmation-code>",
			Short: "Look a booking up by confirmation code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := rt.api.FindByConfirmationCode(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return rt.printBookings([]domain.Booking{*b})
			},
		},
	)

	return cmd
}

func (rt *runtime) printBookings(bookings []domain.Booking) error {
	w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tID\tROOM\tCHECK-IN\tCHECK-OUT\tGUESTS")
	for _, b := range bookings {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			b.ConfirmationCode, b.ID, b.RoomID, b.CheckIn, b.CheckOut, b.TotalGuests)
	}
	return w.Flush()
}
