package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/spf13/cobra"
)

func newRoomsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse the room catalog",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every room",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rooms, err := rt.api.ListRooms(cmd.Context())
				if err != nil {
					return err
				}
				return rt.printRooms(rooms)
			},
		},
		&cobra.Command{
			Use:   "types",
			Short: "List room types",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				types, err := rt.api.ListRoomTypes(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range types {
					rt.printf("%s\n", t)
				}
				return nil
			},
		},
		newAvailableCommand(rt),
	)

	return cmd
}

func newAvailableCommand(rt *runtime) *cobra.Command {
	var checkIn, checkOut, roomType string

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List rooms free for a stay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, out, err := parseStay(checkIn, checkOut)
			if err != nil {
				return err
			}

			rooms, err := rt.api.ListAvailableRooms(cmd.Context(), roomType, in, out)
			if err != nil {
				return err
			}
			if len(rooms) == 0 {
				rt.printf("No rooms available for %s to %s\n", in, out)
				return nil
			}
			return rt.printRooms(rooms)
		},
	}

	cmd.Flags().StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&roomType, "type", "", "room type; empty means any")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")

	return cmd
}

func (rt *runtime) printRooms(rooms []domain.Room) error {
	w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tPRICE/NIGHT\tDESCRIPTION")
	for _, room := range rooms {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", room.ID, room.Type, room.PricePerNight, room.Description)
	}
	return w.Flush()
}

func parseStay(checkIn, checkOut string) (domain.Date, domain.Date, error) {
	in, err := domain.ParseDate(checkIn)
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("--check-in: %w", err)
	}
	out, err := domain.ParseDate(checkOut)
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("--check-out: %w", err)
	}
	if err := domain.ValidateStay(in, out); err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	return in, out, nil
}
