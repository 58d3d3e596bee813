package cmd

import (
	"errors"
	"fmt"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/spf13/cobra"
)

var (
	bkProperty string
	bkGuest    string
	bkCheckIn  store.Date
	bkCheckOut store.Date
	bkGuests   int
	bkPrice    float64
	bkStatus   string
	bkSource   string
	bkNotes    string
	bkListProp string
	bkShowAll  bool
)

var bookingCmd = &cobra.Command{
	Use:     "booking",
	Aliases: []string{"bookings"},
	Short:   "Manage bookings",
}

var bookingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a booking (total price is quoted from the calendar unless --price is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.ValidateStay(bkCheckIn, bkCheckOut); err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(bkProperty)
		if err != nil {
			return err
		}
		if bkGuests > p.MaxGuests {
			return fmt.Errorf("%w: %d guests exceed max_guests %d of %s", store.ErrInvalid, bkGuests, p.MaxGuests, p.Name)
		}
		total := bkPrice
		if total == 0 {
			calendar, err := st.Pricing.Load(p.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			total = pricing.Quote(p, calendar, bkCheckIn, bkCheckOut)
		}
		b, err := st.Bookings.Create(store.Booking{
			PropertyID: p.ID,
			GuestName:  bkGuest,
			CheckIn:    bkCheckIn,
			CheckOut:   bkCheckOut,
			Guests:     bkGuests,
			TotalPrice: total,
			Status:     bkStatus,
			Source:     bkSource,
			Notes:      bkNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Booking added: %s (%s, %d nights, %.2f %s)\n", b.ID, p.Name, b.Nights(), b.TotalPrice, currency())
		return nil
	},
}

var bookingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings ordered by check-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		list, err := st.Bookings.List(bkListProp)
		if err != nil {
			return err
		}
		shown := 0
		for _, b := range list {
			if !bkShowAll && !b.Active() {
				continue
			}
			fmt.Printf("- %s: %s %s → %s, %d guests, %.2f %s [%s via %s]\n",
				b.ID, b.GuestName, b.CheckIn, b.CheckOut, b.Guests, b.TotalPrice, currency(), b.Status, b.Source)
			shown++
		}
		if shown == 0 {
			fmt.Println("(no bookings)")
		}
		return nil
	},
}

var bookingCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a booking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		b, err := st.Bookings.Cancel(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Booking cancelled: %s (%s)\n", b.ID, b.GuestName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookingCmd)
	bookingCmd.AddCommand(bookingAddCmd, bookingListCmd, bookingCancelCmd)

	f := bookingAddCmd.Flags()
	f.StringVarP(&bkProperty, "property", "p", "", "property id")
	f.StringVarP(&bkGuest, "guest", "g", "", "guest name")
	dateVar(f, &bkCheckIn, "check-in", "arrival date (YYYY-MM-DD)")
	dateVar(f, &bkCheckOut, "check-out", "departure date (YYYY-MM-DD)")
	f.IntVar(&bkGuests, "guests", 1, "number of guests")
	f.Float64Var(&bkPrice, "price", 0, "total price (default: quoted from the calendar)")
	f.StringVar(&bkStatus, "status", "", "confirmed or pending (default confirmed)")
	f.StringVar(&bkSource, "source", "", "booking channel (default direct)")
	f.StringVar(&bkNotes, "notes", "", "free-text notes")
	_ = bookingAddCmd.MarkFlagRequired("property")
	_ = bookingAddCmd.MarkFlagRequired("guest")
	_ = bookingAddCmd.MarkFlagRequired("check-in")
	_ = bookingAddCmd.MarkFlagRequired("check-out")

	bookingListCmd.Flags().StringVarP(&bkListProp, "property", "p", "", "only bookings of this property")
	bookingListCmd.Flags().BoolVar(&bkShowAll, "all", false, "include cancelled bookings")
}
