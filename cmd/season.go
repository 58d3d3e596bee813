package cmd

import (
	"fmt"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/spf13/cobra"
)

var (
	seaName     string
	seaStart    store.Date
	seaEnd      store.Date
	seaModifier float64
	seaNotes    string
	seaYear     int
)

var seasonCmd = &cobra.Command{
	Use:     "season",
	Aliases: []string{"seasons"},
	Short:   "Manage pricing seasons",
}

var seasonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pricing seasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		list, err := st.Seasons.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("(no seasons; run 'ciaohost season init')")
			return nil
		}
		for _, s := range list {
			fmt.Printf("- %s: %-7s %s → %s %+.0f%%", s.ID, s.Name, s.StartDate, s.EndDate, s.PriceModifier)
			if s.Notes != "" {
				fmt.Printf(" (%s)", s.Notes)
			}
			fmt.Println()
		}
		return nil
	},
}

var seasonAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a season; overlapping ranges are rejected",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		s, err := st.Seasons.Add(store.Season{
			Name:          seaName,
			StartDate:     seaStart,
			EndDate:       seaEnd,
			PriceModifier: seaModifier,
			Notes:         seaNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Season added: %s %s → %s (%s)\n", s.Name, s.StartDate, s.EndDate, s.ID)
		return nil
	},
}

var seasonRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a season",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Seasons.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Season removed: %s\n", args[0])
		return nil
	},
}

var seasonInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Replace all seasons with the default calendar for a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		year := seaYear
		if year == 0 {
			year = time.Now().Year()
		}
		list, err := st.Seasons.Replace(pricing.DefaultSeasons(year))
		if err != nil {
			return err
		}
		fmt.Printf("✓ Initialized %d seasons for %d\n", len(list), year)
		return nil
	},
}

var seasonLookupCmd = &cobra.Command{
	Use:   "lookup <date>",
	Short: "Show the season and price factor for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := store.ParseDate(args[0])
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		list, err := st.Seasons.List()
		if err != nil {
			return err
		}
		factor := pricing.DefaultMultipliers.Factor(list, date)
		if s := pricing.SeasonFor(list, date); s != nil {
			fmt.Printf("%s (%s): %s season %+.0f%%, factor %.3f\n", date, date.Weekday(), s.Name, s.PriceModifier, factor)
		} else {
			fmt.Printf("%s (%s): no season, factor %.3f\n", date, date.Weekday(), factor)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seasonCmd)
	seasonCmd.AddCommand(seasonListCmd, seasonAddCmd, seasonRemoveCmd, seasonInitCmd, seasonLookupCmd)

	f := seasonAddCmd.Flags()
	f.StringVarP(&seaName, "name", "n", "", "low, mid, high or holiday")
	dateVar(f, &seaStart, "start", "first day (YYYY-MM-DD)")
	dateVar(f, &seaEnd, "end", "last day, inclusive (YYYY-MM-DD)")
	f.Float64Var(&seaModifier, "modifier", 0, "price modifier in percent, e.g. 30 or -15")
	f.StringVar(&seaNotes, "notes", "", "free-text notes")
	_ = seasonAddCmd.MarkFlagRequired("name")
	_ = seasonAddCmd.MarkFlagRequired("start")
	_ = seasonAddCmd.MarkFlagRequired("end")

	seasonInitCmd.Flags().IntVar(&seaYear, "year", 0, "calendar year (default: current year)")
}
