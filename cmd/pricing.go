package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
	"github.com/spf13/cobra"
)

var (
	prFrom       store.Date
	prDays       int
	prSeed       int64
	prLimit      int
	prDate       store.Date
	prCompetitor int
	prTimeoutSec int
	prJSON       bool
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Generate price calendars and recommendations",
}

var pricingGenerateCmd = &cobra.Command{
	Use:   "generate <property-id>",
	Short: "Generate and save a synthetic price calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		seasons, err := st.Seasons.List()
		if err != nil {
			return err
		}
		if len(seasons) == 0 {
			fmt.Fprintln(os.Stderr, "⚠ Warning: no seasons defined; prices use weekday factors only")
		}
		bookings, err := st.Bookings.List(p.ID)
		if err != nil {
			return err
		}
		from := prFrom
		if from.IsZero() {
			from = store.Today()
		}
		days, err := pricing.NewGenerator(prSeed).Generate(p, seasons, bookings, from, prDays)
		if err != nil {
			return err
		}
		if err := st.Pricing.Save(p.ID, days); err != nil {
			return err
		}
		s := pricing.Occupancy(days)
		fmt.Printf("✓ Generated %d nights for %s from %s (avg %.2f %s, %d booked)\n", s.Nights, p.Name, from, s.AveragePrice, currency(), s.Booked)
		return nil
	},
}

var pricingShowCmd = &cobra.Command{
	Use:   "show <property-id>",
	Short: "Print the saved price calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		days, err := st.Pricing.Load(args[0])
		if err != nil {
			return fmt.Errorf("%w (run 'ciaohost pricing generate %s' first)", err, args[0])
		}
		if prLimit > 0 && prLimit < len(days) {
			days = days[:prLimit]
		}
		if prJSON {
			b, err := utils.PrettyJSON(days)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		for _, d := range days {
			fmt.Printf("%s %s %8.2f %s\n", d.Date, d.Date.Weekday().String()[:3], d.Price, d.Status)
		}
		return nil
	},
}

var pricingRecommendCmd = &cobra.Command{
	Use:   "recommend <property-id>",
	Short: "Recommend a nightly price (AI when configured, otherwise simulated)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		seasons, err := st.Seasons.List()
		if err != nil {
			return err
		}
		date := prDate
		if date.IsZero() {
			date = store.Today()
		}
		r := pricing.NewRecommender(newAssistant(), currency())
		if prTimeoutSec > 0 {
			r.Timeout = time.Duration(prTimeoutSec) * time.Second
		}
		rec, err := r.Recommend(context.Background(), p, seasons, date)
		if err != nil {
			return err
		}
		if rec.Warning != "" {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", rec.Warning)
		}
		if prJSON {
			b, err := utils.PrettyJSON(rec)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Printf("%s on %s (%s season)\n", p.Name, rec.Date, rec.Season)
		fmt.Printf("  recommended: %.2f %s (range %.2f–%.2f, base %.2f)\n", rec.RecommendedPrice, currency(), rec.MinPrice, rec.MaxPrice, rec.BasePrice)
		fmt.Printf("  source:      %s\n", rec.Source)
		if rec.Reasoning != "" {
			fmt.Printf("  reasoning:   %s\n", rec.Reasoning)
		}
		return nil
	},
}

var pricingMarketCmd = &cobra.Command{
	Use:   "market <property-id>",
	Short: "Compare the current price with simulated competitors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		var rng *rand.Rand
		if prSeed != 0 {
			rng = rand.New(rand.NewSource(prSeed))
		}
		m, err := pricing.MarketComparison(p, prCompetitor, rng)
		if err != nil {
			return err
		}
		for _, c := range m.Competitors {
			fmt.Printf("- %-22s %d bd %8.2f  rating %.1f  occupancy %.0f%%\n", c.CoHost, c.Bedrooms, c.Price, c.Rating, c.Occupancy*100)
		}
		fmt.Printf("Your price %.2f %s: mean %.2f, median %.2f, range %.2f–%.2f, percentile %.0f\n",
			m.YourPrice, currency(), m.Mean, m.Median, m.Min, m.Max, m.Percentile)
		return nil
	},
}

var pricingStatsCmd = &cobra.Command{
	Use:   "stats <property-id>",
	Short: "Occupancy, ADR and RevPAR of the saved calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		days, err := st.Pricing.Load(args[0])
		if err != nil {
			return err
		}
		s := pricing.Occupancy(days)
		fmt.Printf("nights:    %d (%d booked, %d blocked)\n", s.Nights, s.Booked, s.Blocked)
		fmt.Printf("occupancy: %.0f%%\n", s.Occupancy*100)
		fmt.Printf("ADR:       %.2f %s\n", s.ADR, currency())
		fmt.Printf("RevPAR:    %.2f %s\n", s.RevPAR, currency())
		fmt.Printf("revenue:   %.2f %s\n", s.Revenue, currency())
		fmt.Printf("avg price: %.2f %s\n", s.AveragePrice, currency())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingGenerateCmd, pricingShowCmd, pricingRecommendCmd, pricingMarketCmd, pricingStatsCmd)

	gf := pricingGenerateCmd.Flags()
	dateVar(gf, &prFrom, "from", "first night (default: today)")
	gf.IntVar(&prDays, "days", 90, fmt.Sprintf("number of nights (max %d)", pricing.MaxCalendarDays))
	gf.Int64Var(&prSeed, "seed", 0, "random seed for reproducible calendars (0: time-based)")

	pricingShowCmd.Flags().IntVar(&prLimit, "limit", 0, "print at most this many nights")
	pricingShowCmd.Flags().BoolVar(&prJSON, "json", false, "print JSON")

	rf := pricingRecommendCmd.Flags()
	dateVar(rf, &prDate, "date", "night to price (default: today)")
	rf.IntVar(&prTimeoutSec, "timeout", 0, "AI request timeout in seconds")
	rf.BoolVar(&prJSON, "json", false, "print JSON")

	pricingMarketCmd.Flags().IntVarP(&prCompetitor, "competitors", "n", 8, "number of simulated competitors")
	pricingMarketCmd.Flags().Int64Var(&prSeed, "seed", 0, "random seed (0: time-based)")
}
