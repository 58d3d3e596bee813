package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/chart"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chData     datasetFlags
	chType     string
	chSettings []string
	chFilter   string
	chTitle    string
	chFormat   string
	chOutput   string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Render a chart of a dataset to PNG or SVG",
	Long: `Chart renders one visualization of a tabular file. Settings are passed as
repeated key=value pairs, e.g.:

  ciaohost chart nights.csv -t bar --set x=property --set y=price --set agg=mean

Invalid settings still produce an image: a placeholder explaining the problem.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := chart.ParseFormat(chFormat)
		if err != nil {
			return err
		}
		t, err := chData.load(args[0])
		if err != nil {
			return err
		}
		settings, err := parseSettings(chSettings)
		if err != nil {
			return err
		}
		filters, err := parseFilterJSON(chFilter)
		if err != nil {
			return err
		}
		raw := make(map[string]any, len(filters))
		for k, v := range filters {
			raw[k] = v
		}
		rp := dashboard.RenderPanel(t, dashboard.Panel{Title: chTitle, ChartType: chType, Config: settings, Filters: raw})
		img, err := rp.Figure.Bytes(format)
		if err != nil {
			return err
		}
		out := chOutput
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = fmt.Sprintf("%s_%s.%s", base, strings.ToLower(chType), format)
		}
		if err := utils.SafeWriteFile(out, img); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		if rp.Figure.Placeholder() {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", rp.Figure.Message())
		}
		fmt.Printf("✓ Wrote %s chart (%d rows) to %s\n", chType, rp.Rows, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	f := chartCmd.Flags()
	chData.register(f)
	f.StringVarP(&chType, "type", "t", "bar", "chart type: "+strings.Join(chart.Types(), ", "))
	f.StringArrayVar(&chSettings, "set", nil, "chart setting key=value (repeatable)")
	f.StringVar(&chFilter, "filter", "", "JSON row filter applied before charting")
	f.StringVar(&chTitle, "title", "", "chart title")
	f.StringVar(&chFormat, "format", "png", "png or svg")
	f.StringVarP(&chOutput, "output", "o", "", "output file (default <file>_<type>.<format>)")
}
