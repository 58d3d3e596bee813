package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaData       datasetFlags
	anaTypesOnly  bool
	anaFilter     string
	anaSampleRows int
	anaOutputPath string
	anaSavePath   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify, filter and summarize a CSV/TSV/XLSX dataset",
	Long: `Analyze loads a tabular file, optionally filters it and prints either the
column classes (--types) or a Markdown summary with per-column statistics.

Filters are a JSON object keyed by column:
  {"price": [100, 200]}            numeric or date range, inclusive
  {"city": ["Como", "Bellagio"]}   one of the listed values
  {"pool": true}                   equality`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := anaData.load(args[0])
		if err != nil {
			return err
		}
		filters, err := parseFilterJSON(anaFilter)
		if err != nil {
			return err
		}
		total := t.NumRows()
		if t, err = dataset.Apply(t, filters); err != nil {
			return err
		}
		if len(filters) > 0 {
			fmt.Printf("✓ %d of %d rows match the filter\n", t.NumRows(), total)
		}

		if anaSavePath != "" {
			var buf bytes.Buffer
			if err := dataset.WriteCSV(&buf, t); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(anaSavePath, buf.Bytes()); err != nil {
				return fmt.Errorf("write rows: %w", err)
			}
			fmt.Printf("✓ Wrote %d rows to %s\n", t.NumRows(), anaSavePath)
		}

		var out string
		if anaTypesOnly {
			types := dataset.Classify(t)
			var b strings.Builder
			for _, g := range []struct {
				name string
				cols []string
			}{
				{dataset.ClassNumeric, types.Numeric},
				{dataset.ClassCategorical, types.Categorical},
				{dataset.ClassDatetime, types.Datetime},
				{dataset.ClassText, types.Text},
			} {
				fmt.Fprintf(&b, "%-12s %s\n", g.name+":", strings.Join(g.cols, ", "))
			}
			out = b.String()
		} else {
			out = dataset.Describe(t, anaSampleRows).Markdown()
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	f := analyzeCmd.Flags()
	anaData.register(f)
	f.BoolVar(&anaTypesOnly, "types", false, "print column classes only")
	f.StringVar(&anaFilter, "filter", "", `JSON filter, e.g. '{"price": [100, 200]}'`)
	f.IntVar(&anaSampleRows, "sample-rows", 5, "sample rows in the summary")
	f.StringVarP(&anaOutputPath, "output", "o", "", "write the report to a file")
	f.StringVar(&anaSavePath, "save", "", "write the (filtered) rows as CSV")
}
