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
	dbOutDir string
	dbFormat string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render dashboards described in YAML",
}

var dashboardRenderCmd = &cobra.Command{
	Use:   "render <layout.yaml>",
	Short: "Render every panel of a layout to an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := chart.ParseFormat(dbFormat)
		if err != nil {
			return err
		}
		layout, err := dashboard.LoadLayout(args[0])
		if err != nil {
			return err
		}
		d, err := layout.Dashboard()
		if err != nil {
			return err
		}
		t, err := layout.LoadDataset()
		if err != nil {
			return err
		}
		outDir := dbOutDir
		if outDir == "" {
			outDir = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_panels"
		}
		failed := 0
		for i, rp := range d.Render(t) {
			img, err := rp.Figure.Bytes(format)
			if err != nil {
				return fmt.Errorf("panel %q: %w", rp.Panel.Title, err)
			}
			name := fmt.Sprintf("%02d_%s.%s", i+1, slug(rp.Panel.Title), format)
			if err := utils.SafeWriteFile(filepath.Join(outDir, name), img); err != nil {
				return err
			}
			if rp.Error != "" {
				failed++
				fmt.Fprintf(os.Stderr, "⚠ Warning: panel %q: %s\n", rp.Panel.Title, rp.Error)
				continue
			}
			fmt.Printf("✓ %s (%d rows) → %s\n", rp.Panel.Title, rp.Rows, name)
		}
		fmt.Printf("✓ Rendered %d panels of %q to %s", len(d.Panels), d.Name, outDir)
		if failed > 0 {
			fmt.Printf(" (%d placeholders)", failed)
		}
		fmt.Println()
		return nil
	},
}

// slug makes a file-name friendly version of a title.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "panel"
	}
	return out
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardRenderCmd)
	dashboardRenderCmd.Flags().StringVarP(&dbOutDir, "out", "o", "", "output directory (default <layout>_panels)")
	dashboardRenderCmd.Flags().StringVar(&dbFormat, "format", "png", "png or svg")
}
