package cmd

import (
	"fmt"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/insight"
	"github.com/spf13/cobra"
)

var (
	insData      datasetFlags
	insColumns   []string
	insK         int
	insColumn    string
	insThreshold float64
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Clustering and anomaly detection on numeric columns",
}

var insightClusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Group rows with k-means over standardized numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := insData.load(args[0])
		if err != nil {
			return err
		}
		res, err := insight.KMeans(t, insColumns, insK)
		if err != nil {
			return err
		}
		fmt.Printf("k-means over %s (k=%d)\n", strings.Join(res.Columns, ", "), res.K)
		for i, c := range res.Centers {
			parts := make([]string, len(c))
			for j, v := range c {
				parts[j] = fmt.Sprintf("%s=%.2f", res.Columns[j], v)
			}
			fmt.Printf("  cluster %d: %d rows, center %s\n", i, res.Sizes[i], strings.Join(parts, " "))
		}
		if debug {
			fmt.Printf("labels: %v\n", res.Labels)
		}
		return nil
	},
}

var insightAnomaliesCmd = &cobra.Command{
	Use:   "anomalies <file>",
	Short: "Flag outliers by robust z-score (median/MAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := insData.load(args[0])
		if err != nil {
			return err
		}
		rep, err := insight.Anomalies(t, insColumn, insThreshold)
		if err != nil {
			return err
		}
		fmt.Printf("%s: median %.2f, MAD %.2f, threshold %.2f\n", rep.Column, rep.Median, rep.MAD, rep.Threshold)
		if len(rep.Anomalies) == 0 {
			fmt.Println("(no anomalies)")
			return nil
		}
		for _, a := range rep.Anomalies {
			fmt.Printf("  row %d: %.2f (z=%.2f)\n", a.Row+1, a.Value, a.Score)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightCmd)
	insightCmd.AddCommand(insightClusterCmd, insightAnomaliesCmd)

	insData.register(insightCmd.PersistentFlags())

	insightClusterCmd.Flags().StringSliceVarP(&insColumns, "columns", "c", nil, "numeric columns to cluster on")
	insightClusterCmd.Flags().IntVarP(&insK, "k", "k", 3, "number of clusters")
	_ = insightClusterCmd.MarkFlagRequired("columns")

	insightAnomaliesCmd.Flags().StringVarP(&insColumn, "column", "c", "", "numeric column to scan")
	insightAnomaliesCmd.Flags().Float64Var(&insThreshold, "threshold", insight.DefaultThreshold, "robust z-score threshold")
	_ = insightAnomaliesCmd.MarkFlagRequired("column")
}
