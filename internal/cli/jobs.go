package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var jobDate string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and store prices for today and tomorrow",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		dates, err := a.Dates(jobDate)
		if err != nil {
			return err
		}

		results, err := a.Ingest(cmd.Context(), dates)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}

		for _, r := range results {
			if r.Error != "" {
				return fmt.Errorf("ingestion of %s failed: %s", r.Date, r.Error)
			}
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate alerts and send notifications for today and tomorrow",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		dates, err := a.Dates(jobDate)
		if err != nil {
			return err
		}

		results, err := a.Evaluate(cmd.Context(), dates)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, cmd := range []*cobra.Command{ingestCmd, evaluateCmd} {
		cmd.Flags().StringVar(&jobDate, "date", "", "Single date to process (YYYY-MM-DD)")
	}
}
