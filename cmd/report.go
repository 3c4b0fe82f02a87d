package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report <document-id>",
	Short: "Show the reconciliation report for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.GetReport(ctx, args[0])
		if err != nil {
			return err
		}

		if reportJSON {
			return json.NewEncoder(os.Stdout).Encode(report)
		}

		fmt.Printf("Document: %s\nStatus: %s\nDiscrepancies: %d\n",
			report.DocumentID, report.OverallStatus, len(report.Discrepancies))
		for _, d := range report.Discrepancies {
			fmt.Printf("- [%s] %s (%s): %s\n", d.Severity, d.FieldName, d.Type, d.Description)
			if d.Expected != "" || d.Actual != "" {
				fmt.Printf("    expected %s, got %s\n", d.Expected, d.Actual)
			}
			if d.Recommendation != "" {
				fmt.Printf("    %s\n", d.Recommendation)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(reportCmd)
}
