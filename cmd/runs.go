package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/store"
)

var (
	runsStatus   string
	runsDocument string
	runsLimit    int
	runsJSON     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List processing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:     model.RunStatus(runsStatus),
			DocumentID: runsDocument,
			Limit:      runsLimit,
		})
		if err != nil {
			return err
		}

		if runsJSON {
			return json.NewEncoder(os.Stdout).Encode(runs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tDOCUMENT\tSTATUS\tFIELDS\tREVIEW\tUPDATED")
		for _, r := range runs {
			fieldsExtracted, fieldsReview := "-", "-"
			if r.Result != nil {
				fieldsExtracted = fmt.Sprintf("%d", r.Result.FieldsExtracted)
				fieldsReview = fmt.Sprintf("%d", r.Result.FieldsReview)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.DocumentID, r.Status, fieldsExtracted, fieldsReview,
				r.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status")
	runsCmd.Flags().StringVar(&runsDocument, "document", "", "filter by document id")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(runsCmd)
}
