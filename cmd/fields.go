package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lease-cli/internal/model"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <document-id>",
	Short: "List extracted fields for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fields, err := st.ListFields(ctx, args[0])
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			fmt.Println("No fields found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tVALUE\tSTATE\tCONFIDENCE\tNOTES")
		for _, f := range fields {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\n",
				f.FieldName, truncate(f.ValueText, 40), f.ValidationState, f.Confidence, f.ValidationNotes)
		}
		return w.Flush()
	},
}

var (
	reviewState string
	reviewValue string
)

var reviewCmd = &cobra.Command{
	Use:   "review <document-id> <field-name>",
	Short: "Approve or correct a flagged field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		next := model.ValidationState(reviewState)
		if next != model.StateHumanPass && next != model.StateHumanEdit {
			return eris.Errorf("state must be %s or %s", model.StateHumanPass, model.StateHumanEdit)
		}
		if next == model.StateHumanEdit && reviewValue == "" {
			return eris.New("--value is required for human_edit")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		field, err := st.ReviewField(ctx, args[0], args[1], next, reviewValue)
		if err != nil {
			return err
		}

		fmt.Printf("%s is now %s: %s\n", field.FieldName, field.ValidationState, field.ValueText)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	reviewCmd.Flags().StringVar(&reviewState, "state", string(model.StateHumanPass), "review outcome (human_pass or human_edit)")
	reviewCmd.Flags().StringVar(&reviewValue, "value", "", "corrected value (required for human_edit)")
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(reviewCmd)
}
