package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/normalize"
	"github.com/sells-group/lease-cli/internal/projection"
)

var (
	projectYears    int
	projectDiscount float64
	projectCompare  string
)

var projectCmd = &cobra.Command{
	Use:   "project <document-id>",
	Short: "Project future rent from a document's escalation clause",
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
		fieldSet := model.NewFieldSet(fields)

		baseRent, ok := fieldSet.Numeric(model.FieldBaseRent)
		if !ok {
			return eris.Errorf("document %s has no base rent", args[0])
		}
		var clause model.EscalationClause
		if text, ok := fieldSet.Text(model.FieldEscalation); ok {
			clause, _ = normalize.Escalation(text)
		}

		years := projectYears
		if years <= 0 {
			years = cfg.Projection.Years
		}

		if projectCompare != "" {
			return printComparison(baseRent, clause, years)
		}

		proj, err := projection.Project(baseRent, clause, years)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "YEAR\tMONTHLY\tANNUAL\tCUMULATIVE")
		cashflows := make([]float64, 0, len(proj.Years))
		for _, y := range proj.Years {
			fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\n", y.Year, y.MonthlyRent, y.AnnualRent, y.Cumulative)
			cashflows = append(cashflows, y.AnnualRent)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		discount := projectDiscount
		if discount <= 0 {
			discount = cfg.Projection.DiscountRate
		}
		fmt.Printf("\nTotal: $%.2f  NPV @ %.1f%%: $%.2f  Effective annual escalation: %.2f%%\n",
			proj.CumulativeTotal, discount*100, projection.NPV(cashflows, discount),
			proj.EffectiveRate*100)
		return nil
	},
}

// printComparison ranks flat rent against each comma-separated annual
// percentage escalation rate.
func printComparison(baseRent float64, clause model.EscalationClause, years int) error {
	scenarios := []projection.Scenario{
		{Name: "extracted", Clause: clause},
		{Name: "flat", Clause: model.EscalationClause{Type: model.EscalationNone}},
	}
	for _, raw := range strings.Split(projectCompare, ",") {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return eris.Errorf("invalid comparison rate %q", raw)
		}
		scenarios = append(scenarios, projection.Scenario{
			Name: fmt.Sprintf("%.2f%%", rate),
			Clause: model.EscalationClause{
				Type:      model.EscalationPercentage,
				Rate:      &rate,
				Frequency: model.FrequencyAnnual,
			},
		})
	}

	cmp, err := projection.Compare(baseRent, scenarios, years)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tCUMULATIVE")
	for _, res := range cmp.Results {
		fmt.Fprintf(w, "%s\t%.2f\n", res.Name, res.Cumulative)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nBest: %s  Worst: %s  Spread: $%.2f\n", cmp.Best.Name, cmp.Worst.Name, cmp.Spread)
	return nil
}

func init() {
	projectCmd.Flags().IntVar(&projectYears, "years", 0, "projection horizon in years (default from config)")
	projectCmd.Flags().Float64Var(&projectDiscount, "discount", 0, "NPV discount rate (default from config)")
	projectCmd.Flags().StringVar(&projectCompare, "compare", "", "comma-separated annual escalation rates to compare, e.g. 2.5,3,3.5")
	rootCmd.AddCommand(projectCmd)
}
