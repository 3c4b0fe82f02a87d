package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lease-cli/internal/export"
	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/rentroll"
)

var (
	rentrollFormat string
	rentrollOut    string
)

var rentrollCmd = &cobra.Command{
	Use:   "rentroll <document-id>",
	Short: "Generate the monthly rent schedule for a processed document",
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
			return eris.Errorf("no fields stored for document %s", args[0])
		}

		in, _, err := rentroll.FromFields(model.NewFieldSet(fields), cfg.RentRoll.DefaultCPIRate)
		if err != nil {
			return err
		}
		schedule, err := rentroll.Generate(in)
		if err != nil {
			return err
		}

		out, closeOut, err := openOutput(rentrollOut)
		if err != nil {
			return err
		}
		defer closeOut()

		switch rentrollFormat {
		case "csv":
			return export.RentRollCSV(out, schedule)
		case "xlsx":
			report, _ := st.GetReport(ctx, args[0])
			return export.Workbook(out, schedule, report)
		case "table", "":
			return printScheduleTable(out, schedule)
		default:
			return eris.Errorf("unknown format %q (use csv, xlsx, or table)", rentrollFormat)
		}
	},
}

// openOutput returns stdout for an empty path, else the created file.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create output file")
	}
	return f, func() { _ = f.Close() }, nil
}

func printScheduleTable(out io.Writer, schedule []model.RentRollEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tPERIOD\tBASE\tESCALATION\tTOTAL\tCUMULATIVE\tNOTE")
	for _, e := range schedule {
		fmt.Fprintf(w, "%d\t%s - %s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			e.MonthNumber,
			e.PeriodStart.Format("2006-01-02"), e.PeriodEnd.Format("2006-01-02"),
			e.BaseRent, e.EscalationAmount, e.TotalRent, e.CumulativeRent, e.EscalationNote)
	}
	return w.Flush()
}

func init() {
	rentrollCmd.Flags().StringVar(&rentrollFormat, "format", "table", "output format: csv, xlsx, or table")
	rentrollCmd.Flags().StringVar(&rentrollOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(rentrollCmd)
}
