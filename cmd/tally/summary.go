package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally-ho/internal/allocation"
	"github.com/Veraticus/tally-ho/internal/cli"
	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/model"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly allocation summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, err := svc.Summarize(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(cli.CoinIcon + " Monthly Summary"))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "Gross income\t%s\n", cli.FormatMoney(summary.Budget.MonthlyIncome().Round(2)))
			fmt.Fprintf(w, "Taxes\t%s\n", cli.FormatMoney(summary.Tax.MonthlyTotal().Round(2)))
			fmt.Fprintf(w, "Net income\t%s\n", cli.FormatMoney(summary.NetIncome.Round(2)))
			fmt.Fprintln(w, "\t")

			for i := range summary.Categories {
				cat := &summary.Categories[i]
				amount := allocation.EffectiveMonthlyAmount(cat)
				label := cat.Name
				if cat.Type == model.CategoryTypeSavings && cat.AccumulatedTotal.IsPositive() {
					label = fmt.Sprintf("%s (saved %s)", cat.Name, cli.FormatMoney(cat.AccumulatedTotal))
				}
				fmt.Fprintf(w, "%s %s\t%s\n", cli.Swatch(cat.Color), label, cli.FormatMoney(amount.Round(2)))
			}
			fmt.Fprintln(w, "\t")

			fmt.Fprintf(w, "Allocated\t%s\n", cli.FormatMoney(summary.TotalAllocated.Round(2)))
			fmt.Fprintf(w, "Savings\t%s\n", cli.FormatMoney(summary.TotalSavings.Round(2)))
			fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Remaining"), cli.FormatMoney(summary.Remaining.Round(2)))
			if err := w.Flush(); err != nil {
				return err
			}

			if err := svc.Check(ctx); err != nil {
				var verr *common.ValidationError
				if errors.As(err, &verr) {
					fmt.Println(cli.FormatWarning(verr.Message))
					return nil
				}
				return err
			}
			return nil
		},
	}
}
