package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally-ho/internal/cli"
)

func taxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Show the tax breakdown for your budget",
		Long: `Show the federal, FICA, and state tax breakdown. Pass --status or
--deductions to update the budget's tax inputs first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if cmd.Flags().Changed("status") || cmd.Flags().Changed("deductions") {
				summary, err := svc.Summarize(ctx)
				if err != nil {
					return err
				}
				status := summary.Budget.FilingStatus
				deductions := summary.Budget.Deductions
				if cmd.Flags().Changed("status") {
					if status, err = parseFilingStatus(cmd.Flag("status").Value.String()); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("deductions") {
					if deductions, err = parseAmount(cmd.Flag("deductions").Value.String(), "--deductions"); err != nil {
						return err
					}
				}
				if err := svc.SetTaxInputs(ctx, status, deductions); err != nil {
					return err
				}
			}

			summary, err := svc.Summarize(ctx)
			if err != nil {
				return err
			}
			result := summary.Tax

			fmt.Println(cli.TitleStyle.Render(cli.CoinIcon + " Tax Breakdown"))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "Annual income\t%s\n", cli.FormatMoney(result.AnnualIncome))
			fmt.Fprintf(w, "Standard deduction\t%s\n", cli.FormatMoney(result.StandardDeduction))
			if !summary.Budget.Deductions.IsZero() {
				fmt.Fprintf(w, "Itemized deductions\t%s\n", cli.FormatMoney(summary.Budget.Deductions))
			}
			fmt.Fprintf(w, "Taxable income\t%s\n", cli.FormatMoney(result.TaxableIncome))
			fmt.Fprintln(w, "\t")

			for _, line := range result.Brackets {
				fmt.Fprintf(w, "  %s bracket\t%s on %s\n",
					cli.FormatPercent(line.Rate),
					cli.FormatMoney(line.Amount),
					cli.FormatMoney(line.Taxed))
			}
			fmt.Fprintf(w, "Federal tax\t%s\n", cli.FormatMoney(result.FederalTax))
			fmt.Fprintln(w, "\t")

			fmt.Fprintf(w, "  Social Security\t%s\n", cli.FormatMoney(result.FICA.SocialSecurity))
			fmt.Fprintf(w, "  Medicare\t%s\n", cli.FormatMoney(result.FICA.Medicare))
			if result.FICA.AdditionalMedicare.IsPositive() {
				fmt.Fprintf(w, "  Additional Medicare\t%s\n", cli.FormatMoney(result.FICA.AdditionalMedicare))
			}
			fmt.Fprintf(w, "FICA\t%s\n", cli.FormatMoney(result.FICA.Total))
			fmt.Fprintf(w, "State tax\t%s\n", cli.FormatMoney(result.StateTax))
			fmt.Fprintln(w, "\t")

			fmt.Fprintf(w, "%s\t%s (%s/month)\n",
				cli.BoldStyle.Render("Total tax"),
				cli.FormatMoney(result.TotalTax),
				cli.FormatMoney(result.MonthlyTotal().Round(2)))
			fmt.Fprintf(w, "Marginal rate\t%s\n", cli.FormatPercent(result.MarginalRate))
			fmt.Fprintf(w, "Effective rate\t%s\n", cli.FormatPercent(result.EffectiveRate))

			return w.Flush()
		},
	}

	cmd.Flags().String("status", "", "filing status (single, married-jointly, married-separately, head-of-household)")
	cmd.Flags().String("deductions", "", "itemized deductions beyond the standard deduction")
	return cmd
}
