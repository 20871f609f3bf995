package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally-ho/internal/cli"
	"github.com/Veraticus/tally-ho/internal/model"
)

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create your budget",
		Long: `Create the budget with your income and tax inputs. Once income is set,
the surplus category is derived automatically.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			income, err := parseAmount(cmd.Flag("income").Value.String(), "--income")
			if err != nil {
				return err
			}
			period, err := parsePeriod(cmd.Flag("period").Value.String())
			if err != nil {
				return err
			}
			status, err := parseFilingStatus(cmd.Flag("status").Value.String())
			if err != nil {
				return err
			}
			deductions, err := parseAmount(cmd.Flag("deductions").Value.String(), "--deductions")
			if err != nil {
				return err
			}

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := svc.SetupBudget(ctx, &model.Budget{
				Income:       income,
				IncomePeriod: period,
				FilingStatus: status,
				Deductions:   deductions,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget created: %s %s income, filing %s",
				cli.FormatMoney(budget.Income), budget.IncomePeriod, budget.FilingStatus)))
			return nil
		},
	}

	cmd.Flags().String("income", "0", "income amount")
	cmd.Flags().String("period", "monthly", "income period (monthly, annual)")
	cmd.Flags().String("status", "single", "filing status (single, married-jointly, married-separately, head-of-household)")
	cmd.Flags().String("deductions", "0", "itemized deductions beyond the standard deduction")
	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income <amount>",
		Short: "Update budget income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			income, err := parseAmount(args[0], "amount")
			if err != nil {
				return err
			}
			period, err := parsePeriod(cmd.Flag("period").Value.String())
			if err != nil {
				return err
			}

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := svc.SetIncome(ctx, income, period); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Income set to %s %s",
				cli.FormatMoney(income), period)))
			return nil
		},
	}

	cmd.Flags().String("period", "monthly", "income period (monthly, annual)")
	return cmd
}
