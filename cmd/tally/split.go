package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally-ho/internal/cli"
	"github.com/Veraticus/tally-ho/internal/model"
	"github.com/Veraticus/tally-ho/internal/split"
)

// lineSpec is one parsed --line flag: a category and either a fixed amount or
// the use-remaining designation.
type lineSpec struct {
	categoryID   int64
	amount       string
	useRemaining bool
}

func parseLineSpec(value string) (lineSpec, error) {
	idPart, amountPart, ok := strings.Cut(value, "=")
	if !ok {
		return lineSpec{}, fmt.Errorf("invalid --line %q: expected categoryID=amount or categoryID=rest", value)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return lineSpec{}, fmt.Errorf("invalid --line %q: bad category id", value)
	}
	if amountPart == "rest" {
		return lineSpec{categoryID: id, useRemaining: true}, nil
	}
	return lineSpec{categoryID: id, amount: amountPart}, nil
}

// buildSet constructs a split set from parsed line specs. Lines are added
// first so the use-remaining designation can be placed deliberately.
func buildSet(amount string, specs []lineSpec) (*split.Set, error) {
	d, err := parseAmount(amount, "amount")
	if err != nil {
		return nil, err
	}

	set := split.NewSet(d)
	for i := 1; i < len(specs); i++ {
		if err := set.AddSplit(); err != nil {
			return nil, err
		}
	}

	// Clear the automatic designation; the specs decide who holds it.
	if idx := set.UseRemainingIndex(); idx >= 0 {
		if err := set.ToggleUseRemaining(idx); err != nil {
			return nil, err
		}
	}

	for i, spec := range specs {
		if err := set.SetCategory(i, spec.categoryID); err != nil {
			return nil, err
		}
		if spec.useRemaining {
			if err := set.ToggleUseRemaining(i); err != nil {
				return nil, err
			}
			continue
		}
		lineAmount, err := parseAmount(spec.amount, "--line")
		if err != nil {
			return nil, err
		}
		if err := set.SetAmount(i, lineAmount); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func splitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <amount>",
		Short: "Split a transaction across categories",
		Long: `Apportion a transaction's amount across one or more categories. Each
--line takes categoryID=amount, or categoryID=rest to assign whatever the
other lines leave over. The line amounts must add up to the transaction
amount.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lineValues, _ := cmd.Flags().GetStringSlice("line")
			if len(lineValues) == 0 {
				return fmt.Errorf("at least one --line is required")
			}
			specs := make([]lineSpec, 0, len(lineValues))
			for _, v := range lineValues {
				spec, err := parseLineSpec(v)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			set, err := buildSet(args[0], specs)
			if err != nil {
				return err
			}

			txnID := cmd.Flag("id").Value.String()
			if txnID == "" {
				txnID = uuid.NewString()
			}
			amount, err := parseAmount(args[0], "amount")
			if err != nil {
				return err
			}
			txn := &model.Transaction{
				ID:           txnID,
				Name:         cmd.Flag("name").Value.String(),
				MerchantName: cmd.Flag("merchant").Value.String(),
				Amount:       amount,
				Date:         time.Now(),
			}

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			assignments, err := svc.CommitSplits(ctx, txn, set)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Committed %d split(s) for transaction %s", len(assignments), txn.ID)))
			for _, a := range assignments {
				fmt.Printf("  category %d\t%s\n", a.CategoryID, cli.FormatMoney(a.Amount))
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("line", nil, "split line as categoryID=amount or categoryID=rest (repeatable)")
	cmd.Flags().String("name", "", "transaction name")
	cmd.Flags().String("merchant", "", "merchant name")
	cmd.Flags().String("id", "", "transaction id (generated when empty)")
	return cmd
}
