package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally-ho/internal/allocation"
	"github.com/Veraticus/tally-ho/internal/cli"
	"github.com/Veraticus/tally-ho/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage budget categories",
		Long:  `List, add, update, and delete the categories your income is allocated across.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
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
			if len(summary.Categories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No categories yet. Use 'tally categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Type"),
				cli.BoldStyle.Render("Monthly"),
				cli.BoldStyle.Render("Color"))

			for i := range summary.Categories {
				cat := &summary.Categories[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					cat.ID, cat.Name, cat.Type,
					cli.FormatMoney(allocation.EffectiveMonthlyAmount(cat)),
					cli.Swatch(cat.Color))
			}
			return nil
		},
	}
}

// parseSubItems parses repeated --item name=amount flags.
func parseSubItems(values []string) ([]model.SubItem, error) {
	var items []model.SubItem
	for _, v := range values {
		name, amount, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --item %q: expected name=amount", v)
		}
		d, err := parseAmount(amount, "--item")
		if err != nil {
			return nil, err
		}
		items = append(items, model.SubItem{Name: name, Amount: d, Period: model.PeriodMonthly})
	}
	return items, nil
}

func categoryFromFlags(cmd *cobra.Command) (*model.Category, error) {
	amount, err := parseAmount(cmd.Flag("amount").Value.String(), "--amount")
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod(cmd.Flag("period").Value.String())
	if err != nil {
		return nil, err
	}
	items, err := parseSubItems(mustStringSlice(cmd, "item"))
	if err != nil {
		return nil, err
	}

	hide, _ := cmd.Flags().GetBool("hide")
	taxDeductible, _ := cmd.Flags().GetBool("tax-deductible")
	ficaExempt, _ := cmd.Flags().GetBool("fica-exempt")
	unconnected, _ := cmd.Flags().GetBool("unconnected")

	return &model.Category{
		Name:                 cmd.Flag("name").Value.String(),
		Type:                 model.CategoryType(cmd.Flag("type").Value.String()),
		AllocatedAmount:      amount,
		Period:               period,
		Color:                cmd.Flag("color").Value.String(),
		ExpectedMerchantName: cmd.Flag("merchant").Value.String(),
		HideFromTransactions: hide,
		IsTaxDeductible:      taxDeductible,
		IsSubjectToFica:      !ficaExempt,
		IsUnconnectedAccount: unconnected,
		SubItems:             items,
	}, nil
}

func mustStringSlice(cmd *cobra.Command, name string) []string {
	values, _ := cmd.Flags().GetStringSlice(name)
	return values
}

func addCategoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "category name")
	cmd.Flags().String("type", "variable", "category type (fixed, variable, savings, excluded)")
	cmd.Flags().String("amount", "0", "allocated amount")
	cmd.Flags().String("period", "monthly", "allocation period (monthly, annual)")
	cmd.Flags().String("color", "", "palette color (assigned automatically when empty)")
	cmd.Flags().String("merchant", "", "expected merchant name (fixed categories)")
	cmd.Flags().Bool("hide", false, "hide from transaction lists (fixed categories)")
	cmd.Flags().Bool("tax-deductible", false, "contributions reduce taxable income (savings categories)")
	cmd.Flags().Bool("fica-exempt", false, "contributions reduce the FICA wage base (savings categories)")
	cmd.Flags().Bool("unconnected", false, "savings account has no connected feed")
	cmd.Flags().StringSlice("item", nil, "sub-item as name=amount (repeatable; overrides --amount)")
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			category, err := categoryFromFlags(cmd)
			if err != nil {
				return err
			}

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := svc.AddCategory(ctx, category)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s category %q (%s/month)",
				created.Type, created.Name, cli.FormatMoney(allocation.EffectiveMonthlyAmount(created)))))
			return nil
		},
	}

	addCategoryFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			category, err := categoryFromFlags(cmd)
			if err != nil {
				return err
			}
			category.ID = id

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := svc.UpdateCategory(ctx, category); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %d", id)))
			return nil
		},
	}

	addCategoryFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			svc, store, err := initService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := svc.DeleteCategory(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}
}
