package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly budgets",
	}
	cmd.AddCommand(budgetSetCmd())
	return cmd
}

func budgetSetCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:     "set MONTH CATEGORY AMOUNT",
		Short:   "Set the limit of a parent category for one month",
		Example: "  ledgerctl budget set 2026-03 food 2.500.000\n  ledgerctl budget set 2026-03 food 800000 --scope bob",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, store, pool, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			input := service.UpsertBudgetInput{
				Month:       args[0],
				CategoryID:  args[1],
				LimitAmount: limit,
				Source:      domain.BudgetSourceCLI,
			}
			if scope != "" {
				input.ScopeUserID = &scope
			}

			budgets := service.NewBudgetService(store, util.NewClock(cfg.Location))
			budget, err := budgets.Upsert(ctx, input)
			if err != nil {
				return err
			}

			who := "household"
			if budget.ScopeUserID != nil {
				who = *budget.ScopeUserID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s): %s\n", budget.Month, budget.CategoryID, who, util.FormatIDR(budget.LimitAmount))
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "limit the budget to one user id")
	return cmd
}

// parseAmount accepts plain digits or dot-grouped rupiah such as 2.500.000
func parseAmount(raw string) (int64, error) {
	cleaned := strings.NewReplacer(".", "", "_", "", ",", "").Replace(strings.TrimSpace(raw))
	amount, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q: expected a positive whole number", raw)
	}
	return amount, nil
}
