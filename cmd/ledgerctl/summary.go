package main

import (
	"encoding/json"

	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var (
		month string
		user  string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the monthly summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, store, pool, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			clock := util.NewClock(cfg.Location)
			summaries := service.NewSummaryService(store, clock, service.NewBudgetService(store, clock))
			if month == "" {
				month = summaries.CurrentMonth()
			}
			var userID *string
			if user != "" {
				userID = &user
			}

			summary, err := summaries.Monthly(ctx, month, userID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&user, "user", "", "restrict to one user id")
	return cmd
}
