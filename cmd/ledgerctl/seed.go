package main

import (
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var users []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories, shared account and household users",
		Long: `Seed inserts the default category tree, a shared cash account and every
--user given as id:Name. Existing rows are left untouched.`,
		Example: "  ledgerctl seed --user alice:Alice --user bob:Bob",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseUsers(users)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, store, pool, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := service.Seed(ctx, store, parsed, cfg.DefaultCurrency)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d user(s), %d categories, %d account(s)\n",
				result.Users, result.Categories, result.Accounts)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&users, "user", nil, "household member as id:Name (repeatable)")
	return cmd
}

func parseUsers(values []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(values))
	for _, v := range values {
		id, name, ok := strings.Cut(v, ":")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			return nil, fmt.Errorf("invalid --user %q: expected id:Name", v)
		}
		users = append(users, domain.User{ID: id, DisplayName: name})
	}
	return users, nil
}
