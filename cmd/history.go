package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/readiness/internal/adapters/repository"
	"github.com/okian/readiness/internal/config"
)

func newHistoryCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print an owner's saved assessments as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			backend, err := repository.Open(ctx, repository.OpenConfig{
				Driver:      cfg.StoreDriver,
				DSN:         cfg.StoreDSN,
				OwnerColumn: cfg.OwnerColumn(),
			})
			if err != nil {
				return err
			}
			history := repository.NewTimed(backend, repository.WithTimeout(cfg.StoreTimeout()))
			defer func() { _ = history.Close() }()

			records, err := history.QueryByOwner(ctx, owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				line, err := repository.MarshalRow(repository.RowFromRecord(rec), cfg.OwnerColumn())
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, string(line)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owner identity (user ID or company ID)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
