package main

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/config"
	"github.com/dropDatabas3/wahlbot/internal/store/pg"
	migrations "github.com/dropDatabas3/wahlbot/migrations/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de PostgreSQL (goose, SQL embebido)",
	}

	run := func(name string, fn func(context.Context, *pgxpool.Pool) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "goose " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openPostgres(cmd.Context(), opts.cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				return fn(cmd.Context(), st.Pool())
			},
		}
	}

	cmd.AddCommand(run("up", migrations.Up))
	cmd.AddCommand(run("down", migrations.Down))
	cmd.AddCommand(run("status", migrations.Status))
	return cmd
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	if cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("migrate: storage.driver is %q, migrations need postgres", cfg.Storage.Driver)
	}
	return pg.Open(ctx, cfg.Storage.DSN, pg.PoolConfig{
		MaxOpenConns: 2,
		InitRetries:  1,
	})
}
