package main

import (
	"strings"

	"agora/internal/platform/config"
	"agora/internal/platform/logger"
	"agora/internal/platform/store/migrate"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	var skipCH bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres and clickhouse migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l := logger.Named("migrate")

			st, err := openStore(ctx, config.New(), "migrate", backends{ch: !skipCH})
			if err != nil {
				return err
			}
			defer closeStore(st)

			res, err := migrate.Postgres(ctx, st.PG)
			if err != nil {
				return err
			}
			l.Info().Str("applied", strings.Join(res.Applied, ",")).Int("skipped", len(res.Skipped)).Msg("postgres migrated")

			if st.CH == nil {
				l.Info().Msg("clickhouse not configured, skipping")
				return nil
			}
			res, err = migrate.Clickhouse(ctx, st.CH)
			if err != nil {
				return err
			}
			l.Info().Str("applied", strings.Join(res.Applied, ",")).Int("skipped", len(res.Skipped)).Msg("clickhouse migrated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCH, "skip-clickhouse", false, "Only migrate postgres")
	return cmd
}
