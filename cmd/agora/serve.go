package main

import (
	"agora/internal/platform/config"
	"agora/internal/platform/logger"
	phttp "agora/internal/platform/net/http"
	"agora/internal/services/api"

	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the comments HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			root := config.New()
			apiCfg := root.Prefix("CORE_API_")
			l := logger.Get()

			st, err := openStore(ctx, root, "api", backends{ch: true, redis: true})
			if err != nil {
				return err
			}
			defer closeStore(st)

			if err := st.Guard(ctx); err != nil {
				l.Warn().Err(err).Msg("store guard reported problems")
			}

			// reads CORE_API_API_PORT
			srv := phttp.NewServer(apiCfg)
			api.Mount(srv.Router(), api.Options{
				Config:         apiCfg,
				Store:          st,
				Logger:         l,
				EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
				EnableProfiler: apiCfg.MayBool("PROFILER", false),
			})

			l.Info().Str("addr", srv.Addr()).Msg("serving comments api")
			return srv.Run(ctx)
		},
	}
}
