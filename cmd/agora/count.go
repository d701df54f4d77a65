package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"agora/internal/adapters/activity"
	"agora/internal/modkit/module"
	"agora/internal/platform/config"
	"agora/internal/services/api"
	commentsdom "agora/internal/services/comments/domain"

	"github.com/spf13/cobra"
)

func pageArg(args []string) (int64, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("page id must be a non negative integer, got %q", args[0])
	}
	return id, nil
}

func countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <pageID>",
		Short: "Print the comment count of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := pageArg(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			root := config.New()

			st, err := openStore(ctx, root, "cli", backends{})
			if err != nil {
				return err
			}
			defer closeStore(st)

			apiCfg := root.Prefix("CORE_API_")
			for _, m := range api.Modules(api.Options{Config: apiCfg, Store: st}) {
				module.Register(m.Name(), m.Ports())
			}
			svc, ok := module.Lookup[commentsdom.ServicePort]("comments")
			if !ok {
				return fmt.Errorf("comments module exports no service port")
			}
			out, err := svc.Count(ctx, pageID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Count)
			return nil
		},
	}
}

func activityCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity <pageID>",
		Short: "Print recent comment events of a page from clickhouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := pageArg(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := openStore(ctx, config.New(), "cli", backends{ch: true})
			if err != nil {
				return err
			}
			defer closeStore(st)
			if st.CH == nil {
				return fmt.Errorf("SERVICE_CLICKHOUSE_DBURL is not set")
			}

			events, err := activity.New(st.CH).Recent(ctx, pageID, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ev := range events {
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum events to print")
	return cmd
}
