package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever a schema or error table changes",
	Long: `Run both passes, then watch the source directories and the config
directory and run them again after every change. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return pipeline.Watch(ctx, cfg, func(ctx context.Context) (config.Config, error) {
			// pick up edits to tlgen.toml between runs
			current, err := config.Load(cfgFile)
			if err != nil {
				log.Warn().Err(err).Msg("config reload failed, keeping previous config")
				current = cfg
			}
			_, err = pipeline.RunAll(ctx, current, pipeline.Options{})
			return current, finish(current, err)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
