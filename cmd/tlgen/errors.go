package main

import (
	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/pipeline"
	"github.com/spf13/cobra"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Compile the RPC error tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		_, err = pipeline.RunErrors(cmd.Context(), cfg, pipeline.Options{Check: check})
		return finish(cfg, err)
	},
}

func init() {
	rootCmd.AddCommand(errorsCmd)
}
