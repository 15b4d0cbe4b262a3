package main

import (
	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/pipeline"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Compile the TL schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		_, err = pipeline.RunAPI(cmd.Context(), cfg, pipeline.Options{Check: check})
		return finish(cfg, err)
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
}
