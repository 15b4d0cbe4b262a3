package main

import (
	"context"
	"fmt"
	"os"

	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	check   bool
)

var rootCmd = &cobra.Command{
	Use:   "tlgen",
	Short: "Compile TL schemas and RPC error tables into Go source",
	Long: `tlgen compiles a TL schema into Go types with binary encoders, decoders
and a constructor-id registry, and an RPC error table into a classifier.

Without a subcommand both passes run from the working directory:
  tlgen             # api and errors
  tlgen api         # TL schema only
  tlgen errors      # error table only
  tlgen --check     # fail if generated files are out of date
  tlgen watch       # regenerate on change
  tlgen init        # write a tlgen.toml template`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		_, err = pipeline.RunAll(cmd.Context(), cfg, pipeline.Options{Check: check})
		return finish(cfg, err)
	},
}

// Execute runs the command tree; any error goes to stderr with exit code 1.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tlgen:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVar(&check, "check", false, "compare generated files with the output instead of writing")
}

// finish writes the metrics textfile whatever the outcome of the run.
func finish(cfg config.Config, runErr error) error {
	if err := pipeline.WriteMetrics(cfg); err != nil && runErr == nil {
		return err
	}
	return runErr
}
