package main

import (
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "cubeql",
	Short: "Compile a semantic-layer cube query into SQL",
	Long: `cubeql compiles a declarative cube/dimension/metric/join catalog and a
structured query into a single executable SQL string, resolving the fan-out
problem across joined cubes with per-cube dimension and metric CTEs.

Examples:
  cubeql cubes
  cubeql fields orders
  cubeql query '{"fields":["orders.total_amount"]}'`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging(logLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log verbosity: debug|info|warn|error")
}
