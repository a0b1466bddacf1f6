package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/compile"
)

var queryCmd = &cobra.Command{
	Use:   "query <query-json> [path]",
	Short: "Compile a JSON-encoded query into SQL",
	Long: `Compile a JSON-encoded query (fields, filters, sorts, limit) against the
catalog directory into a single executable SQL string.

Examples:
  cubeql query '{"fields":["orders.total_amount","orders.region"]}'
  cubeql query '{"fields":["orders.count"],"sorts":["orders.count desc"]}' ./catalogs`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var q catalog.Query
		if err := json.Unmarshal([]byte(args[0]), &q); err != nil {
			return fmt.Errorf("parsing query json: %w", err)
		}

		pathArg := ""
		if len(args) == 2 {
			pathArg = args[1]
		}

		cat, err := loadCatalog(pathArg)
		if err != nil {
			return err
		}

		sql, err := compile.Compile(cat, &q, &compile.Options{Debugf: debugf})
		if err != nil {
			return err
		}

		fmt.Println(sql)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
