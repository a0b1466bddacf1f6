package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/internal/variant"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <cube> [path]",
	Short: "List every dimension, metric, and window metric field on a cube",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cubeName := args[0]
		pathArg := ""
		if len(args) == 2 {
			pathArg = args[1]
		}

		cat, err := loadCatalog(pathArg)
		if err != nil {
			return err
		}

		cube := cat.CubeByName(cubeName)
		if cube == nil {
			return fmt.Errorf("no such cube %q", cubeName)
		}

		printSection("dimension", cube.Name, cube.Dimensions)
		printSection("metric", cube.Name, cube.Metrics)
		printSection("window_metric", cube.Name, cube.WindowMetrics)
		return nil
	},
}

func printSection(kind, cubeName string, decls []catalog.FieldDecl) {
	for _, d := range decls {
		for _, name := range variant.Names(d) {
			fmt.Printf("%s\t%s.%s\n", kind, cubeName, name)
		}
	}
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
