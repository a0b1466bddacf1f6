package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cubesCmd = &cobra.Command{
	Use:   "cubes [path]",
	Short: "List every cube declared in the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pathArg := ""
		if len(args) == 1 {
			pathArg = args[0]
		}

		cat, err := loadCatalog(pathArg)
		if err != nil {
			return err
		}

		for _, cube := range cat.Cubes {
			fmt.Printf("%s\t%s\n", cube.Name, cube.Table)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cubesCmd)
}
