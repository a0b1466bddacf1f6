package main

import (
	"os"

	"github.com/spf13/viper"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/config"
)

// resolveCatalogDir picks the catalog directory to load from: an explicit
// positional argument wins, then CUBEQL_PATH, then the working directory —
// the same flag-over-env-over-default precedence as
// nanostore/cmd/viper_cli.go's setupViperConfig.
func resolveCatalogDir(pathArg string) string {
	if pathArg != "" {
		return pathArg
	}

	v := viper.New()
	v.SetEnvPrefix("CUBEQL")
	_ = v.BindEnv("path")
	if p := v.GetString("path"); p != "" {
		return p
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// loadCatalog resolves the catalog directory, loads every YAML file in it,
// and validates the merged result before handing it back.
func loadCatalog(pathArg string) (*catalog.CubeCatalog, error) {
	dir := resolveCatalogDir(pathArg)
	debugf("loading catalog from %s", dir)

	cat, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := catalog.Validate(cat); err != nil {
		return nil, err
	}
	return cat, nil
}
