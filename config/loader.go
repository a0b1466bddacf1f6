// Package config loads a cube catalog from a directory of YAML files,
// mirroring the dotml compiler's load_cube_configs and the directory-walk
// style of nanostore/import/reader.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
)

// catalogFile is the on-disk shape of one catalog YAML file: a directory may
// split cubes and joins across several files, each declaring either.
type catalogFile struct {
	Cubes []catalog.Cube `yaml:"cubes"`
	Joins []catalog.Join `yaml:"joins"`
}

// Load reads every *.yaml/*.yml file directly under dir (non-recursive,
// matching the dotml loader) and merges their cubes and joins into a single
// catalog.CubeCatalog. Files are read in name order so a catalog assembled
// from the same directory is always byte-identical. The result is not
// validated; callers should run catalog.Validate before compiling against it.
func Load(dir string) (*catalog.CubeCatalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, errs.New(errs.InvalidCatalog, fmt.Sprintf("no *.yaml/*.yml files found in %s", dir))
	}

	merged := &catalog.CubeCatalog{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var cf catalogFile
		if err := yaml.Unmarshal(raw, &cf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		merged.Cubes = append(merged.Cubes, cf.Cubes...)
		merged.Joins = append(merged.Joins, cf.Joins...)
	}

	return merged, nil
}
