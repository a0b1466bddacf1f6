// Package compile turns a validated (catalog.CubeCatalog, catalog.Query)
// pair into a single executable SQL string. It dispatches to the
// single-cube or multi-cube compiler depending on how many cubes the Field
// Resolver says are needed, and is a synchronous pure function: no I/O, no
// shared mutable state across compilations, memory-bounded by the size of
// the catalog and the query.
package compile

import (
	"github.com/google/uuid"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
	"github.com/arthur-debert/cubeql/internal/cubeview"
	"github.com/arthur-debert/cubeql/resolve"
)

// Compile validates cat, resolves q against it, and emits the SQL answering
// q. opts may be nil to take every default.
func Compile(cat *catalog.CubeCatalog, q *catalog.Query, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	debugf := opts.debugf()
	traceID := opts.TraceID
	if traceID == "" {
		traceID = uuid.NewString()
	}

	if err := catalog.Validate(cat); err != nil {
		return "", err
	}

	res, err := resolve.Resolve(cat, q)
	if err != nil {
		return "", err
	}
	debugf("[%s] needed cubes: %v", traceID, res.NeededCubes)

	aliasSrc := cubeview.NewAliasSource(opts.Rand)
	usedAliases := make(map[string]bool, len(res.NeededCubes))

	if len(res.NeededCubes) == 1 {
		cube := cat.CubeByName(res.NeededCubes[0])
		if cube == nil {
			return "", errs.New(errs.UnknownField, res.NeededCubes[0])
		}
		alias := aliasSrc.Alias(cube.Name, usedAliases)
		debugf("[%s] single-cube compile: cube=%s alias=%s", traceID, cube.Name, alias)
		return compileSingle(cube, q, opts, alias)
	}

	cubes := make([]*catalog.Cube, 0, len(res.NeededCubes))
	aliases := make(map[string]string, len(res.NeededCubes))
	for _, name := range res.NeededCubes {
		cube := cat.CubeByName(name)
		if cube == nil {
			return "", errs.New(errs.UnknownField, name)
		}
		cubes = append(cubes, cube)
		aliases[name] = aliasSrc.Alias(name, usedAliases)
	}
	debugf("[%s] multi-cube compile: cubes=%v aliases=%v", traceID, res.NeededCubes, aliases)
	return compileMulti(cat, cubes, aliases, q, res.AllQueryFields, opts)
}
