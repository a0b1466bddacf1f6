// Package resolve implements the Field Resolver: given a query and a cube
// catalog, it enumerates every fully qualified field available across all
// cubes, validates every field the query references (directly, through a
// filter, or through a sort), and determines the minimal set of cubes
// needed to answer it.
package resolve

import (
	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
	"github.com/arthur-debert/cubeql/internal/template"
	"github.com/arthur-debert/cubeql/internal/variant"
)

// Result is the outcome of resolving a query against a catalog.
type Result struct {
	// AllQueryFields is the deduplicated union of query.fields, every field
	// referenced by a filter, and every field named by a sort, in
	// first-seen order.
	AllQueryFields []string
	// NeededCubes is the distinct cube-name prefixes of AllQueryFields, in
	// first-seen order.
	NeededCubes []string
}

// Resolve validates q against cat and determines which cubes are needed to
// answer it.
func Resolve(cat *catalog.CubeCatalog, q *catalog.Query) (*Result, error) {
	allFields := allQualifiedFields(cat)

	var refs []string
	refs = append(refs, q.Fields...)
	refs = append(refs, filterRefs(q.Filters)...)
	refs = append(refs, sortRefs(q.Sorts)...)

	allQueryFields := dedup(refs)

	for _, f := range allQueryFields {
		if !allFields[f] {
			return nil, errs.New(errs.UnknownField, f)
		}
	}

	neededCubes := distinctCubePrefixes(allQueryFields)
	if len(neededCubes) == 0 {
		return nil, errs.New(errs.EmptyQuery, "")
	}

	return &Result{AllQueryFields: allQueryFields, NeededCubes: neededCubes}, nil
}

func allQualifiedFields(cat *catalog.CubeCatalog) map[string]bool {
	all := make(map[string]bool)
	for _, cube := range cat.Cubes {
		for _, section := range [][]catalog.FieldDecl{cube.Dimensions, cube.Metrics, cube.WindowMetrics} {
			for _, decl := range section {
				for _, name := range variant.Names(decl) {
					all[cube.Name+"."+name] = true
				}
			}
		}
	}
	return all
}

func filterRefs(filters []string) []string {
	var refs []string
	for _, f := range filters {
		refs = append(refs, template.FindRefs(f)...)
	}
	return refs
}

func sortRefs(sorts []string) []string {
	var refs []string
	for _, s := range sorts {
		refs = append(refs, catalog.ParseSort(s).Field)
	}
	return refs
}

func dedup(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func distinctCubePrefixes(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		cube, _, ok := catalog.SplitQualifiedField(f)
		if !ok {
			continue
		}
		if !seen[cube] {
			seen[cube] = true
			out = append(out, cube)
		}
	}
	return out
}
