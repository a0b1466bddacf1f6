// Package variant expands a catalog.FieldDecl tagged with variants into a
// family of concrete catalog.ResolvedField values by substituting each
// VariantSpec's placeholder in turn. Multiple VariantSpecs on one field are
// concatenated, not cross-producted, matching the dotml compiler's
// expand_variants.
package variant

import (
	"fmt"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/internal/template"
)

// Names returns the expanded field names a declaration produces, without
// running the template engine. For a field with no variants this is just
// the declared name; for a field with variants it is the concatenation of
// "<name>_<alias>" across every VariantSpec's values. The Field Resolver
// uses this so that its field enumeration matches what Expand produces (the
// variant enumeration law): both apply the same naming rule in the same
// order, and TestNamesMatchesExpandOutput checks that they agree.
func Names(decl catalog.FieldDecl) []string {
	if len(decl.Variants) == 0 {
		return []string{decl.Name}
	}
	var names []string
	for _, spec := range decl.Variants {
		for _, v := range spec.Values {
			names = append(names, decl.Name+"_"+v.Alias)
		}
	}
	return names
}

// Expand turns decls (one cube section: dimensions, metrics, or
// window_metrics) into resolved fields tagged with kind, expanding variants
// along the way. Because catalog.ResolvedField carries no Variants field of
// its own, re-running Expand on its output is a type-level no-op: there is
// nothing left to expand, which is how idempotence is guaranteed rather than
// merely tested for.
func Expand(decls []catalog.FieldDecl, kind catalog.Kind) ([]catalog.ResolvedField, error) {
	var out []catalog.ResolvedField
	for _, decl := range decls {
		if len(decl.Variants) == 0 {
			out = append(out, catalog.ResolvedField{
				Name:       decl.Name,
				SQL:        decl.SQL,
				Kind:       kind,
				PrimaryKey: decl.PrimaryKey,
			})
			continue
		}

		for _, spec := range decl.Variants {
			for _, v := range spec.Values {
				sql, err := template.Substitute(decl.SQL, map[string]string{spec.Placeholder: v.Value}, false)
				if err != nil {
					return nil, fmt.Errorf("expanding variant %s=%s on field %s: %w", spec.Placeholder, v.Alias, decl.Name, err)
				}
				out = append(out, catalog.ResolvedField{
					Name:       decl.Name + "_" + v.Alias,
					SQL:        sql,
					Kind:       kind,
					PrimaryKey: decl.PrimaryKey,
				})
			}
		}
	}
	return out, nil
}
