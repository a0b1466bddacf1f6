// Package cubeview assembles, for one cube, the complete field table
// (dimensions, metrics, and window metrics, variants expanded) and the
// per-cube variable map the Template Engine substitutes against.
package cubeview

import (
	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/internal/variant"
)

// View is the per-compilation projection of a Cube: its alias, its full
// (variant-expanded) field table, and the variable map used to resolve
// every field's SQL template.
type View struct {
	Cube        *catalog.Cube
	Alias       string
	Fields      []catalog.ResolvedField
	FieldByName map[string]catalog.ResolvedField
	Vars        map[string]string
}

// Build assembles a View for cube under the given alias. Vars contains
// "table" -> alias, "<field>" -> field.SQL for every field, and
// "<cube>__<field>" -> field.SQL so that a filter's ${cube.field} reference
// (rewritten to ${cube__field}) resolves to the same SQL a bare ${field}
// reference would.
func Build(cube *catalog.Cube, alias string) (*View, error) {
	var fields []catalog.ResolvedField

	dims, err := variant.Expand(cube.Dimensions, catalog.Dimension)
	if err != nil {
		return nil, err
	}
	fields = append(fields, dims...)

	metrics, err := variant.Expand(cube.Metrics, catalog.Metric)
	if err != nil {
		return nil, err
	}
	fields = append(fields, metrics...)

	windows, err := variant.Expand(cube.WindowMetrics, catalog.WindowMetric)
	if err != nil {
		return nil, err
	}
	fields = append(fields, windows...)

	byName := make(map[string]catalog.ResolvedField, len(fields))
	vars := map[string]string{"table": alias}
	for _, f := range fields {
		byName[f.Name] = f
		vars[f.Name] = f.SQL
		vars[cube.Name+"__"+f.Name] = f.SQL
	}

	return &View{
		Cube:        cube,
		Alias:       alias,
		Fields:      fields,
		FieldByName: byName,
		Vars:        vars,
	}, nil
}
