package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
	"github.com/arthur-debert/cubeql/internal/cubeview"
	"github.com/arthur-debert/cubeql/internal/template"
)

const defaultLimit = 5000

type selectedField struct {
	field catalog.ResolvedField
	sql   string
}

// compileSingle emits a flat query against a single cube: no joins are
// needed because every queried field belongs to it.
func compileSingle(cube *catalog.Cube, q *catalog.Query, opts *Options, alias string) (string, error) {
	view, err := cubeview.Build(cube, alias)
	if err != nil {
		return "", err
	}

	var selectFields []selectedField
	var windowFields []selectedField

	for _, qf := range q.Fields {
		_, name, ok := catalog.SplitQualifiedField(qf)
		if !ok {
			return "", errs.New(errs.UnknownField, qf)
		}
		field, ok := view.FieldByName[name]
		if !ok {
			return "", errs.New(errs.UnknownField, qf)
		}

		if field.Kind == catalog.WindowMetric {
			windowFields = append(windowFields, selectedField{field: field, sql: template.StripMarkers(field.SQL)})
			continue
		}

		sql, err := template.Substitute(field.SQL, view.Vars, true)
		if err != nil {
			return "", errs.Wrap(errs.RecursionLimit, qf, err)
		}
		selectFields = append(selectFields, selectedField{field: field, sql: sql})
	}

	selectExpr := joinSelected(selectFields)
	fromExpr := fmt.Sprintf("%s as %s", cube.Table, alias)

	whereExpr, err := buildWhere(q.Filters, view.Vars)
	if err != nil {
		return "", err
	}

	groupExpr := singleGroupBy(selectFields, len(windowFields) > 0, opts)
	orderExpr := singleOrderBy(q.Sorts, selectFields, opts)

	body := Emit(Statement{
		Select:  selectExpr,
		From:    fromExpr,
		Where:   whereExpr,
		GroupBy: groupExpr,
		OrderBy: orderExpr,
	})

	if len(windowFields) > 0 {
		winParts := make([]string, len(windowFields))
		for i, wf := range windowFields {
			winParts[i] = fmt.Sprintf("%s as %s", wf.sql, wf.field.Name)
		}
		body = fmt.Sprintf("with %s_base as (\n%s\n)\nselect *, %s\nfrom %s_base",
			alias, body, strings.Join(winParts, ", "), alias)
	}

	limit := defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	body += fmt.Sprintf("\nlimit %d", limit)

	return body, nil
}

func joinSelected(fields []selectedField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s as %s", f.sql, f.field.Name)
	}
	return strings.Join(parts, ", ")
}

// buildWhere rewrites each filter's ${cube.field} references to
// ${cube__field}, substitutes against vars, and joins the results with
// "and", each wrapped in parens.
func buildWhere(filters []string, vars map[string]string) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		rewritten := template.RewriteQualifiedRefs(f)
		resolved, err := template.Substitute(rewritten, vars, true)
		if err != nil {
			return "", errs.Wrap(errs.RecursionLimit, f, err)
		}
		parts[i] = fmt.Sprintf("(%s)", resolved)
	}
	return strings.Join(parts, " and "), nil
}

// singleGroupBy returns the 1-based positions of every Dimension field
// within the select list. The reference compiler emits it whenever any
// dimension is present, even with nothing to aggregate; Options.
// SuppressEmptyGroupBy opts into requiring an aggregate too.
func singleGroupBy(fields []selectedField, hasWindow bool, opts *Options) string {
	var positions []string
	hasAggregate := hasWindow
	for i, f := range fields {
		if f.field.Kind == catalog.Dimension {
			positions = append(positions, strconv.Itoa(i+1))
		}
		if f.field.Kind == catalog.Metric {
			hasAggregate = true
		}
	}
	if len(positions) == 0 {
		return ""
	}
	if opts.SuppressEmptyGroupBy && !hasAggregate {
		return ""
	}
	return strings.Join(positions, ", ")
}

// singleOrderBy maps each sort's field name to its 1-based position in the
// select list.
func singleOrderBy(sorts []string, fields []selectedField, opts *Options) string {
	if len(sorts) == 0 {
		return ""
	}
	var parts []string
	for _, s := range sorts {
		spec := catalog.ParseSort(s)
		_, name, ok := catalog.SplitQualifiedField(spec.Field)
		if !ok {
			continue
		}
		pos := indexOfFieldName(fields, name)
		if pos < 0 {
			continue
		}
		entry := strconv.Itoa(pos + 1)
		if opts.EmitSortDirection && spec.Descending {
			entry += " desc"
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, ", ")
}

func indexOfFieldName(fields []selectedField, name string) int {
	for i, f := range fields {
		if f.field.Name == name {
			return i
		}
	}
	return -1
}
