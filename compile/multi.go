package compile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
	"github.com/arthur-debert/cubeql/internal/cubeview"
	"github.com/arthur-debert/cubeql/internal/template"
)

// queriedDimension records which cube owns a dimension the query asked for
// and its resolved SQL, shared by field name across every cube's dimension
// and metric CTE so they can join on it.
type queriedDimension struct {
	ownerCube string
	sql       string
}

// cubeCtx is one needed cube's per-compilation working state: its view,
// primary key, attached joins, and the two CTEs built from them. Compilers
// own this; nothing here mutates the input catalog.
type cubeCtx struct {
	cube  *catalog.Cube
	alias string
	view  *cubeview.View
	joins []catalog.Join
	pk    []catalog.FieldDecl

	exposingDimensionCols []string // "<alias>_dimension.<name>", in column order
	exposingMetricsCols   []string // this cube's own queried field names, in column order
	dimensionCTE          string
	metricsCTE            string
}

// compileMulti emits a WITH statement that builds a dimension CTE and a
// metric CTE per needed cube, then joins the metric CTEs on the queried
// dimensions, avoiding the fan-out double-counting a naive join would cause.
func compileMulti(cat *catalog.CubeCatalog, cubes []*catalog.Cube, aliases map[string]string, q *catalog.Query, allQueryFields []string, opts *Options) (string, error) {
	ctxByName := make(map[string]*cubeCtx, len(cubes))
	order := make([]string, 0, len(cubes))

	for _, cube := range cubes {
		view, err := cubeview.Build(cube, aliases[cube.Name])
		if err != nil {
			return "", err
		}

		var pk []catalog.FieldDecl
		for _, d := range cube.Dimensions {
			if d.PrimaryKey {
				pk = append(pk, d)
			}
		}
		if len(pk) == 0 {
			return "", errs.New(errs.NoPrimaryKey, cube.Name)
		}

		var joins []catalog.Join
		for _, j := range cat.Joins {
			if j.Touches(cube.Name) {
				joins = append(joins, j)
			}
		}
		if len(joins) == 0 {
			return "", errs.New(errs.DisconnectedCube, cube.Name)
		}

		ctxByName[cube.Name] = &cubeCtx{
			cube:  cube,
			alias: aliases[cube.Name],
			view:  view,
			joins: joins,
			pk:    pk,
		}
		order = append(order, cube.Name)
	}

	allQueriedDimensions, dimensionOrder, err := findQueriedDimensions(order, ctxByName, allQueryFields)
	if err != nil {
		return "", err
	}

	for _, name := range order {
		if err := buildDimensionCTE(ctxByName[name], dimensionOrder, allQueriedDimensions, ctxByName); err != nil {
			return "", err
		}
	}

	for _, name := range order {
		if err := buildMetricsCTE(ctxByName[name], allQueryFields); err != nil {
			return "", err
		}
	}

	selectExpr := finalSelect(order, ctxByName)
	fromExpr := finalFrom(order, ctxByName, dimensionOrder)

	whereExpr, err := buildMultiWhere(q.Filters, order, ctxByName)
	if err != nil {
		return "", err
	}

	orderExpr := multiOrderBy(q.Sorts, ctxByName, opts)

	var limitExpr string
	if q.Limit != nil {
		limitExpr = strconv.Itoa(*q.Limit)
	}

	var withParts []string
	for _, name := range order {
		withParts = append(withParts, ctxByName[name].dimensionCTE)
	}
	for _, name := range order {
		withParts = append(withParts, ctxByName[name].metricsCTE)
	}

	return Emit(Statement{
		With:    strings.Join(withParts, ",\n"),
		Select:  selectExpr,
		From:    fromExpr,
		Where:   whereExpr,
		OrderBy: orderExpr,
		Limit:   limitExpr,
	}), nil
}

// findQueriedDimensions collects every queried field that names a Dimension
// of the cube that owns it, resolving its SQL against that owner's
// variables. The result is indexed by field name (dimensions are joined on
// by name across cubes) and ordered by first appearance.
func findQueriedDimensions(order []string, ctxByName map[string]*cubeCtx, allQueryFields []string) (map[string]queriedDimension, []string, error) {
	dims := map[string]queriedDimension{}
	var dimOrder []string

	for _, name := range order {
		ctx := ctxByName[name]
		for _, qf := range allQueryFields {
			cubeName, fieldName, ok := catalog.SplitQualifiedField(qf)
			if !ok || cubeName != name {
				continue
			}
			field, ok := ctx.view.FieldByName[fieldName]
			if !ok || field.Kind != catalog.Dimension {
				continue
			}
			if _, exists := dims[fieldName]; exists {
				continue
			}
			resolved, err := template.Substitute(field.SQL, ctx.view.Vars, true)
			if err != nil {
				return nil, nil, errs.Wrap(errs.RecursionLimit, qf, err)
			}
			dims[fieldName] = queriedDimension{ownerCube: name, sql: resolved}
			dimOrder = append(dimOrder, fieldName)
		}
	}

	return dims, dimOrder, nil
}

// buildDimensionCTE materializes ctx's primary key alongside every
// foreign-owned dimension the query needs from ctx, joined in from the
// owning cube's table directly (only cubes with a declared join to ctx are
// reachable — join-path search beyond a direct edge is out of scope).
func buildDimensionCTE(ctx *cubeCtx, dimensionOrder []string, allQueriedDimensions map[string]queriedDimension, ctxByName map[string]*cubeCtx) error {
	var cols []string

	for i, pk := range ctx.pk {
		sql, err := template.Substitute(pk.SQL, ctx.view.Vars, true)
		if err != nil {
			return errs.Wrap(errs.RecursionLimit, ctx.cube.Name+"."+pk.Name, err)
		}
		cols = append(cols, fmt.Sprintf("%s as pk%d", sql, i))
	}

	var partnerOrder []string
	partnerSeen := map[string]bool{}
	for _, dimName := range dimensionOrder {
		d := allQueriedDimensions[dimName]
		if d.ownerCube == ctx.cube.Name {
			continue
		}
		cols = append(cols, fmt.Sprintf("%s as %s", d.sql, dimName))
		ctx.exposingDimensionCols = append(ctx.exposingDimensionCols, fmt.Sprintf("%s_dimension.%s", ctx.alias, dimName))
		if !partnerSeen[d.ownerCube] {
			partnerSeen[d.ownerCube] = true
			partnerOrder = append(partnerOrder, d.ownerCube)
		}
	}

	fromExpr := fmt.Sprintf("from %s as %s", ctx.cube.Table, ctx.alias)
	for _, partnerName := range partnerOrder {
		partner := ctxByName[partnerName]
		join, found := findJoin(ctx.joins, ctx.cube.Name, partnerName)
		if !found {
			continue
		}
		joinType := join.Type
		if _, cubeIsRight := join.Other(ctx.cube.Name); cubeIsRight {
			joinType = joinType.Reversed()
		}
		onSQL, err := template.Substitute(join.OnSQL, map[string]string{"left": ctx.alias, "right": partner.alias}, false)
		if err != nil {
			return errs.Wrap(errs.RecursionLimit, join.OnSQL, err)
		}
		fromExpr += fmt.Sprintf("\n%s %s as %s on %s", joinType.SQL(), partner.cube.Table, partner.alias, onSQL)
	}

	groupPositions := make([]string, len(cols))
	for i := range cols {
		groupPositions[i] = strconv.Itoa(i + 1)
	}

	ctx.dimensionCTE = fmt.Sprintf("%s_dimension as (\nselect %s\n%s\ngroup by %s\n)",
		ctx.alias, strings.Join(cols, ",\n"), fromExpr, strings.Join(groupPositions, ", "))
	return nil
}

func findJoin(joins []catalog.Join, a, b string) (catalog.Join, bool) {
	for _, j := range joins {
		if (j.Left == a && j.Right == b) || (j.Left == b && j.Right == a) {
			return j, true
		}
	}
	return catalog.Join{}, false
}

// buildMetricsCTE aggregates ctx's own queried dimensions and metrics
// against its dimension CTE, carrying through every foreign dimension the
// dimension CTE exposes so the final join has a column to match on.
func buildMetricsCTE(ctx *cubeCtx, allQueryFields []string) error {
	if len(ctx.pk) > 1 {
		return errs.New(errs.MultiColumnPKUnsupported, ctx.cube.Name)
	}

	var ownCols []string
	var ownDimPositions []int

	for _, qf := range allQueryFields {
		cubeName, fieldName, ok := catalog.SplitQualifiedField(qf)
		if !ok || cubeName != ctx.cube.Name {
			continue
		}
		field, ok := ctx.view.FieldByName[fieldName]
		if !ok {
			continue
		}
		if field.Kind == catalog.WindowMetric {
			return errs.New(errs.UnsupportedWindowInJoin, qf)
		}

		sql, err := template.Substitute(field.SQL, ctx.view.Vars, true)
		if err != nil {
			return errs.Wrap(errs.RecursionLimit, qf, err)
		}
		ownCols = append(ownCols, fmt.Sprintf("%s as %s", sql, field.Name))
		if field.Kind == catalog.Dimension {
			ownDimPositions = append(ownDimPositions, len(ownCols)-1)
		}
		ctx.exposingMetricsCols = append(ctx.exposingMetricsCols, field.Name)
	}

	allCols := append(append([]string{}, ctx.exposingDimensionCols...), ownCols...)
	selectExpr := strings.Join(allCols, ",\n")

	fromExpr := fmt.Sprintf("from %s as %s\njoin %s_dimension as %s_dimension on %s.id = %s_dimension.pk0",
		ctx.cube.Table, ctx.alias, ctx.alias, ctx.alias, ctx.alias, ctx.alias)

	var groupPositions []string
	for i := range ctx.exposingDimensionCols {
		groupPositions = append(groupPositions, strconv.Itoa(i+1))
	}
	offset := len(ctx.exposingDimensionCols)
	for _, p := range ownDimPositions {
		groupPositions = append(groupPositions, strconv.Itoa(offset+p+1))
	}

	ctx.metricsCTE = fmt.Sprintf("%s_metrics as (\nselect %s\n%s\ngroup by %s\n)",
		ctx.alias, selectExpr, fromExpr, strings.Join(groupPositions, ", "))
	return nil
}

func finalSelect(order []string, ctxByName map[string]*cubeCtx) string {
	var parts []string
	for _, name := range order {
		ctx := ctxByName[name]
		for _, f := range ctx.exposingMetricsCols {
			parts = append(parts, fmt.Sprintf("%s_metrics.%s", ctx.alias, f))
		}
	}
	return strings.Join(parts, ", ")
}

func finalFrom(order []string, ctxByName map[string]*cubeCtx, dimensionOrder []string) string {
	anchor := ctxByName[order[0]]
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s_metrics as %s_metrics", anchor.alias, anchor.alias))

	for _, name := range order[1:] {
		ctx := ctxByName[name]
		var onParts []string
		for _, d := range dimensionOrder {
			onParts = append(onParts, fmt.Sprintf("%s_metrics.%s = %s_metrics.%s", anchor.alias, d, ctx.alias, d))
		}
		b.WriteString(fmt.Sprintf("\njoin %s_metrics as %s_metrics on %s", ctx.alias, ctx.alias, strings.Join(onParts, " and ")))
	}
	return b.String()
}

// buildMultiWhere resolves filters against the union of every cube's
// variables (each pre-resolved once against its own cube, then merged),
// then rewrites each cube's bare table alias to its metrics-CTE alias using
// whole-token replacement — a substring replacement would corrupt a filter
// if one alias were a prefix of another.
func buildMultiWhere(filters []string, order []string, ctxByName map[string]*cubeCtx) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	allCubeVars := map[string]string{}
	for _, name := range order {
		ctx := ctxByName[name]
		for k, v := range ctx.view.Vars {
			resolved, err := template.Substitute(v, ctx.view.Vars, true)
			if err != nil {
				return "", errs.Wrap(errs.RecursionLimit, k, err)
			}
			allCubeVars[k] = resolved
		}
	}

	parts := make([]string, len(filters))
	for i, f := range filters {
		rewritten := template.RewriteQualifiedRefs(f)
		resolved, err := template.Substitute(rewritten, allCubeVars, true)
		if err != nil {
			return "", errs.Wrap(errs.RecursionLimit, f, err)
		}
		parts[i] = fmt.Sprintf("(%s)", resolved)
	}
	whereExpr := strings.Join(parts, " and ")

	for _, name := range order {
		ctx := ctxByName[name]
		whereExpr = replaceAliasToken(whereExpr, ctx.alias, ctx.alias+"_metrics")
	}

	return whereExpr, nil
}

func replaceAliasToken(s, alias, replacement string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\b`)
	return re.ReplaceAllString(s, replacement)
}

func multiOrderBy(sorts []string, ctxByName map[string]*cubeCtx, opts *Options) string {
	if len(sorts) == 0 {
		return ""
	}
	var parts []string
	for _, s := range sorts {
		spec := catalog.ParseSort(s)
		cubeName, fieldName, ok := catalog.SplitQualifiedField(spec.Field)
		if !ok {
			continue
		}
		ctx, ok := ctxByName[cubeName]
		if !ok {
			continue
		}
		entry := fmt.Sprintf("%s_metrics.%s", ctx.alias, fieldName)
		if opts.EmitSortDirection && spec.Descending {
			entry += " desc"
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, ", ")
}
