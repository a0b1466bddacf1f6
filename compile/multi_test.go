package compile

import (
	"errors"
	"strings"
	"testing"

	"github.com/arthur-debert/cubeql/catalog"
	"github.com/arthur-debert/cubeql/errs"
)

func fanOutCatalog() *catalog.CubeCatalog {
	return &catalog.CubeCatalog{
		Cubes: []catalog.Cube{
			{
				Name:  "orders",
				Table: "orders",
				Dimensions: []catalog.FieldDecl{
					{Name: "id", SQL: "${table}.id", PrimaryKey: true},
				},
				Metrics: []catalog.FieldDecl{
					{Name: "total_amount", SQL: "sum(${table}.amount)"},
				},
			},
			{
				Name:  "customers",
				Table: "customers",
				Dimensions: []catalog.FieldDecl{
					{Name: "id", SQL: "${table}.id", PrimaryKey: true},
					{Name: "name", SQL: "${table}.name"},
				},
			},
		},
		Joins: []catalog.Join{
			{Left: "orders", Right: "customers", Type: catalog.InnerJoin, OnSQL: "${left}.customer_id = ${right}.id"},
		},
	}
}

func TestCompileMultiBuildsDimensionAndMetricsCTEsAndJoinsOnSharedDimension(t *testing.T) {
	cat := fanOutCatalog()
	cubes := []*catalog.Cube{cat.CubeByName("customers"), cat.CubeByName("orders")}
	aliases := map[string]string{"customers": "c", "orders": "o"}
	q := &catalog.Query{Fields: []string{"customers.name", "orders.total_amount"}}

	got, err := compileMulti(cat, cubes, aliases, q, []string{"customers.name", "orders.total_amount"}, &Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFragments := []string{
		"o_dimension as (",
		"select o.id as pk0,\nc.name as name",
		"inner join customers as c on o.customer_id = c.id",
		"c_dimension as (",
		"select c.id as pk0",
		"o_metrics as (",
		"select o_dimension.name,\nsum(o.amount) as total_amount",
		"join o_dimension as o_dimension on o.id = o_dimension.pk0",
		"c_metrics as (",
		"select c.name as name",
		"join c_dimension as c_dimension on c.id = c_dimension.pk0",
		"select c_metrics.name, o_metrics.total_amount",
		"join o_metrics as o_metrics on c_metrics.name = o_metrics.name",
	}
	for _, want := range wantFragments {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\nfull output:\n%s", want, got)
		}
	}
}

func TestCompileMultiFilterRewritesBareAliasToMetricsAlias(t *testing.T) {
	cat := fanOutCatalog()
	cubes := []*catalog.Cube{cat.CubeByName("customers"), cat.CubeByName("orders")}
	aliases := map[string]string{"customers": "c", "orders": "o"}
	q := &catalog.Query{
		Fields:  []string{"customers.name", "orders.total_amount"},
		Filters: []string{"${orders.total_amount} > 0"},
	}

	got, err := compileMulti(cat, cubes, aliases, q, []string{"customers.name", "orders.total_amount"}, &Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "where (sum(o_metrics.amount) > 0)") {
		t.Errorf("output missing rewritten filter\nfull output:\n%s", got)
	}
}

func TestCompileMultiDisconnectedCubeError(t *testing.T) {
	cat := &catalog.CubeCatalog{
		Cubes: []catalog.Cube{
			{Name: "orders", Table: "orders", Dimensions: []catalog.FieldDecl{{Name: "id", SQL: "${table}.id", PrimaryKey: true}}},
			{Name: "customers", Table: "customers", Dimensions: []catalog.FieldDecl{{Name: "id", SQL: "${table}.id", PrimaryKey: true}, {Name: "name", SQL: "${table}.name"}}},
		},
	}
	cubes := []*catalog.Cube{cat.CubeByName("orders"), cat.CubeByName("customers")}
	aliases := map[string]string{"orders": "o", "customers": "c"}
	q := &catalog.Query{Fields: []string{"orders.id", "customers.name"}}

	_, err := compileMulti(cat, cubes, aliases, q, []string{"orders.id", "customers.name"}, &Options{})
	assertMultiKind(t, err, errs.DisconnectedCube)
}

func TestCompileMultiNoPrimaryKeyError(t *testing.T) {
	cat := &catalog.CubeCatalog{
		Cubes: []catalog.Cube{
			{Name: "orders", Table: "orders", Metrics: []catalog.FieldDecl{{Name: "total_amount", SQL: "sum(${table}.amount)"}}},
			{Name: "customers", Table: "customers", Dimensions: []catalog.FieldDecl{{Name: "id", SQL: "${table}.id", PrimaryKey: true}, {Name: "name", SQL: "${table}.name"}}},
		},
		Joins: []catalog.Join{{Left: "orders", Right: "customers", Type: catalog.InnerJoin, OnSQL: "${left}.customer_id = ${right}.id"}},
	}
	cubes := []*catalog.Cube{cat.CubeByName("orders"), cat.CubeByName("customers")}
	aliases := map[string]string{"orders": "o", "customers": "c"}
	q := &catalog.Query{Fields: []string{"orders.total_amount", "customers.name"}}

	_, err := compileMulti(cat, cubes, aliases, q, []string{"orders.total_amount", "customers.name"}, &Options{})
	assertMultiKind(t, err, errs.NoPrimaryKey)
}

func TestCompileMultiUnsupportedWindowInJoinError(t *testing.T) {
	cat := fanOutCatalog()
	orders := cat.CubeByName("orders")
	orders.WindowMetrics = []catalog.FieldDecl{{Name: "running_total", SQL: "sum(${total_amount}) over ()"}}

	cubes := []*catalog.Cube{cat.CubeByName("customers"), cat.CubeByName("orders")}
	aliases := map[string]string{"customers": "c", "orders": "o"}
	q := &catalog.Query{Fields: []string{"customers.name", "orders.running_total"}}

	_, err := compileMulti(cat, cubes, aliases, q, []string{"customers.name", "orders.running_total"}, &Options{})
	assertMultiKind(t, err, errs.UnsupportedWindowInJoin)
}

func TestCompileMultiMultiColumnPKUnsupportedError(t *testing.T) {
	cat := fanOutCatalog()
	orders := cat.CubeByName("orders")
	orders.Dimensions = append(orders.Dimensions, catalog.FieldDecl{Name: "id2", SQL: "${table}.id2", PrimaryKey: true})

	cubes := []*catalog.Cube{cat.CubeByName("customers"), cat.CubeByName("orders")}
	aliases := map[string]string{"customers": "c", "orders": "o"}
	q := &catalog.Query{Fields: []string{"customers.name", "orders.total_amount"}}

	_, err := compileMulti(cat, cubes, aliases, q, []string{"customers.name", "orders.total_amount"}, &Options{})
	assertMultiKind(t, err, errs.MultiColumnPKUnsupported)
}

func assertMultiKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var ce *errs.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got error of type %T, want *errs.CompileError", err)
	}
	if ce.Kind != kind {
		t.Errorf("got kind %v, want %v", ce.Kind, kind)
	}
}
