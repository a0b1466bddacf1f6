package catalog

import (
	"fmt"

	"github.com/arthur-debert/cubeql/errs"
)

func invalidCatalog(detail string) error {
	return errs.New(errs.InvalidCatalog, detail)
}

// JoinType names how two cubes are joined when materializing dimension CTEs.
type JoinType string

const (
	InnerJoin JoinType = "inner"
	LeftJoin  JoinType = "left"
	RightJoin JoinType = "right"
	FullJoin  JoinType = "full"
)

// Reversed swaps left/right join types; inner and full are their own
// reverse. Used when a join's "right" cube is the one building its own
// dimension CTE and therefore sees the relationship from the other side.
func (t JoinType) Reversed() JoinType {
	switch t {
	case LeftJoin:
		return RightJoin
	case RightJoin:
		return LeftJoin
	default:
		return t
	}
}

// SQL renders the join type as the SQL keyword phrase.
func (t JoinType) SQL() string {
	switch t {
	case InnerJoin, LeftJoin, RightJoin, FullJoin:
		return string(t) + " join"
	default:
		return string(t) + " join"
	}
}

// Cube is a declarative view over one physical table.
type Cube struct {
	Name          string      `yaml:"name"`
	Table         string      `yaml:"table"`
	Dimensions    []FieldDecl `yaml:"dimensions,omitempty"`
	Metrics       []FieldDecl `yaml:"metrics,omitempty"`
	WindowMetrics []FieldDecl `yaml:"window_metrics,omitempty"`
}

// Join declares a relationship between two cubes.
type Join struct {
	Left  string   `yaml:"left"`
	Right string   `yaml:"right"`
	Type  JoinType `yaml:"type"`
	OnSQL string   `yaml:"on_sql"`
}

// Touches reports whether the join mentions the named cube.
func (j Join) Touches(cubeName string) bool {
	return j.Left == cubeName || j.Right == cubeName
}

// Other returns the cube name on the opposite side of cubeName, and whether
// cubeName is the join's right side (relevant for reversing the join type).
func (j Join) Other(cubeName string) (other string, cubeIsRight bool) {
	if j.Right == cubeName {
		return j.Left, true
	}
	return j.Right, false
}

// CubeCatalog is the full, immutable input to a compilation: every declared
// cube and every join between them.
type CubeCatalog struct {
	Cubes []Cube `yaml:"cubes"`
	Joins []Join `yaml:"joins,omitempty"`
}

// CubeByName returns the cube with the given name, or nil.
func (c *CubeCatalog) CubeByName(name string) *Cube {
	for i := range c.Cubes {
		if c.Cubes[i].Name == name {
			return &c.Cubes[i]
		}
	}
	return nil
}

// Validate rejects a catalog with duplicate cube names, joins referencing
// undeclared cubes, or fields with malformed names, returning
// errs.InvalidCatalog. Grounded on internal/validation/validation.go's
// duplicate-detection and per-field sweep.
func Validate(c *CubeCatalog) error {
	seen := make(map[string]bool, len(c.Cubes))
	for _, cube := range c.Cubes {
		if cube.Name == "" {
			return invalidCatalog("cube declared with an empty name")
		}
		if seen[cube.Name] {
			return invalidCatalog(fmt.Sprintf("duplicate cube name %q", cube.Name))
		}
		seen[cube.Name] = true

		if cube.Table == "" {
			return invalidCatalog(fmt.Sprintf("cube %q has no table", cube.Name))
		}

		for _, section := range [][]FieldDecl{cube.Dimensions, cube.Metrics, cube.WindowMetrics} {
			for _, f := range section {
				if f.Name == "" {
					return invalidCatalog(fmt.Sprintf("cube %q declares a field with an empty name", cube.Name))
				}
				for _, spec := range f.Variants {
					if spec.Placeholder == "" {
						return invalidCatalog(fmt.Sprintf("cube %q field %q has a variant with no placeholder", cube.Name, f.Name))
					}
					if len(spec.Values) == 0 {
						return invalidCatalog(fmt.Sprintf("cube %q field %q variant %q has no values", cube.Name, f.Name, spec.Placeholder))
					}
				}
			}
		}
	}

	for _, join := range c.Joins {
		if !seen[join.Left] {
			return invalidCatalog(fmt.Sprintf("join references undeclared cube %q", join.Left))
		}
		if !seen[join.Right] {
			return invalidCatalog(fmt.Sprintf("join references undeclared cube %q", join.Right))
		}
	}

	return nil
}
