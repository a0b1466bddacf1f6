// Package catalog defines the declarative data model a compilation runs
// over: cubes, their templated fields, joins between cubes, and the query
// naming fields to answer. Catalog values are immutable input; compilers
// must not mutate a Cube or FieldDecl in place.
package catalog

import "fmt"

// Kind tags a resolved field with the role it plays in a compilation:
// whether it contributes to GROUP BY, aggregates, or evaluates over a
// window.
type Kind int

const (
	Dimension Kind = iota
	Metric
	WindowMetric
)

func (k Kind) String() string {
	switch k {
	case Dimension:
		return "dimension"
	case Metric:
		return "metric"
	case WindowMetric:
		return "window_metric"
	default:
		return "unknown"
	}
}

// VariantValue is one entry in a VariantSpec's values list. A bare scalar
// supplies both the alias suffix and the substituted text; a single-key
// mapping supplies the alias suffix as its key and the substituted text as
// its value.
type VariantValue struct {
	Alias string
	Value string
}

// UnmarshalYAML accepts either a bare scalar or a single-key mapping, per
// the on-disk VariantSpec encoding.
func (v *VariantValue) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar interface{}
	if err := unmarshal(&scalar); err == nil {
		if _, isMap := scalar.(map[string]interface{}); !isMap {
			text := fmt.Sprintf("%v", scalar)
			v.Alias = text
			v.Value = text
			return nil
		}
	}

	var mapping map[string]interface{}
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("variant value must be a scalar or a single-key mapping: %w", err)
	}
	if len(mapping) != 1 {
		return fmt.Errorf("variant value mapping must have exactly one key, got %d", len(mapping))
	}
	for k, s := range mapping {
		v.Alias = k
		v.Value = fmt.Sprintf("%v", s)
	}
	return nil
}

// VariantSpec binds a template placeholder to the family of values it
// should be expanded across. On disk it is encoded as a single-key mapping,
// e.g. "granularity: [day, week, month]".
type VariantSpec struct {
	Placeholder string
	Values      []VariantValue
}

// UnmarshalYAML decodes the single-key-mapping encoding of a VariantSpec.
func (v *VariantSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw map[string][]VariantValue
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("variant spec must have exactly one placeholder key, got %d", len(raw))
	}
	for k, values := range raw {
		v.Placeholder = k
		v.Values = values
	}
	return nil
}

// FieldDecl is an immutable field declaration as it appears in a Cube's
// dimensions, metrics, or window_metrics list. Its Kind is implied by which
// list it came from, not stored on the declaration itself.
type FieldDecl struct {
	Name       string        `yaml:"name"`
	SQL        string        `yaml:"sql"`
	PrimaryKey bool          `yaml:"primary_key,omitempty"`
	Variants   []VariantSpec `yaml:"variants,omitempty"`
}

// ResolvedField is a field after variant expansion, tagged with its Kind.
// It is a per-compilation value: compilers clone it (a plain Go struct copy)
// before rewriting its SQL, never mutating catalog state.
type ResolvedField struct {
	Name       string
	SQL        string
	Kind       Kind
	PrimaryKey bool
}
