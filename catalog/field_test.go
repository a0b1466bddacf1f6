package catalog

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestVariantValueUnmarshalBareScalar(t *testing.T) {
	var v VariantValue
	if err := yaml.Unmarshal([]byte("day"), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Alias != "day" || v.Value != "day" {
		t.Errorf("got %+v, want Alias=Value=day", v)
	}
}

func TestVariantValueUnmarshalNonStringScalar(t *testing.T) {
	var v VariantValue
	if err := yaml.Unmarshal([]byte("30"), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Alias != "30" || v.Value != "30" {
		t.Errorf("got %+v, want Alias=Value=30", v)
	}
}

func TestVariantValueUnmarshalMapping(t *testing.T) {
	var v VariantValue
	if err := yaml.Unmarshal([]byte("last_30_days: 30"), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Alias != "last_30_days" || v.Value != "30" {
		t.Errorf("got %+v, want Alias=last_30_days Value=30", v)
	}
}

func TestVariantValueUnmarshalMultiKeyMappingRejected(t *testing.T) {
	var v VariantValue
	err := yaml.Unmarshal([]byte("a: 1\nb: 2"), &v)
	if err == nil {
		t.Fatal("expected an error for a multi-key mapping")
	}
}

func TestVariantSpecUnmarshal(t *testing.T) {
	var spec VariantSpec
	doc := "granularity: [day, week, month]"
	if err := yaml.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Placeholder != "granularity" {
		t.Errorf("got placeholder %q, want granularity", spec.Placeholder)
	}
	if len(spec.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(spec.Values))
	}
	if spec.Values[0].Alias != "day" || spec.Values[2].Alias != "month" {
		t.Errorf("got values %+v", spec.Values)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Dimension:    "dimension",
		Metric:       "metric",
		WindowMetric: "window_metric",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
