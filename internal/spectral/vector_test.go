package spectral

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{
			"identical",
			Vector{"order_chaos": 0.5, "light_shadow": 0.5},
			Vector{"order_chaos": 0.5, "light_shadow": 0.5},
			0.0,
		},
		{
			"two shared axes",
			Vector{"order_chaos": 0.80, "light_shadow": 0.90},
			Vector{"order_chaos": 0.44, "light_shadow": 0.42},
			0.6, // sqrt(0.36^2 + 0.48^2)
		},
		{
			"unshared axes ignored",
			Vector{"order_chaos": 0.2, "sacred_profane": 1.0},
			Vector{"order_chaos": 0.7, "matter_spirit": 0.0},
			0.5,
		},
		{
			"single shared axis",
			Vector{"stasis_change": 0.1},
			Vector{"stasis_change": 0.9, "order_chaos": 0.5},
			0.8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Distance() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDistanceNoOverlap(t *testing.T) {
	a := Vector{"order_chaos": 0.2}
	b := Vector{"light_shadow": 0.8}
	if _, err := Distance(a, b); !errors.Is(err, ErrIncompleteVector) {
		t.Fatalf("Distance() error = %v, want ErrIncompleteVector", err)
	}
	if _, err := Distance(Vector{}, Vector{}); !errors.Is(err, ErrIncompleteVector) {
		t.Fatalf("Distance(empty, empty) error = %v, want ErrIncompleteVector", err)
	}
}

func TestAxisDifference(t *testing.T) {
	a := Vector{"order_chaos": 0.40}
	b := Vector{"order_chaos": 0.20, "light_shadow": 0.5}

	got, err := AxisDifference(a, b, "order_chaos")
	if err != nil {
		t.Fatalf("AxisDifference() error = %v", err)
	}
	if math.Abs(got-0.20) > 1e-9 {
		t.Errorf("AxisDifference() = %f, want 0.20", got)
	}

	if _, err := AxisDifference(a, b, "light_shadow"); !errors.Is(err, ErrMissingAxis) {
		t.Errorf("missing on first side: error = %v, want ErrMissingAxis", err)
	}
	if _, err := AxisDifference(b, a, "light_shadow"); !errors.Is(err, ErrMissingAxis) {
		t.Errorf("missing on second side: error = %v, want ErrMissingAxis", err)
	}
	if _, err := AxisDifference(a, b, "matter_spirit"); !errors.Is(err, ErrMissingAxis) {
		t.Errorf("missing on both sides: error = %v, want ErrMissingAxis", err)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below", -0.2, 0.0},
		{"zero", 0.0, 0.0},
		{"inside", 0.37, 0.37},
		{"one", 1.0, 1.0},
		{"above", 1.15, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp01(tt.in); got != tt.want {
				t.Errorf("Clamp01(%f) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampedCopies(t *testing.T) {
	v := Vector{"order_chaos": 1.4, "light_shadow": -0.1, "matter_spirit": 0.5}
	got := v.Clamped()
	want := Vector{"order_chaos": 1.0, "light_shadow": 0.0, "matter_spirit": 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clamped() mismatch (-want +got):\n%s", diff)
	}
	if v["order_chaos"] != 1.4 {
		t.Errorf("Clamped() mutated the receiver")
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	if reg.Len() != 8 {
		t.Fatalf("DefaultRegistry() has %d axes, want 8", reg.Len())
	}
	for _, name := range []string{"order_chaos", "light_shadow", "matter_spirit"} {
		if !reg.Has(name) {
			t.Errorf("DefaultRegistry() missing axis %q", name)
		}
	}
	if reg.Has("valence") {
		t.Errorf("DefaultRegistry() reports unknown axis as present")
	}
	axis, ok := reg.Axis("order_chaos")
	if !ok || axis.Low != "order" || axis.High != "chaos" {
		t.Errorf("Axis(order_chaos) = %+v, %v", axis, ok)
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "axes.yaml")
	doc := `axes:
  - name: hot_cold
    low: hot
    high: cold
  - name: wet_dry
    low: wet
    high: dry
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Len() != 2 || !reg.Has("wet_dry") {
		t.Errorf("LoadRegistry() = %v axes, Has(wet_dry) = %v", reg.Len(), reg.Has("wet_dry"))
	}

	if _, err := LoadRegistry(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Errorf("LoadRegistry(absent) expected error")
	}

	bad := filepath.Join(dir, "dup.yaml")
	if err := os.WriteFile(bad, []byte("axes:\n  - name: a\n  - name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(bad); err == nil {
		t.Errorf("LoadRegistry(duplicate axes) expected error")
	}
}
