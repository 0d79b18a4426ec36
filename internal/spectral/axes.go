// Package spectral defines the bipolar coordinate space archetypes occupy
// and the distance arithmetic over it. Every axis is a [0, 1] scale between
// two named poles; an archetype's position is a sparse vector keyed by axis
// name. The axis vocabulary is configuration, not code: it ships as an
// embedded catalog and can be replaced per run.
package spectral

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed axes.yaml
var axesFS embed.FS

// Axis is one bipolar dimension of the coordinate space.
type Axis struct {
	Name        string `yaml:"name" json:"name"`
	Low         string `yaml:"low" json:"low"`   // pole at 0.0
	High        string `yaml:"high" json:"high"` // pole at 1.0
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Registry is the set of axes valid for a run. Coordinates on axes outside
// the registry are reported as warnings and skipped by every pass.
type Registry struct {
	axes   []Axis
	byName map[string]Axis
}

type axisCatalog struct {
	Axes []Axis `yaml:"axes"`
}

func newRegistry(axes []Axis) (*Registry, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("spectral: axis catalog is empty")
	}
	byName := make(map[string]Axis, len(axes))
	for _, a := range axes {
		if a.Name == "" {
			return nil, fmt.Errorf("spectral: axis with empty name in catalog")
		}
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("spectral: duplicate axis %q in catalog", a.Name)
		}
		byName[a.Name] = a
	}
	return &Registry{axes: axes, byName: byName}, nil
}

// DefaultRegistry returns the embedded eight-axis catalog.
func DefaultRegistry() *Registry {
	data, err := axesFS.ReadFile("axes.yaml")
	if err != nil {
		panic(fmt.Sprintf("spectral: embedded axis catalog missing: %v", err))
	}
	reg, err := parseRegistry(data)
	if err != nil {
		panic(fmt.Sprintf("spectral: embedded axis catalog invalid: %v", err))
	}
	return reg
}

// LoadRegistry reads an axis catalog from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("spectral: read axis catalog: %w", err)
	}
	reg, err := parseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("spectral: parse axis catalog %s: %w", path, err)
	}
	return reg, nil
}

func parseRegistry(data []byte) (*Registry, error) {
	var cat axisCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	return newRegistry(cat.Axes)
}

// Has reports whether name is a registered axis.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Axis returns the axis definition for name.
func (r *Registry) Axis(name string) (Axis, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Axes returns the axes in catalog order.
func (r *Registry) Axes() []Axis {
	out := make([]Axis, len(r.axes))
	copy(out, r.axes)
	return out
}

// Names returns the axis names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered axes.
func (r *Registry) Len() int { return len(r.axes) }
