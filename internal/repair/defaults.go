package repair

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsFS embed.FS

// Defaults is the fill material for one namespace. Empty fields fall
// through to the "common" entry at resolution time.
type Defaults struct {
	Description     string             `yaml:"description"`
	Keywords        []string           `yaml:"keywords"`
	Domains         []string           `yaml:"domains"`
	CoreFunction    string             `yaml:"core_function"`
	NarrativeRoles  []string           `yaml:"narrative_roles"`
	Primordial      string             `yaml:"primordial"`
	Correspondences map[string]string  `yaml:"correspondences"`
	Coordinates     map[string]float64 `yaml:"coordinates"`
}

// Catalog maps id namespaces to their defaults.
type Catalog struct {
	Namespaces map[string]Defaults `yaml:"namespaces"`
}

// DefaultCatalog returns the embedded namespace defaults.
func DefaultCatalog() *Catalog {
	data, err := defaultsFS.ReadFile("defaults.yaml")
	if err != nil {
		panic(fmt.Sprintf("repair: embedded defaults catalog missing: %v", err))
	}
	cat, err := parseCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("repair: embedded defaults catalog invalid: %v", err))
	}
	return cat
}

// LoadCatalog reads a defaults catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repair: read defaults catalog: %w", err)
	}
	cat, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("repair: parse defaults catalog %s: %w", path, err)
	}
	return cat, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	if len(cat.Namespaces) == 0 {
		return nil, fmt.Errorf("no namespaces defined")
	}
	return &cat, nil
}

// For resolves the effective defaults for a namespace: the common layer
// overridden field by field by the namespace entry, if any.
func (c *Catalog) For(namespace string) Defaults {
	eff := c.Namespaces["common"]
	ns, ok := c.Namespaces[namespace]
	if !ok {
		return eff
	}
	if ns.Description != "" {
		eff.Description = ns.Description
	}
	if len(ns.Keywords) > 0 {
		eff.Keywords = ns.Keywords
	}
	if len(ns.Domains) > 0 {
		eff.Domains = ns.Domains
	}
	if ns.CoreFunction != "" {
		eff.CoreFunction = ns.CoreFunction
	}
	if len(ns.NarrativeRoles) > 0 {
		eff.NarrativeRoles = ns.NarrativeRoles
	}
	if ns.Primordial != "" {
		eff.Primordial = ns.Primordial
	}
	if len(ns.Correspondences) > 0 {
		eff.Correspondences = ns.Correspondences
	}
	if len(ns.Coordinates) > 0 {
		eff.Coordinates = ns.Coordinates
	}
	return eff
}
