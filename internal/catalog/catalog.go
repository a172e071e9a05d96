// Package catalog loads and serves the curriculum: the ordered sequence of
// roadmap modules with their topics and projects.
//
// The catalog is pure configuration. It is parsed once at startup, validated,
// and never mutated afterwards — every other component treats it as
// read-only. Progress records reference modules by id and topics/projects by
// index, so editing the catalog file reorders what those records point at;
// that is an operator concern, not something this package defends against.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sakif/roadmap-academy/internal/model"
)

// defaultRoadmap is the curriculum shipped inside the binary.
//
// go:embed compiles the YAML file into the executable, so a deployment is
// still a single binary with no data files to ship alongside it.
//
//go:embed roadmap.yaml
var defaultRoadmap []byte

// Catalog is the immutable set of roadmap modules in display order.
type Catalog struct {
	modules []model.Module
	byID    map[string]*model.Module
}

type roadmapFile struct {
	Modules []model.Module `yaml:"modules"`
}

// Load returns the embedded default catalog.
func Load() (*Catalog, error) {
	return Parse(defaultRoadmap)
}

// LoadFile reads a custom roadmap document from disk. Used when the
// CATALOG_PATH environment variable overrides the embedded curriculum.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a roadmap YAML document.
func Parse(data []byte) (*Catalog, error) {
	var file roadmapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parsing roadmap: %w", err)
	}

	c := &Catalog{
		modules: file.Modules,
		byID:    make(map[string]*model.Module, len(file.Modules)),
	}

	for i := range c.modules {
		m := &c.modules[i]
		if m.ID == "" {
			return nil, fmt.Errorf("catalog: module %d has no id", i)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate module id %q", m.ID)
		}
		if !m.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog: module %q has unknown difficulty %q", m.ID, m.Difficulty)
		}
		c.byID[m.ID] = m
	}

	return c, nil
}

// Modules returns the modules in roadmap order. Callers must not modify the
// returned slice.
func (c *Catalog) Modules() []model.Module {
	return c.modules
}

// ByID returns the module with the given id, or nil if none exists.
func (c *Catalog) ByID(id string) *model.Module {
	return c.byID[id]
}

// Len returns the number of modules.
func (c *Catalog) Len() int {
	return len(c.modules)
}

// TotalTrackableItems is the catalog-wide count of topics plus projects,
// the denominator of the overall completion percentage.
func (c *Catalog) TotalTrackableItems() int {
	total := 0
	for i := range c.modules {
		total += c.modules[i].TrackableItems()
	}
	return total
}
