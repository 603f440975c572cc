// Package catalog loads subtask definitions. A catalog is embedded in the
// binary; a YAML file on disk can replace it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

//go:embed catalog.yaml
var embedded []byte

// ErrUnknownSubtask is returned by Get for keys not in the catalog.
var ErrUnknownSubtask = errors.New("unknown subtask")

type file struct {
	Subtasks []*wizard.Definition `yaml:"subtasks"`
}

// Catalog holds compiled definitions in file order.
type Catalog struct {
	schemas []*wizard.Schema
	byKey   map[string]*wizard.Schema
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates YAML catalog data.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Subtasks...)
}

// New validates and compiles defs into a catalog. Keys, storage keys and
// draft keys must be unique across the catalog.
func New(defs ...*wizard.Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errors.New("catalog has no subtasks")
	}

	c := &Catalog{byKey: make(map[string]*wizard.Schema, len(defs))}
	owners := make(map[string]string)
	claim := func(storeKey, subtask string) error {
		if storeKey == "" {
			return nil
		}
		if other, ok := owners[storeKey]; ok {
			return fmt.Errorf("storage key %q used by both %q and %q", storeKey, other, subtask)
		}
		owners[storeKey] = subtask
		return nil
	}

	for _, def := range defs {
		if def == nil {
			return nil, errors.New("catalog contains an empty subtask")
		}
		schema, err := wizard.Compile(def)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byKey[def.Key]; dup {
			return nil, fmt.Errorf("duplicate subtask key %q", def.Key)
		}
		for _, k := range []string{def.StorageKey, def.LegacyKey, def.ResolvedDraftKey()} {
			if err := claim(k, def.Key); err != nil {
				return nil, err
			}
		}
		c.byKey[def.Key] = schema
		c.schemas = append(c.schemas, schema)
	}
	return c, nil
}

// Schemas returns every subtask in catalog order.
func (c *Catalog) Schemas() []*wizard.Schema {
	out := make([]*wizard.Schema, len(c.schemas))
	copy(out, c.schemas)
	return out
}

// Get returns the schema for key.
func (c *Catalog) Get(key string) (*wizard.Schema, error) {
	s, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubtask, key)
	}
	return s, nil
}

// Keys returns subtask keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.schemas))
	for i, s := range c.schemas {
		keys[i] = s.Def.Key
	}
	return keys
}
