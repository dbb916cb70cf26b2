package game

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML file that adds or replaces game profiles.
type Manifest struct {
	Games []Profile `yaml:"games"`
}

// Catalog is an immutable set of profiles keyed by ID and prefix.
type Catalog struct {
	byID     map[string]Profile
	byPrefix map[string]string
	ids      []string
}

// NewCatalog builds a catalog; later profiles replace earlier ones with the same ID.
func NewCatalog(profiles ...Profile) (*Catalog, error) {
	c := &Catalog{
		byID:     make(map[string]Profile, len(profiles)),
		byPrefix: make(map[string]string, len(profiles)),
	}
	for _, p := range profiles {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		p.Prefix = strings.ToLower(strings.TrimSpace(p.Prefix))
		p = p.withDefaults()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if old, ok := c.byID[p.ID]; ok {
			delete(c.byPrefix, old.Prefix)
		}
		c.byID[p.ID] = p
		c.byPrefix[p.Prefix] = p.ID
	}
	c.ids = make([]string, 0, len(c.byID))
	for id := range c.byID {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Default returns the catalog of built-in games.
func Default() *Catalog {
	c, err := NewCatalog(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in game profile: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML manifest and merges it over the built-in games.
// An empty path returns the built-ins.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(append(Builtin(), m.Games...)...)
}

// LoadManifest reads and parses a game manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for i, p := range m.Games {
		if strings.TrimSpace(p.ID) == "" {
			return Manifest{}, fmt.Errorf("manifest %s: game %d: missing id", path, i+1)
		}
	}
	return m, nil
}

// Lookup finds a profile by ID or file prefix, case-insensitively.
func (c *Catalog) Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := c.byID[key]; ok {
		return p, nil
	}
	if id, ok := c.byPrefix[key]; ok {
		return c.byID[id], nil
	}
	return Profile{}, fmt.Errorf("unknown game %q (available: %s)", name, strings.Join(c.ids, ", "))
}

// All returns every profile sorted by ID.
func (c *Catalog) All() []Profile {
	out := make([]Profile, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}
