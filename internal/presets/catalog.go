package presets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is an ordered, immutable set of presets.
type Catalog struct {
	presets []Preset
}

// catalogFile is the YAML shape of a user catalog.
type catalogFile struct {
	// ReplaceBuiltins drops the stock profiles before applying Presets.
	ReplaceBuiltins bool     `yaml:"replace_builtins"`
	Presets         []Preset `yaml:"presets"`
}

// Load builds a catalog from the built-in profiles plus the optional YAML
// file at path. An empty path yields the built-ins alone. File entries
// override same-named built-ins in place; new names append in file order.
func Load(path string) (*Catalog, error) {
	list := Builtins()

	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read preset catalog: %w", err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse preset catalog: %w", err)
		}
		if file.ReplaceBuiltins {
			list = nil
		}
		list, err = merge(list, file.Presets)
		if err != nil {
			return nil, fmt.Errorf("preset catalog %s: %w", path, err)
		}
	}

	return &Catalog{presets: list}, nil
}

// NewCatalog wraps an explicit preset list, primarily for tests.
func NewCatalog(list ...Preset) *Catalog {
	out := make([]Preset, 0, len(list))
	for _, p := range list {
		out = append(out, p.Clone())
	}
	return &Catalog{presets: out}
}

// List returns a copy of the catalog in order.
func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p.Clone())
	}
	return out
}

// Len reports the number of presets.
func (c *Catalog) Len() int {
	return len(c.presets)
}

// Get looks a preset up by name.
func (c *Catalog) Get(name string) (Preset, bool) {
	for _, p := range c.presets {
		if p.Name == name {
			return p.Clone(), true
		}
	}
	return Preset{}, false
}

// Default picks the standard selection: the second entry when the catalog
// has one, else the first. An empty catalog reports false.
func (c *Catalog) Default() (Preset, bool) {
	switch {
	case len(c.presets) >= 2:
		return c.presets[1].Clone(), true
	case len(c.presets) == 1:
		return c.presets[0].Clone(), true
	default:
		return Preset{}, false
	}
}

func merge(base []Preset, overlay []Preset) ([]Preset, error) {
	out := make([]Preset, len(base))
	copy(out, base)

	seen := make(map[string]struct{}, len(overlay))
	for _, p := range overlay {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		replaced := false
		for i := range out {
			if out[i].Name == p.Name {
				out[i] = p.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func validate(p Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset missing name")
	}
	if strings.TrimSpace(p.VideoCodec) == "" {
		return fmt.Errorf("preset %q missing video_codec", p.Name)
	}
	if strings.TrimSpace(p.AudioCodec) == "" {
		return fmt.Errorf("preset %q missing audio_codec", p.Name)
	}
	return nil
}
