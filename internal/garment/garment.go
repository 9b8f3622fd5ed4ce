// Package garment holds the built-in garment generators. Each generator is
// registered under a fixed Kind and turns a Design into a component tree
// ready for assembly.
package garment

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/piwi3910/StitchKit/internal/model"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

var (
	ErrUnknownGarment = errors.New("unknown garment")
	ErrUnknownParam   = errors.New("unknown design parameter")
	ErrInvalidParam   = errors.New("invalid design parameter")
)

// Kind names a garment generator.
type Kind string

const (
	Waistband  Kind = "waistband"
	PanelSkirt Kind = "panel_skirt"
)

// Design holds named generator parameters. Lengths are in centimetres,
// ratios are plain numbers.
type Design map[string]float64

// generator builds a garment from a complete design.
type generator func(Design) (*pattern.Component, error)

type entry struct {
	description string
	defaults    Design
	build       generator
}

var registry = map[Kind]entry{
	Waistband: {
		description: "two-panel straight waistband",
		defaults: Design{
			"waist":       70,
			"waist_level": 100,
			"wb_width":    5,
			"wb_ease":     1,
		},
		build: buildWaistband,
	},
	PanelSkirt: {
		description: "front and back skirt panels, gathered into a waistband",
		defaults: Design{
			"waist":       70,
			"waist_level": 100,
			"wb_width":    5,
			"wb_ease":     1,
			"length":      60,
			"ruffle":      1.3,
			"flare":       10,
			"slit":        0,
		},
		build: buildPanelSkirt,
	},
}

// Kinds returns the registered garment kinds, sorted.
func Kinds() []Kind {
	return slices.Sorted(maps.Keys(registry))
}

// Lookup resolves a garment key. Matching ignores case and surrounding
// spaces, and accepts dashes for underscores.
func Lookup(key string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_"))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w %q (known: %v)", ErrUnknownGarment, key, Kinds())
	}
	return k, nil
}

// Describe returns a one-line description of the garment.
func Describe(k Kind) string {
	return registry[k].description
}

// Defaults returns a copy of the default design for k.
func Defaults(k Kind) Design {
	return maps.Clone(registry[k].defaults)
}

// Resolve fills the gaps in d from the defaults of k. Parameters k does not
// know are rejected.
func Resolve(k Kind, d Design) (Design, error) {
	e, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGarment, k)
	}
	out := maps.Clone(e.defaults)
	for _, name := range slices.Sorted(maps.Keys(d)) {
		if _, ok := e.defaults[name]; !ok {
			return nil, fmt.Errorf("%s: %w %q", k, ErrUnknownParam, name)
		}
		out[name] = d[name]
	}
	return out, nil
}

// Build runs the generator registered under key. Missing parameters take
// their defaults.
func Build(key string, d Design) (*pattern.Component, error) {
	k, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	full, err := Resolve(k, d)
	if err != nil {
		return nil, err
	}
	c, err := registry[k].build(full)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	pattern.Logger().Debug("garment built", "kind", k, "panels", len(c.AllPanels()), "stitches", len(c.AllStitches()))
	return c, nil
}

// FromTemplate returns the garment kind and parameters saved in t.
func FromTemplate(t model.DesignTemplate) (Kind, Design, error) {
	k, err := Lookup(t.Garment)
	if err != nil {
		return "", nil, fmt.Errorf("template %s: %w", t.Name, err)
	}
	return k, Design(maps.Clone(t.Params)), nil
}

// positive returns d[name] or an error when it is not above zero.
func (d Design) positive(name string) (float64, error) {
	v := d[name]
	if !(v > 0) {
		return 0, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParam, name, v)
	}
	return v, nil
}
