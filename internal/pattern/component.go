package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Component groups panels and sub-components into a garment part. It
// exposes named interfaces for connecting to other components and holds
// the stitches between its children.
type Component struct {
	Name       string
	Panels     []*Panel
	Subs       []*Component
	Interfaces map[string]*Interface
	Stitches   *Stitches
}

// NewComponent creates an empty component.
func NewComponent(name string) *Component {
	return &Component{
		Name:       name,
		Interfaces: make(map[string]*Interface),
		Stitches:   &Stitches{},
	}
}

// AddPanel attaches panels directly to the component.
func (c *Component) AddPanel(ps ...*Panel) *Component {
	c.Panels = append(c.Panels, ps...)
	return c
}

// AddSub attaches sub-components.
func (c *Component) AddSub(subs ...*Component) *Component {
	c.Subs = append(c.Subs, subs...)
	return c
}

// SetInterface publishes in under name.
func (c *Component) SetInterface(name string, in *Interface) *Component {
	c.Interfaces[name] = in
	return c
}

// Interface returns the interface published under name.
func (c *Component) Interface(name string) (*Interface, error) {
	in, ok := c.Interfaces[name]
	if !ok {
		return nil, fmt.Errorf("component %s: %w %q", c.Name, ErrUnknownInterface, name)
	}
	return in, nil
}

// InterfaceNames returns the published interface names, sorted.
func (c *Component) InterfaceNames() []string {
	names := make([]string, 0, len(c.Interfaces))
	for n := range c.Interfaces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllPanels returns every panel in the tree, each once, in depth-first order.
func (c *Component) AllPanels() []*Panel {
	seen := make(map[*Panel]bool)
	var out []*Panel
	var walk func(*Component)
	walk = func(c *Component) {
		for _, p := range c.Panels {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
		for _, s := range c.Subs {
			walk(s)
		}
	}
	walk(c)
	return out
}

// AllStitches returns the stitches of sub-components followed by the
// component's own.
func (c *Component) AllStitches() []Stitch {
	var out []Stitch
	for _, s := range c.Subs {
		out = append(out, s.AllStitches()...)
	}
	return append(out, c.Stitches.All()...)
}

// TranslateBy moves every panel in the tree by d.
func (c *Component) TranslateBy(d v3.Vec) *Component {
	for _, p := range c.AllPanels() {
		p.TranslateBy(d)
	}
	return c
}

// TranslateTo moves the tree so its pivot lands on t. Panels keep their
// offsets from the pivot.
func (c *Component) TranslateTo(t v3.Vec) error {
	pivot, err := c.Pivot3D()
	if err != nil {
		return err
	}
	c.TranslateBy(t.Sub(pivot))
	return nil
}

// RotateBy turns the whole tree by delta (Euler degrees) about its pivot.
func (c *Component) RotateBy(delta v3.Vec) error {
	pivot, err := c.Pivot3D()
	if err != nil {
		return err
	}
	r := eulerMat(delta)
	for _, p := range c.AllPanels() {
		rel := p.Pivot3D().Sub(pivot)
		p.RotateBy(delta)
		p.TranslateBy(r.apply(rel).Sub(rel))
	}
	return nil
}

// RotateTo has no single meaning for panels that carry different
// rotations. Use RotateBy.
func (c *Component) RotateTo(v3.Vec) error {
	return fmt.Errorf("component %s: rotate to: %w, use RotateBy", c.Name, errors.ErrUnsupported)
}

// Mirror reflects every panel in the tree across the world YZ plane.
func (c *Component) Mirror() *Component {
	for _, p := range c.AllPanels() {
		p.Mirror()
	}
	return c
}

// BBox3D returns the union of the panel bounding boxes.
func (c *Component) BBox3D() (sdf.Box3, error) {
	panels := c.AllPanels()
	if len(panels) == 0 {
		return sdf.Box3{}, fmt.Errorf("component %s has no panels", c.Name)
	}
	box := panels[0].BBox3D()
	for _, p := range panels[1:] {
		box = box.Extend(p.BBox3D())
	}
	return box, nil
}

// Pivot3D is the top center of the bounding box.
func (c *Component) Pivot3D() (v3.Vec, error) {
	box, err := c.BBox3D()
	if err != nil {
		return v3.Vec{}, err
	}
	return v3.Vec{X: (box.Min.X + box.Max.X) / 2, Y: box.Max.Y, Z: (box.Min.Z + box.Max.Z) / 2}, nil
}

// PlaceBelow moves the component so its top sits gap below the bottom of other.
func (c *Component) PlaceBelow(other *Component, gap float64) error {
	ob, err := other.BBox3D()
	if err != nil {
		return err
	}
	cb, err := c.BBox3D()
	if err != nil {
		return err
	}
	c.TranslateBy(v3.Vec{Y: ob.Min.Y - cb.Max.Y - gap})
	return nil
}

// PlaceByInterface moves the component so that self lines up with out,
// pushed gap away from the component's center.
func (c *Component) PlaceByInterface(self, out *Interface, gap float64) error {
	sb, err := self.BBox3D()
	if err != nil {
		return err
	}
	ob, err := out.BBox3D()
	if err != nil {
		return err
	}
	full, err := c.BBox3D()
	if err != nil {
		return err
	}
	midSelf, midOut := sb.Center(), ob.Center()
	dir := midSelf.Sub(full.Center())
	if dir.Length() > 0 {
		dir = dir.Normalize().MulScalar(gap)
	}
	c.TranslateBy(midOut.Sub(midSelf.Add(dir)))
	return nil
}

// Validate checks every panel outline in the tree.
func (c *Component) Validate() error {
	var errs []error
	for _, p := range c.AllPanels() {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
