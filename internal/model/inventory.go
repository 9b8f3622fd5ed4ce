package model

import "github.com/google/uuid"

// FabricPreset is a fabric the user keeps on hand.
type FabricPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // roll width
	Length   float64 `json:"length"` // available length, 0 = unlimited
	Material string  `json:"material"`
}

// NewFabricPreset creates a new FabricPreset with a generated ID.
func NewFabricPreset(name string, width, length float64, material string) FabricPreset {
	return FabricPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    width,
		Length:   length,
		Material: material,
	}
}

// ApplyToSettings makes the marker use this fabric's width.
func (fp FabricPreset) ApplyToSettings(s *LayoutSettings) {
	s.FabricWidth = fp.Width
}

// Fits reports whether a marker of the given length fits the available fabric.
func (fp FabricPreset) Fits(m Marker) bool {
	return fp.Length == 0 || m.Length <= fp.Length
}

// Inventory holds the user's saved fabrics.
type Inventory struct {
	Fabrics []FabricPreset `json:"fabrics"`
}

// DefaultInventory returns an inventory populated with common roll widths.
func DefaultInventory() Inventory {
	return Inventory{
		Fabrics: []FabricPreset{
			NewFabricPreset("Quilting cotton 110", 110, 0, "Cotton"),
			NewFabricPreset("Apparel cotton 150", 150, 0, "Cotton"),
			NewFabricPreset("Linen 140", 140, 0, "Linen"),
			NewFabricPreset("Jersey 180", 180, 0, "Knit"),
		},
	}
}

// FindFabricByID returns a pointer to the fabric with the given ID, or nil.
func (inv *Inventory) FindFabricByID(id string) *FabricPreset {
	for i := range inv.Fabrics {
		if inv.Fabrics[i].ID == id {
			return &inv.Fabrics[i]
		}
	}
	return nil
}

// FindFabricByName returns a pointer to the first fabric with the given name, or nil.
func (inv *Inventory) FindFabricByName(name string) *FabricPreset {
	for i := range inv.Fabrics {
		if inv.Fabrics[i].Name == name {
			return &inv.Fabrics[i]
		}
	}
	return nil
}

// FabricNames returns the fabric names in order.
func (inv *Inventory) FabricNames() []string {
	names := make([]string, len(inv.Fabrics))
	for i, f := range inv.Fabrics {
		names[i] = f.Name
	}
	return names
}
