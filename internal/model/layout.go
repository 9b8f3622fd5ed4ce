package model

// Algorithm selects the marker layout strategy.
type Algorithm string

const (
	AlgorithmGreedy  Algorithm = "greedy"
	AlgorithmGenetic Algorithm = "genetic"
)

// LayoutSettings configures marker layout.
type LayoutSettings struct {
	FabricWidth   float64   `json:"fabric_width"`   // usable roll width
	PanelGap      float64   `json:"panel_gap"`      // clearance kept between pieces
	AllowRotation bool      `json:"allow_rotation"` // pieces may turn 90° against the grain
	CurveSamples  int       `json:"curve_samples"`  // segments per curved edge when linearising
	Algorithm     Algorithm `json:"algorithm"`
}

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		FabricWidth:   150,
		PanelGap:      2,
		AllowRotation: false,
		CurveSamples:  32,
		Algorithm:     AlgorithmGreedy,
	}
}

// Piece is a panel reduced to what the marker needs.
type Piece struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Width   float64 `json:"width"`  // bounding box width
	Height  float64 `json:"height"` // bounding box height
	Outline Outline `json:"outline,omitempty"`
}

// Placement represents a single piece placed on the marker.
type Placement struct {
	Piece   Piece   `json:"piece"`
	X       float64 `json:"x"`       // position across the fabric width
	Y       float64 `json:"y"`       // position along the roll
	Rotated bool    `json:"rotated"` // whether the piece was rotated 90°
}

// PlacedWidth returns the effective width considering rotation.
func (p Placement) PlacedWidth() float64 {
	if p.Rotated {
		return p.Piece.Height
	}
	return p.Piece.Width
}

// PlacedHeight returns the effective height considering rotation.
func (p Placement) PlacedHeight() float64 {
	if p.Rotated {
		return p.Piece.Width
	}
	return p.Piece.Height
}

// PlacedOutline returns the outline in marker coordinates.
func (p Placement) PlacedOutline() Outline {
	o := p.Piece.Outline
	if p.Rotated {
		o = o.Rotate90()
	}
	min, _ := o.BoundingBox()
	return o.Translate(p.X-min.X, p.Y-min.Y)
}

// Marker is the cutting layout of all pieces on one length of fabric.
type Marker struct {
	FabricWidth float64     `json:"fabric_width"`
	Length      float64     `json:"length"`
	Placements  []Placement `json:"placements"`
	Unplaced    []Piece     `json:"unplaced"`
}

// UsedArea returns the total outline area of placed pieces.
func (m Marker) UsedArea() float64 {
	var total float64
	for _, p := range m.Placements {
		if len(p.Piece.Outline) > 2 {
			total += p.Piece.Outline.Area()
		} else {
			total += p.PlacedWidth() * p.PlacedHeight()
		}
	}
	return total
}

// TotalArea returns the fabric area consumed by the marker.
func (m Marker) TotalArea() float64 {
	return m.FabricWidth * m.Length
}

// Efficiency returns the usage percentage.
func (m Marker) Efficiency() float64 {
	ta := m.TotalArea()
	if ta == 0 {
		return 0
	}
	return (m.UsedArea() / ta) * 100.0
}
