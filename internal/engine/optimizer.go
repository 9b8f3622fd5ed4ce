package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/StitchKit/internal/model"
)

// Optimizer lays pattern pieces out on a single length of fabric.
type Optimizer struct {
	Settings model.LayoutSettings
}

func New(settings model.LayoutSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Layout turns every panel of p into a piece and packs the pieces into a
// marker.
func (o *Optimizer) Layout(p model.Pattern) (model.Marker, error) {
	pieces, err := Pieces(p, o.Settings.CurveSamples)
	if err != nil {
		return model.Marker{}, err
	}
	return o.Optimize(pieces), nil
}

// Pieces linearises each panel outline and moves it so its bounding box
// starts at the origin.
func Pieces(p model.Pattern, curveSamples int) ([]model.Piece, error) {
	if curveSamples < 1 {
		curveSamples = 1
	}
	var pieces []model.Piece
	for _, name := range p.PanelNames() {
		outline, err := p.Panels[name].Outline(curveSamples)
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", name, err)
		}
		if len(outline) < 3 {
			return nil, fmt.Errorf("panel %s: outline has %d points", name, len(outline))
		}
		lo, hi := outline.BoundingBox()
		pieces = append(pieces, model.Piece{
			ID:      name,
			Label:   name,
			Width:   hi.X - lo.X,
			Height:  hi.Y - lo.Y,
			Outline: outline.Translate(-lo.X, -lo.Y),
		})
	}
	return pieces, nil
}

// Optimize packs pieces into a marker as short as it can find.
func (o *Optimizer) Optimize(pieces []model.Piece) model.Marker {
	if o.Settings.Algorithm == model.AlgorithmGenetic {
		return OptimizeGenetic(o.Settings, pieces)
	}
	return o.optimizeGreedy(pieces)
}

// pieceOrder sorts pieces before greedy packing.
type pieceOrder int

const (
	orderHeight pieceOrder = iota // tallest first
	orderArea                     // largest bounding box first
	orderWidth                    // widest first
)

// optimizeGreedy tries every combination of piece order and rotation
// strategy and keeps the marker that places the most pieces in the
// shortest length.
func (o *Optimizer) optimizeGreedy(pieces []model.Piece) model.Marker {
	strategies := []rotationStrategy{rotAllNormal}
	if o.Settings.AllowRotation {
		strategies = append(strategies, rotBestFit, rotAllRotated)
	}

	var best model.Marker
	found := false
	for _, order := range []pieceOrder{orderHeight, orderArea, orderWidth} {
		sorted := sortPieces(pieces, order)
		for _, strat := range strategies {
			m := o.pack(sorted, strat)
			if !found || better(m, best) {
				best = m
				found = true
			}
		}
	}
	if !found {
		return model.Marker{FabricWidth: o.Settings.FabricWidth}
	}
	return best
}

// better reports whether a beats b: more pieces placed, then shorter.
func better(a, b model.Marker) bool {
	if len(a.Placements) != len(b.Placements) {
		return len(a.Placements) > len(b.Placements)
	}
	return a.Length < b.Length-0.001
}

func sortPieces(pieces []model.Piece, order pieceOrder) []model.Piece {
	sorted := make([]model.Piece, len(pieces))
	copy(sorted, pieces)
	key := func(p model.Piece) float64 {
		switch order {
		case orderArea:
			return p.Width * p.Height
		case orderWidth:
			return p.Width
		default:
			return p.Height
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	return sorted
}

// rotationStrategy controls how pieces are rotated during packing.
type rotationStrategy int

const (
	rotBestFit    rotationStrategy = iota // Compare both orientations, pick the lower top edge
	rotAllNormal                          // Always use normal orientation (fallback to rotated if allowed)
	rotAllRotated                         // Prefer rotated (fallback to normal if it doesn't fit)
)

// pack places pieces in the given order onto an open-ended strip of fabric.
func (o *Optimizer) pack(pieces []model.Piece, strategy rotationStrategy) model.Marker {
	packer := o.newPacker(pieces)
	m := model.Marker{FabricWidth: o.Settings.FabricWidth}

	for _, piece := range pieces {
		var ok, rotated bool
		var x, y float64

		switch strategy {
		case rotBestFit:
			normalTop := packer.bestFit(piece.Width, piece.Height)
			rotatedTop := packer.bestFit(piece.Height, piece.Width)
			if rotatedTop >= 0 && (normalTop < 0 || rotatedTop < normalTop) {
				ok, x, y = packer.insert(piece.Height, piece.Width)
				rotated = ok
			} else {
				ok, x, y = packer.insert(piece.Width, piece.Height)
			}
		case rotAllRotated:
			if ok, x, y = packer.insert(piece.Height, piece.Width); ok {
				rotated = true
			} else {
				ok, x, y = packer.insert(piece.Width, piece.Height)
			}
		default:
			ok, x, y = packer.insert(piece.Width, piece.Height)
			if !ok && o.Settings.AllowRotation {
				if ok, x, y = packer.insert(piece.Height, piece.Width); ok {
					rotated = true
				}
			}
		}

		if !ok {
			m.Unplaced = append(m.Unplaced, piece)
			continue
		}
		pl := model.Placement{Piece: piece, X: x, Y: y, Rotated: rotated}
		m.Placements = append(m.Placements, pl)
		m.Length = math.Max(m.Length, y+pl.PlacedHeight())
	}
	return m
}

// newPacker opens a strip one gap wider than the fabric, so the gap only
// separates neighbouring pieces, and long enough to hold every piece
// stacked on its longer side.
func (o *Optimizer) newPacker(pieces []model.Piece) *stripPacker {
	gap := o.Settings.PanelGap
	length := gap
	for _, p := range pieces {
		length += math.Max(p.Width, p.Height) + gap
	}
	return newStripPacker(o.Settings.FabricWidth+gap, length, gap)
}

// stripPacker is a maximal-rectangles packer that favours the placement
// with the lowest top edge.
type stripPacker struct {
	freeRects []rect
	gap       float64
}

type rect struct {
	x, y, w, h float64
}

func newStripPacker(width, length, gap float64) *stripPacker {
	return &stripPacker{
		freeRects: []rect{{0, 0, width, length}},
		gap:       gap,
	}
}

// choose returns the index of the free rect to use for a w x h piece, or -1.
// Lowest top edge wins, then least wasted area, then leftmost.
func (sp *stripPacker) choose(w, h float64) int {
	best := -1
	var bestTop, bestWaste float64
	wg := w + sp.gap
	hg := h + sp.gap
	for i, r := range sp.freeRects {
		if wg > r.w+0.001 || hg > r.h+0.001 {
			continue
		}
		top := r.y + h
		waste := r.w*r.h - w*h
		switch {
		case best < 0,
			top < bestTop-0.001,
			math.Abs(top-bestTop) <= 0.001 && waste < bestWaste-0.001,
			math.Abs(top-bestTop) <= 0.001 && math.Abs(waste-bestWaste) <= 0.001 && r.x < sp.freeRects[best].x:
			best, bestTop, bestWaste = i, top, waste
		}
	}
	return best
}

// insert tries to place a piece of given dimensions. Returns success and position.
func (sp *stripPacker) insert(w, h float64) (bool, float64, float64) {
	idx := sp.choose(w, h)
	if idx < 0 {
		return false, 0, 0
	}
	chosen := sp.freeRects[idx]
	placed := rect{x: chosen.x, y: chosen.y, w: w + sp.gap, h: h + sp.gap}
	sp.splitAroundPlacement(placed)
	return true, chosen.x, chosen.y
}

// bestFit returns the top edge a w x h piece would reach without modifying
// the packer state. Returns -1 if it doesn't fit.
func (sp *stripPacker) bestFit(w, h float64) float64 {
	idx := sp.choose(w, h)
	if idx < 0 {
		return -1
	}
	return sp.freeRects[idx].y + h
}

// splitAroundPlacement removes all free rects that overlap with the placed rect
// and generates maximal sub-rects from each overlap. Then prunes contained rects.
func (sp *stripPacker) splitAroundPlacement(placed rect) {
	var newRects []rect

	for _, r := range sp.freeRects {
		if !rectsOverlap(r, placed) {
			newRects = append(newRects, r)
			continue
		}

		// Left strip (full height of original rect)
		if placed.x > r.x+0.001 {
			newRects = append(newRects, rect{
				x: r.x, y: r.y,
				w: placed.x - r.x, h: r.h,
			})
		}
		// Right strip (full height of original rect)
		if placed.x+placed.w < r.x+r.w-0.001 {
			newRects = append(newRects, rect{
				x: placed.x + placed.w, y: r.y,
				w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
			})
		}
		// Near strip (full width of original rect)
		if placed.y > r.y+0.001 {
			newRects = append(newRects, rect{
				x: r.x, y: r.y,
				w: r.w, h: placed.y - r.y,
			})
		}
		// Far strip (full width of original rect)
		if placed.y+placed.h < r.y+r.h-0.001 {
			newRects = append(newRects, rect{
				x: r.x, y: placed.y + placed.h,
				w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
			})
		}
	}

	sp.freeRects = pruneContained(newRects)
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-0.001 && a.x+a.w > b.x+0.001 &&
		a.y < b.y+b.h-0.001 && a.y+a.h > b.y+0.001
}

// pruneContained removes any rect that is fully contained within another.
// Of two identical rects the first one is kept.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if !containsRect(a, b) || j < i {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+0.001 && outer.y <= inner.y+0.001 &&
		outer.x+outer.w >= inner.x+inner.w-0.001 &&
		outer.y+outer.h >= inner.y+inner.h-0.001
}
