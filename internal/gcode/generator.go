// Package gcode turns a fabric marker into a cut file for a cutting table
// and reads such files back for statistics.
package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/StitchKit/internal/model"
)

// Settings control the cut file. Heights and rates are in millimetres;
// SeamAllowance is in pattern units.
type Settings struct {
	Profile       string  `json:"profile"`
	FeedRate      float64 `json:"feed_rate"`   // mm/min along the outline
	PlungeRate    float64 `json:"plunge_rate"` // mm/min lowering the knife
	SafeZ         float64 `json:"safe_z"`      // knife up
	CutZ          float64 `json:"cut_z"`       // knife down
	SeamAllowance float64 `json:"seam_allowance"`
}

// DefaultSettings suit a drag knife on a vacuum table.
func DefaultSettings() Settings {
	return Settings{
		Profile:    "Generic",
		FeedRate:   6000,
		PlungeRate: 1500,
		SafeZ:      5,
		CutZ:       -1,
	}
}

// UnitScale converts pattern units to millimetres. Unknown units are taken
// as centimetres.
func UnitScale(units string) float64 {
	switch strings.ToLower(units) {
	case "mm":
		return 1
	case "in", "inch", "inches":
		return 25.4
	default:
		return 10
	}
}

// Generator produces cut files from markers.
type Generator struct {
	Settings Settings
	profile  Profile
}

func New(settings Settings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  GetProfile(settings.Profile),
	}
}

// Generate writes one cut path per placed panel of m. Coordinates are the
// marker's, scaled from the units of p to millimetres.
func (g *Generator) Generate(p model.Pattern, m model.Marker) string {
	var b strings.Builder
	scale := UnitScale(p.Units)

	g.writeHeader(&b, p, m, scale)
	for i, pl := range m.Placements {
		g.writePiece(&b, pl, i+1, scale)
	}
	for _, piece := range m.Unplaced {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: %s was not placed and is not cut", piece.Label)))
	}
	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, p model.Pattern, m model.Marker, scale float64) {
	pr := g.profile
	b.WriteString(g.comment(fmt.Sprintf("StitchKit cut file: %s", p.Name)))
	b.WriteString(g.comment(fmt.Sprintf("Fabric: %.1f x %.1f mm", m.FabricWidth*scale, m.Length*scale)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Efficiency: %.1f%%", len(m.Placements), m.Efficiency())))
	b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min", g.Settings.FeedRate, g.Settings.PlungeRate)))
	if g.Settings.SeamAllowance > 0 {
		b.WriteString(g.comment(fmt.Sprintf("Seam allowance: %.2f %s", g.Settings.SeamAllowance, p.Units)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", pr.Name)))
	b.WriteString("\n")

	for _, code := range pr.StartCode {
		b.WriteString(code + "\n")
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", pr.RapidMove, g.format(g.Settings.SafeZ)))
	if pr.KnifeOn != "" {
		b.WriteString(pr.KnifeOn + "\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	pr := g.profile
	b.WriteString(g.comment("=== Job complete ==="))
	if pr.KnifeOff != "" {
		b.WriteString(pr.KnifeOff + "\n")
	}
	for _, code := range pr.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ)) + "\n")
	}
}

// writePiece cuts once around the placed outline, grown by the seam
// allowance, and lifts the knife.
func (g *Generator) writePiece(b *strings.Builder, pl model.Placement, num int, scale float64) {
	pr := g.profile
	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s (%.1f x %.1f)%s ---",
		num, pl.Piece.Label, pl.Piece.Width, pl.Piece.Height, rotatedStr(pl.Rotated))))

	outline := pl.PlacedOutline()
	if len(outline) < 3 {
		b.WriteString(g.comment("WARNING: outline has fewer than 3 points, skipping"))
		return
	}
	if g.Settings.SeamAllowance > 0 {
		outline = offsetOutline(outline, g.Settings.SeamAllowance)
	}

	first := outline[0].Scale(scale)
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", pr.RapidMove, g.format(first.X), g.format(first.Y)))
	b.WriteString(fmt.Sprintf("%s Z%s F%s\n", pr.FeedMove, g.format(g.Settings.CutZ), g.format(g.Settings.PlungeRate)))
	for i := 1; i <= len(outline); i++ {
		pt := outline[i%len(outline)].Scale(scale)
		line := fmt.Sprintf("%s X%s Y%s", pr.FeedMove, g.format(pt.X), g.format(pt.Y))
		if i == 1 {
			line += " F" + g.format(g.Settings.FeedRate)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", pr.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

// offsetOutline moves every vertex outward by dist along the mitred bisector
// of its two edges. Either winding is accepted.
func offsetOutline(outline model.Outline, dist float64) model.Outline {
	n := len(outline)
	if n < 3 {
		return outline
	}
	// The left normal points outward on a clockwise outline.
	side := 1.0
	if signedArea(outline) > 0 {
		side = -1
	}

	out := make(model.Outline, n)
	for i, cur := range outline {
		prev, next := outline[(i-1+n)%n], outline[(i+1)%n]
		n1 := unitNormal(cur.Sub(prev)).Scale(side)
		n2 := unitNormal(next.Sub(cur)).Scale(side)
		bis := n1.Add(n2)
		if bis.Len() < 1e-9 {
			out[i] = cur.Add(n1.Scale(dist))
			continue
		}
		bis = bis.Scale(1 / bis.Len())
		// Sharp corners would throw the miter far out; cap it.
		cos := max(bis.Dot(n1), 0.25)
		out[i] = cur.Add(bis.Scale(dist / cos))
	}
	return out
}

// unitNormal is the left normal of d, or zero for a zero vector.
func unitNormal(d model.Point2D) model.Point2D {
	l := d.Len()
	if l < 1e-9 {
		return model.Point2D{}
	}
	return d.Perp().Scale(1 / l)
}

func signedArea(o model.Outline) float64 {
	a := 0.0
	for i, p := range o {
		q := o[(i+1)%len(o)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
