package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType classifies a parsed movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0 travel, knife up
	MoveFeed                    // G1 in the XY plane, cutting
	MovePlunge                  // Z going down without XY motion
	MoveRetract                 // Z going up
)

// Move is a single parsed G0 or G1 command in absolute coordinates.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Length is the XY distance covered by the move.
func (m Move) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var wordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads a cut file into moves. Only G0 and G1 are interpreted; other
// commands and comments are skipped. Positions start at the origin.
func Parse(code string) []Move {
	var moves []Move
	var x, y, z, feed float64

	for _, line := range strings.Split(code, "\n") {
		line = strings.ToUpper(stripComment(line))
		rapid, ok := motion(line)
		if !ok {
			continue
		}

		nx, ny, nz, nf := x, y, z, feed
		for _, w := range wordRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(w[2], 64)
			if err != nil {
				continue
			}
			switch w[1] {
			case "X":
				nx = v
			case "Y":
				ny = v
			case "Z":
				nz = v
			case "F":
				nf = v
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(rapid, z, nz, x != nx || y != ny),
			FromX:    x,
			FromY:    y,
			FromZ:    z,
			ToX:      nx,
			ToY:      ny,
			ToZ:      nz,
			FeedRate: nf,
		})
		x, y, z, feed = nx, ny, nz, nf
	}
	return moves
}

// stripComment removes ";" comments and one parenthesised comment.
func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "("); i >= 0 {
		if j := strings.Index(line, ")"); j > i {
			line = line[:i] + line[j+1:]
		} else {
			line = line[:i]
		}
	}
	return strings.TrimSpace(line)
}

// motion reports whether line is a G0/G1 command and whether it is rapid.
func motion(line string) (rapid, ok bool) {
	cmd, _, _ := strings.Cut(line, " ")
	switch cmd {
	case "G0", "G00":
		return true, true
	case "G1", "G01":
		return false, true
	}
	return false, false
}

func classifyMove(rapid bool, fromZ, toZ float64, hasXY bool) MoveType {
	dz := toZ - fromZ
	switch {
	case rapid:
		if dz > 0 {
			return MoveRetract
		}
		return MoveRapid
	case dz < -0.001 && !hasXY:
		return MovePlunge
	case dz > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Summary totals a parsed cut file.
type Summary struct {
	Moves        int
	Plunges      int
	CutLength    float64 // mm with the knife down
	TravelLength float64 // mm of rapid travel
}

// Summarize adds up the cut and travel distances of moves.
func Summarize(moves []Move) Summary {
	s := Summary{Moves: len(moves)}
	for _, m := range moves {
		switch m.Type {
		case MoveFeed:
			s.CutLength += m.Length()
		case MoveRapid:
			s.TravelLength += m.Length()
		case MovePlunge:
			s.Plunges++
		}
	}
	return s
}
