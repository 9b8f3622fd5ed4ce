package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/StitchKit/internal/model"
)

// GeneticConfig holds parameters for the genetic algorithm optimizer.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 40,
		Generations:    60,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// gene represents a single piece placement decision in the chromosome.
type gene struct {
	pieceIndex int  // Index into the pieces slice
	rotated    bool // Whether this piece should be turned 90 degrees
}

// chromosome represents a candidate solution: an ordering of pieces with rotation flags.
type chromosome struct {
	genes   []gene
	fitness float64
}

// geneticOptimizer searches piece orders and rotations for the shortest marker.
type geneticOptimizer struct {
	settings model.LayoutSettings
	config   GeneticConfig
	pieces   []model.Piece
	rng      *rand.Rand
}

// newGeneticOptimizer creates a new genetic optimizer instance.
func newGeneticOptimizer(settings model.LayoutSettings, config GeneticConfig, pieces []model.Piece, seed int64) *geneticOptimizer {
	return &geneticOptimizer{
		settings: settings,
		config:   config,
		pieces:   pieces,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// optimize runs the genetic algorithm and returns the best marker.
func (g *geneticOptimizer) optimize() model.Marker {
	if len(g.pieces) == 0 {
		return model.Marker{FabricWidth: g.settings.FabricWidth}
	}

	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, g.config.PopulationSize)

		// Elitism: carry over the best individuals unchanged
		eliteCount := min(g.config.EliteCount, len(population))
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, g.copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)

			child.fitness = g.evaluate(child)
			newPop = append(newPop, child)
		}

		population = newPop
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return g.decode(population[0])
}

// initPopulation creates the initial random population.
func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.pieces)
	population := make([]chromosome, g.config.PopulationSize)

	for i := range population {
		genes := make([]gene, n)
		perm := g.rng.Perm(n)
		for j := 0; j < n; j++ {
			genes[j] = gene{
				pieceIndex: perm[j],
				rotated:    g.settings.AllowRotation && g.rng.Float64() < 0.5,
			}
		}
		population[i] = chromosome{genes: genes}
	}

	// Seed one chromosome with the tallest-first order so the GA never does
	// worse than the greedy heuristic's starting point.
	if g.config.PopulationSize > 0 {
		population[0] = g.createGreedyChromosome()
	}

	return population
}

// createGreedyChromosome creates a chromosome sorted by height descending.
func (g *geneticOptimizer) createGreedyChromosome() chromosome {
	n := len(g.pieces)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return g.pieces[indices[i]].Height > g.pieces[indices[j]].Height
	})

	genes := make([]gene, n)
	for i, idx := range indices {
		genes[i] = gene{pieceIndex: idx}
	}
	return chromosome{genes: genes}
}

// evaluate computes the fitness of a chromosome by decoding it into a marker
// and measuring fabric efficiency.
func (g *geneticOptimizer) evaluate(c chromosome) float64 {
	m := g.decode(c)
	if len(m.Placements) == 0 {
		return 0
	}
	// Penalize unplaced pieces heavily
	fitness := m.Efficiency()/100 - float64(len(m.Unplaced))*0.1
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// decode converts a chromosome into a marker using the strip packer.
func (g *geneticOptimizer) decode(c chromosome) model.Marker {
	opt := &Optimizer{Settings: g.settings}
	ordered := make([]model.Piece, len(c.genes))
	for i, gn := range c.genes {
		ordered[i] = g.pieces[gn.pieceIndex]
	}
	packer := opt.newPacker(ordered)
	m := model.Marker{FabricWidth: g.settings.FabricWidth}

	for i, piece := range ordered {
		rotated := c.genes[i].rotated && g.settings.AllowRotation
		w, h := piece.Width, piece.Height
		if rotated {
			w, h = h, w
		}
		ok, x, y := packer.insert(w, h)
		// Fall back to the other orientation
		if !ok && g.settings.AllowRotation {
			rotated = !rotated
			ok, x, y = packer.insert(h, w)
		}
		if !ok {
			m.Unplaced = append(m.Unplaced, piece)
			continue
		}
		pl := model.Placement{Piece: piece, X: x, Y: y, Rotated: rotated}
		m.Placements = append(m.Placements, pl)
		m.Length = max(m.Length, y+pl.PlacedHeight())
	}
	return m
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1) for permutation chromosomes.
// It preserves the relative order of genes from both parents.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{genes: make([]gene, n)}

	inSegment := make(map[int]bool)
	for i := point1; i <= point2; i++ {
		child.genes[i] = parent1.genes[i]
		inSegment[parent1.genes[i].pieceIndex] = true
	}

	childIdx := (point2 + 1) % n
	for _, pg := range parent2.genes {
		if !inSegment[pg.pieceIndex] {
			child.genes[childIdx] = pg
			childIdx = (childIdx + 1) % n
		}
	}

	return child
}

// mutate applies random mutations to a chromosome.
func (g *geneticOptimizer) mutate(c *chromosome) {
	n := len(c.genes)
	if n < 2 {
		return
	}

	// Swap mutation
	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}

	// Rotation mutation
	if g.settings.AllowRotation && g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		c.genes[i].rotated = !c.genes[i].rotated
	}

	// Inversion mutation: reverse a small segment (less frequent)
	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
			i++
			j--
		}
	}
}

// copyChromosome creates a deep copy of a chromosome.
func (g *geneticOptimizer) copyChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}

// OptimizeGenetic runs the genetic algorithm optimizer. The run is seeded,
// so the same pieces always give the same marker.
func OptimizeGenetic(settings model.LayoutSettings, pieces []model.Piece) model.Marker {
	config := DefaultGeneticConfig()
	if len(pieces) > 20 {
		config.Generations = 120
		config.PopulationSize = 60
	}
	ga := newGeneticOptimizer(settings, config, pieces, 42)
	return ga.optimize()
}
