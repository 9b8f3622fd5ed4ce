package engine

import (
	"fmt"

	"github.com/piwi3910/StitchKit/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.LayoutSettings
}

// ComparisonResult holds the marker and computed statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Marker        model.Marker
	Length        float64
	WastePercent  float64
	UnplacedCount int
}

// CompareScenarios lays the pieces out under each scenario and returns the
// results in scenario order.
func CompareScenarios(scenarios []ComparisonScenario, pieces []model.Piece) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		m := New(scenario.Settings).Optimize(pieces)
		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Marker:        m,
			Length:        m.Length,
			WastePercent:  100.0 - m.Efficiency(),
			UnplacedCount: len(m.Unplaced),
		})
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives to the current
// settings: the other algorithm, the opposite rotation rule, and one
// scenario per inventory fabric of a different width.
func BuildDefaultScenarios(base model.LayoutSettings, inv model.Inventory) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	alt := base
	if base.Algorithm == model.AlgorithmGenetic {
		alt.Algorithm = model.AlgorithmGreedy
		scenarios = append(scenarios, ComparisonScenario{Name: "Greedy Algorithm", Settings: alt})
	} else {
		alt.Algorithm = model.AlgorithmGenetic
		scenarios = append(scenarios, ComparisonScenario{Name: "Genetic Algorithm", Settings: alt})
	}

	rot := base
	rot.AllowRotation = !base.AllowRotation
	name := "Allow Rotation"
	if base.AllowRotation {
		name = "Keep Grain"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: rot})

	seen := map[float64]bool{base.FabricWidth: true}
	for _, f := range inv.Fabrics {
		if seen[f.Width] {
			continue
		}
		seen[f.Width] = true
		s := base
		f.ApplyToSettings(&s)
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%s (%.0f wide)", f.Name, f.Width),
			Settings: s,
		})
	}

	return scenarios
}
