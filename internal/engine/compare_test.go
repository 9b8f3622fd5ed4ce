package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	inv := model.Inventory{Fabrics: []model.FabricPreset{
		model.NewFabricPreset("Same", 150, 0, "Cotton"),
		model.NewFabricPreset("Narrow", 110, 0, "Cotton"),
	}}
	scenarios := BuildDefaultScenarios(testSettings(), inv)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, model.AlgorithmGenetic, scenarios[1].Settings.Algorithm)
	assert.True(t, scenarios[2].Settings.AllowRotation)
	assert.Equal(t, 110.0, scenarios[3].Settings.FabricWidth)
}

func TestCompareScenarios(t *testing.T) {
	pieces := []model.Piece{box("A", 70, 50), box("B", 70, 50), box("C", 70, 50)}
	narrow := testSettings()
	narrow.FabricWidth = 100

	results := CompareScenarios([]ComparisonScenario{
		{Name: "wide", Settings: testSettings()},
		{Name: "narrow", Settings: narrow},
	}, pieces)

	require.Len(t, results, 2)
	assert.InDelta(t, 102.0, results[0].Length, 1e-9)
	assert.InDelta(t, 154.0, results[1].Length, 1e-9)
	assert.Zero(t, results[1].UnplacedCount)
	assert.Greater(t, results[1].WastePercent, results[0].WastePercent)
}
