package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/StitchKit/internal/model"
)

// DefaultInventoryPath returns the default file path for the fabric inventory.
// This is located at ~/.stitchkit/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	if inv.Fabrics == nil {
		inv.Fabrics = []model.FabricPreset{}
	}
	return inv, nil
}

// ImportInventory imports fabrics from a user-specified JSON file,
// merging them into the existing inventory. Duplicate IDs are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}
	return MergeInventory(existing, imported), nil
}

// MergeInventory appends the fabrics of imported whose IDs are not yet in
// existing.
func MergeInventory(existing, imported model.Inventory) model.Inventory {
	ids := make(map[string]bool, len(existing.Fabrics))
	for _, f := range existing.Fabrics {
		ids[f.ID] = true
	}
	for _, f := range imported.Fabrics {
		if !ids[f.ID] {
			existing.Fabrics = append(existing.Fabrics, f)
			ids[f.ID] = true
		}
	}
	return existing
}
