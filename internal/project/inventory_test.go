package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/StitchKit/internal/model"
)

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	if filepath.Base(path) != "inventory.json" {
		t.Errorf("expected filename inventory.json, got %s", filepath.Base(path))
	}
	if dir := filepath.Base(filepath.Dir(path)); dir != ".stitchkit" {
		t.Errorf("expected parent dir .stitchkit, got %s", dir)
	}
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_inventory.json")

	inv := model.Inventory{
		Fabrics: []model.FabricPreset{model.NewFabricPreset("Test Linen", 140, 250, "Linen")},
	}
	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("inventory file was not created")
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(loaded.Fabrics) != 1 {
		t.Fatalf("expected 1 fabric, got %d", len(loaded.Fabrics))
	}
	if loaded.Fabrics[0].Name != "Test Linen" {
		t.Errorf("expected fabric name 'Test Linen', got %q", loaded.Fabrics[0].Name)
	}
	if loaded.Fabrics[0].Length != 250 {
		t.Errorf("expected length 250, got %f", loaded.Fabrics[0].Length)
	}
}

func TestLoadInventoryCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "inventory.json")

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(inv.Fabrics) != len(model.DefaultInventory().Fabrics) {
		t.Errorf("expected default fabrics, got %d", len(inv.Fabrics))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("default inventory should have been saved")
	}
}

func TestImportInventoryMergesByID(t *testing.T) {
	dir := t.TempDir()
	existing := model.Inventory{Fabrics: []model.FabricPreset{model.NewFabricPreset("Silk", 110, 0, "Silk")}}

	imported := model.Inventory{Fabrics: []model.FabricPreset{
		existing.Fabrics[0],
		model.NewFabricPreset("Wool", 150, 0, "Wool"),
	}}
	path := filepath.Join(dir, "import.json")
	if err := SaveInventory(path, imported); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportInventory(path, existing)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}
	if len(merged.Fabrics) != 2 {
		t.Fatalf("expected 2 fabrics after merge, got %d", len(merged.Fabrics))
	}
	if merged.Fabrics[1].Name != "Wool" {
		t.Errorf("expected Wool appended, got %q", merged.Fabrics[1].Name)
	}
}

func TestImportInventoryBadFile(t *testing.T) {
	existing := model.DefaultInventory()
	got, err := ImportInventory(filepath.Join(t.TempDir(), "missing.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(got.Fabrics) != len(existing.Fabrics) {
		t.Error("existing inventory should be returned unchanged")
	}
}
