package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/StitchKit/internal/model"
)

// PatternExt is the file extension used for saved patterns.
const PatternExt = ".stitch.json"

// SavePattern writes an assembled pattern to path as indented JSON.
func SavePattern(path string, p model.Pattern) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid pattern: %w", err)
	}
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("failed to write pattern: %w", err)
	}
	return nil
}

// LoadPattern reads and validates a pattern file.
func LoadPattern(path string) (model.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Pattern{}, fmt.Errorf("failed to read pattern: %w", err)
	}
	var p model.Pattern
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Pattern{}, fmt.Errorf("failed to parse pattern: %w", err)
	}
	if p.Panels == nil {
		p.Panels = map[string]model.PanelSpec{}
	}
	if len(p.PanelOrder) == 0 {
		p.PanelOrder = p.PanelNames()
	}
	if err := p.Validate(); err != nil {
		return model.Pattern{}, fmt.Errorf("invalid pattern %s: %w", path, err)
	}
	return p, nil
}
