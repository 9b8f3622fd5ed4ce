package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	Units string `json:"units"` // "cm", "mm" or "in"

	// Assembly
	LengthTolerance float64 `json:"length_tolerance"` // relative stitch length mismatch that triggers a warning

	// Layout defaults
	CurveSamples  int       `json:"curve_samples"`
	FabricWidth   float64   `json:"fabric_width"`
	PanelGap      float64   `json:"panel_gap"`
	AllowRotation bool      `json:"allow_rotation"`
	Algorithm     Algorithm `json:"algorithm"`

	// Export
	PageSize string `json:"page_size"` // "A4", "A3", "Letter"

	// Application preferences
	DefaultGarment string   `json:"default_garment"`
	RecentPatterns []string `json:"recent_patterns"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultLayoutSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultLayoutSettings()
	return AppConfig{
		Units:           "cm",
		LengthTolerance: 0.01,
		CurveSamples:    defaults.CurveSamples,
		FabricWidth:     defaults.FabricWidth,
		PanelGap:        defaults.PanelGap,
		AllowRotation:   defaults.AllowRotation,
		Algorithm:       defaults.Algorithm,
		PageSize:        "A4",
		DefaultGarment:  "panel_skirt",
		RecentPatterns:  []string{},
	}
}

// ApplyToSettings copies the layout defaults from AppConfig into s.
func (c AppConfig) ApplyToSettings(s *LayoutSettings) {
	s.FabricWidth = c.FabricWidth
	s.PanelGap = c.PanelGap
	s.AllowRotation = c.AllowRotation
	s.CurveSamples = c.CurveSamples
	if c.Algorithm != "" {
		s.Algorithm = c.Algorithm
	}
}

// LayoutSettings returns DefaultLayoutSettings overridden by the config.
func (c AppConfig) LayoutSettings() LayoutSettings {
	s := DefaultLayoutSettings()
	c.ApplyToSettings(&s)
	return s
}

// AddRecent puts path at the front of RecentPatterns, keeping at most n entries.
func (c *AppConfig) AddRecent(path string, n int) {
	out := []string{path}
	for _, p := range c.RecentPatterns {
		if p != path && len(out) < n {
			out = append(out, p)
		}
	}
	c.RecentPatterns = out
}
