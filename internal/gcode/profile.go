package gcode

// Profile is a post-processor configuration for a cutting table controller.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode []string `json:"start_code"` // commands at start of file
	KnifeOn   string   `json:"knife_on"`   // oscillating knife or drag head on
	KnifeOff  string   `json:"knife_off"`
	EndCode   []string `json:"end_code"` // [SafeZ] is replaced with the knife up height

	RapidMove string `json:"rapid_move"`
	FeedMove  string `json:"feed_move"`

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"` // e.g. ")" for parenthesised comments

	DecimalPlaces int `json:"decimal_places"`
}

// Profiles are the built-in cutter profiles. The first is the fallback.
var Profiles = []Profile{
	{
		Name:          "Generic",
		Description:   "Plain G-code, absolute millimetres",
		StartCode:     []string{"G90", "G21"},
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		DecimalPlaces: 2,
	},
	{
		Name:          "Grbl",
		Description:   "Grbl controllers with a spindle-switched oscillating knife",
		StartCode:     []string{"G90", "G21", "G17"},
		KnifeOn:       "M3",
		KnifeOff:      "M5",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M30"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC with parenthesised comments",
		StartCode:     []string{"G90", "G21", "G17", "G64 P0.05"},
		KnifeOn:       "M3",
		KnifeOff:      "M5",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 3,
	},
}

// GetProfile returns the named profile, or the generic one.
func GetProfile(name string) Profile {
	for _, p := range Profiles {
		if p.Name == name {
			return p
		}
	}
	return Profiles[0]
}

// ProfileNames lists the built-in profile names.
func ProfileNames() []string {
	names := make([]string, len(Profiles))
	for i, p := range Profiles {
		names[i] = p.Name
	}
	return names
}
