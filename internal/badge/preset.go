package badge

import (
	"strconv"
	"strings"
)

// DefaultDimensions is used for unknown presets and unparsable custom sizes.
var DefaultDimensions = Dimensions{Width: 250, Height: 300}

var presetTable = map[Preset]Dimensions{
	PresetSmall:  {Width: 200, Height: 250},
	PresetMedium: {Width: 250, Height: 300},
	PresetLarge:  {Width: 300, Height: 360},
}

// ResolveDimensions maps a preset to its photo size. For PresetCustom a
// missing field takes its default, and any non-numeric field makes both
// sides fall back to DefaultDimensions. Numeric values are returned as is,
// non-positive ones included; rejecting those is up to the composer.
func ResolveDimensions(p Preset, customWidth, customHeight string) Dimensions {
	if d, ok := presetTable[p]; ok {
		return d
	}
	if p != PresetCustom {
		return DefaultDimensions
	}

	w, err := parseSide(customWidth, DefaultDimensions.Width)
	if err != nil {
		return DefaultDimensions
	}
	h, err := parseSide(customHeight, DefaultDimensions.Height)
	if err != nil {
		return DefaultDimensions
	}
	return Dimensions{Width: w, Height: h}
}

func parseSide(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
