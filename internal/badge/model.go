package badge

import "strings"

// Preset is the photo size option submitted with the form ("1".."4").
type Preset string

const (
	PresetSmall  Preset = "1"
	PresetMedium Preset = "2"
	PresetLarge  Preset = "3"
	PresetCustom Preset = "4"
)

// Dimensions is the size the uploaded photo is stretched to.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Request holds one badge submission.
type Request struct {
	Name            string `json:"name"`
	Position        string `json:"position"`
	Department      string `json:"department"`
	InstitutionName string `json:"institution_name"`
	RecipientEmail  string `json:"email"`
	Photo           []byte `json:"-"`
	Preset          Preset `json:"photo_size"`
	CustomWidth     string `json:"custom_width,omitempty"`
	CustomHeight    string `json:"custom_height,omitempty"`
}

// Normalize upper-cases the fields printed on the badge body.
func (r Request) Normalize() Request {
	r.Name = strings.ToUpper(r.Name)
	r.Position = strings.ToUpper(r.Position)
	r.Department = strings.ToUpper(r.Department)
	return r
}

// PhotoDimensions resolves the preset (and custom fields) to a photo size.
func (r Request) PhotoDimensions() Dimensions {
	return ResolveDimensions(r.Preset, r.CustomWidth, r.CustomHeight)
}

// Filename is the output name for the badge: "jane doe" -> "JANE_DOE.png".
func (r Request) Filename() string {
	return Filename(r.Name)
}

// Filename derives the badge file name from a staff name.
func Filename(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), " ", "_") + ".png"
}
