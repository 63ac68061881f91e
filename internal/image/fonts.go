package imagepkg

import (
	"errors"
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

var errFontUnavailable = errors.New("badge fonts unavailable")

// FontSet holds the four faces used on a badge.
type FontSet struct {
	Name        font.Face
	Position    font.Face
	Department  font.Face
	Institution font.Face
}

// Close releases the faces. Closing the default set is a no-op.
func (fs FontSet) Close() {
	for _, f := range []font.Face{fs.Name, fs.Position, fs.Department, fs.Institution} {
		if f != nil {
			_ = f.Close()
		}
	}
}

// loadFontSet creates fresh faces from the parsed fonts. It fails as a
// whole if either font is missing or any face cannot be built.
func loadFontSet(bold, regular *opentype.Font, l Layout) (FontSet, error) {
	if bold == nil || regular == nil {
		return FontSet{}, errFontUnavailable
	}

	var fs FontSet
	specs := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&fs.Name, bold, l.NameSize},
		{&fs.Position, regular, l.PositionSize},
		{&fs.Department, regular, l.DepartmentSize},
		{&fs.Institution, bold, l.InstitutionSize},
	}
	for _, s := range specs {
		face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fs.Close()
			return FontSet{}, fmt.Errorf("create %.0fpt face: %w", s.size, err)
		}
		*s.dst = face
	}
	return fs, nil
}

// defaultFontSet uses one bitmap face for every text element.
func defaultFontSet() FontSet {
	return FontSet{
		Name:        basicfont.Face7x13,
		Position:    basicfont.Face7x13,
		Department:  basicfont.Face7x13,
		Institution: basicfont.Face7x13,
	}
}
