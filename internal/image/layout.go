package imagepkg

import (
	"image"
	"image/color"
)

// Layout holds the fixed geometry of a badge. All points are relative to
// the top-left corner of the canvas.
type Layout struct {
	Width, Height int
	HeaderHeight  int
	BandColor     color.NRGBA
	TextColor     color.NRGBA

	LogoWidth, LogoHeight int
	LogoX                 int

	PhotoOrigin image.Point
	PhotoBorder int

	TextOrigin       image.Point
	PositionOffset   int
	DepartmentOffset int
	NameSize         float64
	PositionSize     float64
	DepartmentSize   float64
	InstitutionSize  float64

	QRSize   int
	QRMargin int
}

// DefaultLayout is the 1000x600 staff badge.
func DefaultLayout() Layout {
	const header = 120
	return Layout{
		Width:        1000,
		Height:       600,
		HeaderHeight: header,
		BandColor:    color.NRGBA{R: 80, G: 80, B: 80, A: 255},
		TextColor:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},

		LogoWidth:  150,
		LogoHeight: 80,
		LogoX:      30,

		PhotoOrigin: image.Pt(50, header+30),
		PhotoBorder: 6,

		TextOrigin:       image.Pt(350, header+80),
		PositionOffset:   70,
		DepartmentOffset: 120,
		NameSize:         50,
		PositionSize:     32,
		DepartmentSize:   28,
		InstitutionSize:  36,

		QRSize:   110,
		QRMargin: 20,
	}
}

// headerRect is the gray band across the top.
func (l Layout) headerRect() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.HeaderHeight)
}

// logoOrigin centers the logo vertically inside the band.
func (l Layout) logoOrigin() image.Point {
	return image.Pt(l.LogoX, (l.HeaderHeight-l.LogoHeight)/2)
}

// photoRect is the area covered by the resized photo.
func (l Layout) photoRect(width, height int) image.Rectangle {
	return image.Rect(0, 0, width, height).Add(l.PhotoOrigin)
}

// qrOrigin places the QR stamp in the bottom-right corner.
func (l Layout) qrOrigin() image.Point {
	return image.Pt(l.Width-l.QRMargin-l.QRSize, l.Height-l.QRMargin-l.QRSize)
}
