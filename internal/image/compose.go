package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/youruser/staffbadge/internal/badge"
)

// RenderedBadge is a composed badge and its PNG encoding. Both the file
// store and the email attachment use PNG as is.
type RenderedBadge struct {
	Image    *image.NRGBA
	Filename string
	PNG      []byte
}

// Composer renders badges from a fixed layout and a shared, read-only
// asset set. It keeps no per-request state and is safe for concurrent use.
type Composer struct {
	assets *VisualAssets
	layout Layout
	withQR bool
}

// Option configures a Composer.
type Option func(*Composer)

// WithLayout replaces the default badge geometry.
func WithLayout(l Layout) Option {
	return func(c *Composer) { c.layout = l }
}

// WithQRStamp adds a verification QR code to the bottom-right corner.
func WithQRStamp(enabled bool) Option {
	return func(c *Composer) { c.withQR = enabled }
}

func NewComposer(assets *VisualAssets, opts ...Option) *Composer {
	c := &Composer{assets: assets, layout: DefaultLayout()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders req onto a new canvas. Same request and assets give
// byte-identical PNG output.
func (c *Composer) Compose(req badge.Request) (*RenderedBadge, error) {
	l := c.layout
	req = req.Normalize()

	dims := req.PhotoDimensions()
	if !dims.Valid() || dims.Width > l.Width-l.PhotoOrigin.X || dims.Height > l.Height-l.PhotoOrigin.Y {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, dims.Width, dims.Height)
	}

	bg, err := decode(c.assets.Background, AssetBackground, false)
	if err != nil {
		return nil, err
	}
	logo, err := decode(c.assets.Logo, AssetLogo, false)
	if err != nil {
		return nil, err
	}
	photo, err := decode(req.Photo, AssetPhoto, true)
	if err != nil {
		return nil, err
	}

	canvas := imaging.Resize(bg, l.Width, l.Height, imaging.Lanczos)
	fillRect(canvas, l.headerRect(), l.BandColor)

	logo = imaging.Resize(logo, l.LogoWidth, l.LogoHeight, imaging.Lanczos)
	canvas = imaging.Overlay(canvas, logo, l.logoOrigin(), 1.0)

	fonts, err := loadFontSet(c.assets.Bold, c.assets.Regular, l)
	if err != nil {
		fonts = defaultFontSet()
	}
	defer fonts.Close()

	drawCentered(canvas, l.headerRect(), req.InstitutionName, fonts.Institution, l.TextColor)

	// border first; the photo covers all of it except the frame
	photoRect := l.photoRect(dims.Width, dims.Height)
	fillRect(canvas, photoRect.Inset(-l.PhotoBorder), l.BandColor)
	photo = flatten(imaging.Resize(photo, dims.Width, dims.Height, imaging.Lanczos))
	canvas = imaging.Paste(canvas, photo, photoRect.Min)

	drawText(canvas, l.TextOrigin, req.Name, fonts.Name, l.TextColor)
	drawText(canvas, l.TextOrigin.Add(image.Pt(0, l.PositionOffset)), req.Position, fonts.Position, l.TextColor)
	drawText(canvas, l.TextOrigin.Add(image.Pt(0, l.DepartmentOffset)), req.Department, fonts.Department, l.TextColor)

	if c.withQR {
		canvas, err = stampQR(canvas, req, l)
		if err != nil {
			return nil, fmt.Errorf("stamp qr: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}

	return &RenderedBadge{
		Image:    canvas,
		Filename: req.Filename(),
		PNG:      buf.Bytes(),
	}, nil
}

func decode(b []byte, asset string, autoOrient bool) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, &DecodeError{Asset: asset, Err: err}
	}
	return img, nil
}

// flatten composites img over black so the pasted photo is fully opaque.
func flatten(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.Black), img, image.Point{}, 1.0)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawText places s with the top of its ascender at origin.
func drawText(dst draw.Image, origin image.Point, s string, face font.Face, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// drawCentered centers the ink bounds of s inside r.
func drawCentered(dst draw.Image, r image.Rectangle, s string, face font.Face, c color.Color) {
	bounds, _ := font.BoundString(face, s)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := r.Min.X + (r.Dx()-w)/2 - bounds.Min.X.Floor()
	y := r.Min.Y + (r.Dy()-h)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
