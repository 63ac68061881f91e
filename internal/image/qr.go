package imagepkg

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/youruser/staffbadge/internal/badge"
)

// GenerateQRImage returns a size x size QR code for text, quiet zone included.
func GenerateQRImage(text string, size int) (image.Image, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}

// verificationText is what the badge QR encodes.
func verificationText(req badge.Request) string {
	return strings.Join([]string{req.Name, req.Position, req.Department, req.InstitutionName}, "|")
}

func stampQR(canvas *image.NRGBA, req badge.Request, l Layout) (*image.NRGBA, error) {
	q, err := GenerateQRImage(verificationText(req), l.QRSize)
	if err != nil {
		return nil, err
	}
	q = imaging.Resize(q, l.QRSize, l.QRSize, imaging.NearestNeighbor)
	return imaging.Paste(canvas, q, l.qrOrigin()), nil
}
