package imagepkg

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/errgroup"
)

// AssetSources names where each visual asset is read from.
type AssetSources struct {
	Background  string
	Logo        string
	BoldFont    string
	RegularFont string
}

// VisualAssets is the read-only asset set shared by all compositions.
// Images are kept encoded and decoded per badge. A nil font means it
// could not be loaded and the composer will use the default font.
type VisualAssets struct {
	Background []byte
	Logo       []byte
	Bold       *opentype.Font
	Regular    *opentype.Font
}

// LoadAssets reads all sources concurrently. Missing background or logo
// files are an error; fonts that cannot be read or parsed are logged and
// left nil.
func LoadAssets(ctx context.Context, src AssetSources, log *zap.Logger) (*VisualAssets, error) {
	var a VisualAssets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := readSource(gctx, src.Background)
		if err != nil {
			return fmt.Errorf("read background %s: %w", src.Background, err)
		}
		a.Background = b
		return nil
	})
	g.Go(func() error {
		b, err := readSource(gctx, src.Logo)
		if err != nil {
			return fmt.Errorf("read logo %s: %w", src.Logo, err)
		}
		a.Logo = b
		return nil
	})
	g.Go(func() error {
		a.Bold = loadFont(gctx, src.BoldFont, log)
		return nil
	})
	g.Go(func() error {
		a.Regular = loadFont(gctx, src.RegularFont, log)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("Badge assets loaded",
		zap.String("background", src.Background),
		zap.Int("background_bytes", len(a.Background)),
		zap.String("logo", src.Logo),
		zap.Int("logo_bytes", len(a.Logo)),
		zap.Bool("fonts_loaded", a.Bold != nil && a.Regular != nil))

	return &a, nil
}

func loadFont(ctx context.Context, src string, log *zap.Logger) *opentype.Font {
	if src == "" {
		return nil
	}
	b, err := readSource(ctx, src)
	if err != nil {
		log.Warn("Font unavailable, default font will be used", zap.String("font", src), zap.Error(err))
		return nil
	}
	f, err := opentype.Parse(b)
	if err != nil {
		log.Warn("Font could not be parsed, default font will be used", zap.String("font", src), zap.Error(err))
		return nil
	}
	return f
}
