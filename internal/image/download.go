package imagepkg

import (
	"context"
	"os"

	"github.com/youruser/staffbadge/internal/util"
)

// readSource returns the raw bytes of an asset given as a file path or an http(s) URL.
func readSource(ctx context.Context, src string) ([]byte, error) {
	if util.IsURL(src) {
		return util.GetBytes(ctx, src)
	}
	return os.ReadFile(src)
}
