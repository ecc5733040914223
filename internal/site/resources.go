package site

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/view"
)

// Resources copies the theme's static files under /site-resources/.
func (b *Builder) Resources(ctx context.Context) error {
	th := b.d.View.Theme()
	files, err := th.AssetFiles()
	if err != nil {
		return fmt.Errorf("theme %s assets: %w", th.Name, err)
	}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := fs.ReadFile(th.Assets, name)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", name, err)
		}
		dst := filepath.Join(b.d.Site.OutputDir(), filepath.FromSlash(theme.AssetPath(name)))
		if err := view.WriteFile(dst, "resource", raw); err != nil {
			return err
		}
	}
	return nil
}
