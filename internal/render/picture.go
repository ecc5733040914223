package render

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yanizio/trailhead/internal/content"
)

// PictureFile is one file of a picture asset.
type PictureFile struct {
	FileName string
	URL      string
	Width    int
	Height   int
}

// PictureAsset is the set of variants written for one Photo or Image.
type PictureAsset struct {
	ContentID content.ID
	AltText   string
	Display   *PictureFile
	Sized     []PictureFile // ascending width
}

// SrcSet renders the sized variants as an img srcset value.
func (a *PictureAsset) SrcSet() string {
	parts := make([]string, 0, len(a.Sized))
	for _, f := range a.Sized {
		parts = append(parts, f.URL+" "+strconv.Itoa(f.Width)+"w")
	}
	return strings.Join(parts, ", ")
}

// SmallestAtLeast returns the smallest variant whose height is at least h,
// or the tallest variant when none qualifies.  Nil when there are none.
func (a *PictureAsset) SmallestAtLeast(h int) *PictureFile {
	var best, tallest *PictureFile
	for i := range a.Sized {
		f := &a.Sized[i]
		if f.Height >= h && (best == nil || f.Height < best.Height) {
			best = f
		}
		if tallest == nil || f.Height > tallest.Height {
			tallest = f
		}
	}
	if best != nil {
		return best
	}
	return tallest
}

// Largest returns the widest sized variant, falling back to Display.
func (a *PictureAsset) Largest() *PictureFile {
	if n := len(a.Sized); n > 0 {
		return &a.Sized[n-1]
	}
	return a.Display
}

// Src is the URL to use for a plain img src.
func (a *PictureAsset) Src() string {
	if a.Display != nil {
		return a.Display.URL
	}
	if l := a.Largest(); l != nil {
		return l.URL
	}
	return ""
}

// PictureLocator finds the variants generated for a picture record.
// A nil asset with a nil error means the picture has no files.
type PictureLocator interface {
	Locate(ctx context.Context, pic content.Content) (*PictureAsset, error)
}

// Paths is the slice of the settings a FileLocator needs.
type Paths interface {
	AssetDir(c content.Content) string
	AssetURL(c content.Content, fileName string) string
}

// FileLocator scans the record's output directory for
// `<name>--For-Display.<ext>` and `<name>--<w>w--<h>h.<ext>` files.
type FileLocator struct {
	Paths Paths
}

var (
	sizedRe   = regexp.MustCompile(`(?i)--(\d+)w--(\d+)h\.(jpe?g|png|webp|gif)$`)
	displayRe = regexp.MustCompile(`(?i)--For-Display(?:--(\d+)w--(\d+)h)?\.(jpe?g|png|webp|gif)$`)
)

func (l FileLocator) Locate(_ context.Context, pic content.Content) (*PictureAsset, error) {
	dir := l.Paths.AssetDir(pic)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	asset := &PictureAsset{ContentID: pic.Base().ContentID, AltText: AltText(pic)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if m := displayRe.FindStringSubmatch(name); m != nil {
			w, _ := strconv.Atoi(m[1])
			h, _ := strconv.Atoi(m[2])
			asset.Display = &PictureFile{FileName: name, URL: l.Paths.AssetURL(pic, name), Width: w, Height: h}
			continue
		}
		if m := sizedRe.FindStringSubmatch(name); m != nil {
			w, _ := strconv.Atoi(m[1])
			h, _ := strconv.Atoi(m[2])
			asset.Sized = append(asset.Sized, PictureFile{FileName: name, URL: l.Paths.AssetURL(pic, name), Width: w, Height: h})
		}
	}
	if asset.Display == nil && len(asset.Sized) == 0 {
		return nil, nil
	}
	sort.Slice(asset.Sized, func(i, j int) bool { return asset.Sized[i].Width < asset.Sized[j].Width })
	return asset, nil
}

// AltText picks the best alt text a record offers.
func AltText(c content.Content) string {
	switch r := c.(type) {
	case *content.Photo:
		if r.AltText != "" {
			return r.AltText
		}
	case *content.Image:
		if r.AltText != "" {
			return r.AltText
		}
	}
	if s := c.Base().Summary; s != "" {
		return s
	}
	return c.Base().Title
}
