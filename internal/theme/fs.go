// internal/theme/fs.go
//
// Template discovery helpers.
//
// CollectHTML walks a directory on disk and returns every .html file in
// slash form so the list can go straight into template.ParseFiles.  The
// embedded defaults are parsed through ParseFS instead.
package theme

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// CollectHTML walks rootDir recursively and returns a sorted list of *.html
// paths.  A missing rootDir yields an empty list.
//
//	files, _ := CollectHTML("<root>/themes/ocean/templates")
//	tpl.ParseFiles(files...)
func CollectHTML(rootDir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
