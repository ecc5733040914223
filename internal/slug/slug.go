// internal/slug/slug.go
//
// Slug and tag helpers.
//
// • Make(title) ─ converts arbitrary text into a URL-safe slug restricted to
//   ASCII a-z, 0-9, and "-".
// • Tags(raw) ─ splits a comma separated tag field into the canonical,
//   sorted, de-duplicated list used for tag pages and tag logs.
// • TagSlug(tag) ─ the file name stem of a tag page.
//
// Rules (Make)
// ------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one "-".  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading / trailing "-".
// 4. If the result is empty, return "item".
// 5. Cut at 100 bytes, then trim a trailing "-" the cut may expose.
//
// Notes
// -----
// • No Unicode transliteration; the site is English-only.
// • Tags keep their spaces ("mount baldy"); only TagSlug dashes them.
package slug

import (
	"slices"
	"strings"
)

const maxLen = 100

// Make converts title → lower-kebab ASCII.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "item"
	}
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}

// Tags returns the canonical tag list for a raw comma separated field:
// trimmed, inner whitespace collapsed, lower-cased, de-duplicated, and
// sorted.  Empty entries are dropped.
func Tags(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		t := strings.ToLower(strings.Join(strings.Fields(part), " "))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// JoinTags is the inverse of Tags for storage.
func JoinTags(tags []string) string {
	return strings.Join(Tags(strings.Join(tags, ",")), ",")
}

// TagSlug returns the page stem for tag.
func TagSlug(tag string) string { return Make(tag) }

// IsExcluded reports whether tag is on the excluded list.  Comparison is on
// the canonical form so "Mount  Baldy" matches "mount baldy".
func IsExcluded(tag string, excluded []string) bool {
	canon := Tags(tag)
	if len(canon) == 0 {
		return false
	}
	for _, e := range excluded {
		if ex := Tags(e); len(ex) == 1 && ex[0] == canon[0] {
			return true
		}
	}
	return false
}

// VisibleTags returns Tags(raw) without the excluded ones.
func VisibleTags(raw string, excluded []string) []string {
	return slices.DeleteFunc(Tags(raw), func(t string) bool { return IsExcluded(t, excluded) })
}
