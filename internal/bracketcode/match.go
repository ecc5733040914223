// internal/bracketcode/match.go
//
// Bracket-code grammar.
//
// Context
// -------
// A bracket code is a placeholder written into body text:
//
//	{{token <id>; text <display text>; <anything>}}
//	{{token <id>; <anything>}}
//	{{specialtoken; text <display text>;}}
//	[[picturegallery {{photo <id>;}} {{image <id>;}} …]]
//
// Find extracts the codes for one token.  The with-display-text form is
// matched first and every match is cut out of a working copy before the
// plain form is searched, otherwise the plain pattern would re-match the
// same span with the display text swallowed into the trailing free text.
//
// Notes
// -----
//   - Token names are case sensitive; the `text` keyword is not.
//   - Ids that do not parse are dropped; a code left with no ids is not a
//     match and stays in the text untouched.
//   - Patterns are compiled once per token and cached.
package bracketcode

import (
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yanizio/trailhead/internal/content"
)

// Match is one occurrence of a bracket code.
type Match struct {
	RawText     string
	ContentIDs  []content.ID
	DisplayText string
}

type patterns struct {
	withText *regexp.Regexp
	plain    *regexp.Regexp
}

var (
	idPatterns      sync.Map // token → *patterns
	specialPatterns sync.Map // token → *patterns

	idRe      = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	galleryRe = regexp.MustCompile(`(?s)\[\[\s*` + GalleryToken + `\b(.*?)\]\]`)
	anyCodeRe = regexp.MustCompile(`(?s)\{\{[^{}]*\}\}|\[\[.*?\]\]`)
)

func idPatternsFor(token string) *patterns {
	if p, ok := idPatterns.Load(token); ok {
		return p.(*patterns)
	}
	t := regexp.QuoteMeta(token)
	p := &patterns{
		withText: regexp.MustCompile(`\{\{\s*` + t + `\s+([^\s;{}]+)\s*;\s*(?i:text)\s+([^;{}]*);[^{}]*\}\}`),
		plain:    regexp.MustCompile(`\{\{\s*` + t + `\s+([^\s;{}]+)\s*(?:;[^{}]*)?\}\}`),
	}
	actual, _ := idPatterns.LoadOrStore(token, p)
	return actual.(*patterns)
}

func specialPatternsFor(token string) *patterns {
	if p, ok := specialPatterns.Load(token); ok {
		return p.(*patterns)
	}
	t := regexp.QuoteMeta(token)
	p := &patterns{
		withText: regexp.MustCompile(`\{\{\s*` + t + `\s*;\s*(?i:text)\s+([^;{}]*);[^{}]*\}\}`),
		plain:    regexp.MustCompile(`\{\{\s*` + t + `\s*(?:;[^{}]*)?\}\}`),
	}
	actual, _ := specialPatterns.LoadOrStore(token, p)
	return actual.(*patterns)
}

// Find returns every code for token in text.  Codes with display text come
// first, in text order, followed by the plain codes.
func Find(text, token string) []Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	p := idPatternsFor(token)

	var out []Match
	work := text
	for _, m := range p.withText.FindAllStringSubmatch(text, -1) {
		work = strings.ReplaceAll(work, m[0], "")
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		out = append(out, Match{
			RawText:     m[0],
			ContentIDs:  []content.ID{id},
			DisplayText: strings.TrimSpace(m[2]),
		})
	}
	for _, m := range p.plain.FindAllStringSubmatch(work, -1) {
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		out = append(out, Match{RawText: m[0], ContentIDs: []content.ID{id}})
	}
	return out
}

// FindSpecial returns every id-less code for token in text.
func FindSpecial(text, token string) []Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	p := specialPatternsFor(token)

	var out []Match
	work := text
	for _, m := range p.withText.FindAllStringSubmatch(text, -1) {
		work = strings.ReplaceAll(work, m[0], "")
		out = append(out, Match{RawText: m[0], DisplayText: strings.TrimSpace(m[1])})
	}
	for _, m := range p.plain.FindAllString(work, -1) {
		out = append(out, Match{RawText: m})
	}
	return out
}

// FindGalleries returns every gallery wrapper in text.  ContentIDs holds
// every id found anywhere inside the wrapper, first occurrence order, and
// DisplayText holds the trimmed inner block.
func FindGalleries(text string) []Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []Match
	for _, m := range galleryRe.FindAllStringSubmatch(text, -1) {
		out = append(out, Match{RawText: m[0], ContentIDs: extractIDs(m[1]), DisplayText: strings.TrimSpace(m[1])})
	}
	return out
}

// ContentIDs returns every id referenced by any bracket code in text,
// first occurrence order, without duplicates.
func ContentIDs(text string) []content.ID {
	var out []content.ID
	seen := map[content.ID]struct{}{}
	for _, code := range anyCodeRe.FindAllString(text, -1) {
		for _, id := range extractIDs(code) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func extractIDs(s string) []content.ID {
	var out []content.ID
	seen := map[content.ID]struct{}{}
	for _, raw := range idRe.FindAllString(s, -1) {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
