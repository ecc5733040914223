// internal/bracketcode/processor.go
//
// Generic token processors.
//
// Context
// -------
// Every token is handled by one of a few stage shapes that share the same
// loop: find the codes, resolve each one, render, and splice the result
// back in by literal replacement.  What differs per token is the kind it
// resolves and the renderFunc it calls.
//
//	codeStage       resolve → render → replace; missing content is left alone
//	imageLinkStage  as codeStage, but a code that cannot show a picture is
//	                renamed to its plain-link token for a later stage
//	stripStage      remove the codes outright (email output)
//	specialStage    id-less codes that link to generated site pages
//	galleryStage    [[picturegallery …]] wrappers
//
// Notes
// -----
//   - Replacement is literal.  Two identical codes render identically, so
//     replacing every occurrence at once is safe.
//   - Outcomes are counted in metrics.CodesTotal.
package bracketcode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/metrics"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
)

// renderFunc turns a resolved record into HTML.  An empty result from an
// image-link renderer means "nothing to show".
type renderFunc func(ctx context.Context, c content.Content, m Match) (string, error)

const (
	outcomeResolved   = "resolved"
	outcomeUnresolved = "unresolved"
	outcomeFallback   = "fallback"
	outcomeStripped   = "stripped"
)

func count(token, outcome string) {
	metrics.CodesTotal.WithLabelValues(token, outcome).Inc()
}

func (e *Engine) codeStage(token string, kind content.Kind, r renderFunc) Stage {
	return Stage{Token: token, Apply: func(ctx context.Context, text string, sink progress.Sink) (string, error) {
		matches := Find(text, token)
		if len(matches) == 0 {
			return text, nil
		}
		progress.Reportf(sink, "Processing %d %s codes", len(matches), token)

		for _, m := range matches {
			c, err := e.d.Resolver.One(ctx, kind, m.ContentIDs[0])
			if err != nil {
				return "", err
			}
			if c == nil {
				count(token, outcomeUnresolved)
				zap.L().Debug("unresolved bracket code",
					zap.String("token", token), zap.String("content_id", m.ContentIDs[0].String()))
				continue
			}
			html, err := r(ctx, c, m)
			if err != nil {
				return "", err
			}
			text = strings.ReplaceAll(text, m.RawText, html)
			count(token, outcomeResolved)
		}
		return text, nil
	}}
}

// imageLinkStage renders codes whose output centres on a picture.  When
// the record is missing, has no main picture, has no picture files, or
// renders nothing, the code is rewritten to the fallback token and left
// for the fallback's own stage, which must come later in the pipeline.
func (e *Engine) imageLinkStage(token, fallback string, kind content.Kind, r renderFunc) Stage {
	return Stage{Token: token, Apply: func(ctx context.Context, text string, sink progress.Sink) (string, error) {
		matches := Find(text, token)
		if len(matches) == 0 {
			return text, nil
		}
		progress.Reportf(sink, "Processing %d %s codes", len(matches), token)

		for _, m := range matches {
			c, err := e.d.Resolver.One(ctx, kind, m.ContentIDs[0])
			if err != nil {
				return "", err
			}
			html := ""
			if c != nil {
				if html, err = r(ctx, c, m); err != nil {
					return "", err
				}
			}
			if html == "" {
				text = strings.ReplaceAll(text, m.RawText, renameToken(m.RawText, token, fallback))
				count(token, outcomeFallback)
				progress.Reportf(sink, "No picture for %s code, using %s", token, fallback)
				continue
			}
			text = strings.ReplaceAll(text, m.RawText, html)
			count(token, outcomeResolved)
		}
		return text, nil
	}}
}

// renameToken swaps the token at the head of a raw code.
func renameToken(raw, from, to string) string {
	return strings.Replace(raw, from, to, 1)
}

func (e *Engine) stripStage(token string) Stage {
	return Stage{Token: token, Apply: func(_ context.Context, text string, sink progress.Sink) (string, error) {
		matches := Find(text, token)
		if len(matches) == 0 {
			return text, nil
		}
		progress.Reportf(sink, "Removing %d %s codes", len(matches), token)
		for _, m := range matches {
			text = strings.ReplaceAll(text, m.RawText, "")
			count(token, outcomeStripped)
		}
		return text, nil
	}}
}

func (e *Engine) specialStage(p specialPage) Stage {
	return Stage{Token: p.token, Apply: func(_ context.Context, text string, _ progress.Sink) (string, error) {
		for _, m := range FindSpecial(text, p.token) {
			text = strings.ReplaceAll(text, m.RawText, render.Anchor(p.url(e.d.URLs), orDefault(m.DisplayText, p.defaultText)))
			count(p.token, outcomeResolved)
		}
		return text, nil
	}}
}

// galleryStage builds justified galleries on the site.
func (e *Engine) galleryStage() Stage {
	return Stage{Token: GalleryToken, Apply: func(ctx context.Context, text string, sink progress.Sink) (string, error) {
		matches := FindGalleries(text)
		if len(matches) == 0 {
			return text, nil
		}
		progress.Reportf(sink, "Processing %d galleries", len(matches))
		for _, m := range matches {
			html, err := e.gallery(ctx, m.ContentIDs)
			if err != nil {
				return "", err
			}
			text = strings.ReplaceAll(text, m.RawText, html)
			count(GalleryToken, outcomeResolved)
		}
		return text, nil
	}}
}

// unwrapGalleryStage replaces each gallery with its inner codes so later
// stages render them one by one.
func (e *Engine) unwrapGalleryStage() Stage {
	return Stage{Token: GalleryToken, Apply: func(_ context.Context, text string, _ progress.Sink) (string, error) {
		for _, m := range FindGalleries(text) {
			text = strings.ReplaceAll(text, m.RawText, m.DisplayText)
			count(GalleryToken, outcomeResolved)
		}
		return text, nil
	}}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
