// internal/bracketcode/engine.go
//
// Bracket-code engine.
//
// Context
// -------
// Page builders, the email builder, the CLI preview, and the generation
// validator all go through Engine.  It owns two fixed pipelines: one for
// the website and one for email.  A pipeline is an ordered list of stages;
// each stage rewrites the codes of one token and hands the text on.
//
// Workflow
// --------
//  1. New wires the collaborators into every stage once.
//  2. ProcessForSite / ProcessForEmail thread the text through the stages
//     strictly in order.  No stage runs concurrently with another.
//  3. A stage that cannot resolve a code leaves it in place (or renames an
//     image-link code to its plain-link token for a later stage).
//
// Notes
// -----
//   - The engine holds no global state.  Settings arrive through URLs and
//     content through Resolver.
//   - Errors come only from collaborators (store failures, integrity
//     violations); missing content is never an error.
package bracketcode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
)

// Resolver is the slice of resolver.Resolver the engine needs.
type Resolver interface {
	One(ctx context.Context, k content.Kind, id content.ID) (content.Content, error)
	Any(ctx context.Context, id content.ID) (content.Content, error)
	AnyOf(ctx context.Context, ids []content.ID) ([]content.Content, error)
	Point(ctx context.Context, id content.ID) (*content.PointWithDetails, error)
}

// URLs is the slice of settings.Site the engine needs.
type URLs interface {
	PageURL(c content.Content) string
	DownloadURL(c content.Content) string
	DataURL(c content.Content) string
	ListURL(k content.Kind) string
	RSSURL(k content.Kind) string
	IndexURL() string
	SearchURL() string
	AllTagsURL() string
	CameraRollURL() string
	LatestContentURL() string
	MonthlyActivityURL() string
	MainRSSURL() string
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Resolver Resolver
	URLs     URLs
	Pictures render.PictureLocator

	// GalleryRowHeight is the target thumbnail height of gallery rows.
	GalleryRowHeight int
	// EmailImageWidth caps image width in email output.  Defaults to 600.
	EmailImageWidth int
	// NewID generates gallery and map element ids.  Defaults to uuid.New.
	NewID func() uuid.UUID
}

// Stage rewrites the codes of one token.
type Stage struct {
	Token string
	Apply func(ctx context.Context, text string, sink progress.Sink) (string, error)
}

// Pipeline is an ordered list of stages.
type Pipeline []Stage

// Run threads text through every stage in order.
func (p Pipeline) Run(ctx context.Context, text string, sink progress.Sink) (string, error) {
	sink = progress.Or(sink)
	for _, s := range p {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := s.Apply(ctx, text, sink)
		if err != nil {
			return "", fmt.Errorf("%s codes: %w", s.Token, err)
		}
		text = out
	}
	return text, nil
}

// Tokens lists the stage tokens in order.
func (p Pipeline) Tokens() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Token
	}
	return out
}

// Engine is the bracket-code substitution engine.
type Engine struct {
	d     Deps
	site  Pipeline
	email Pipeline
}

// New returns an Engine over d.
func New(d Deps) *Engine {
	if d.NewID == nil {
		d.NewID = uuid.New
	}
	if d.EmailImageWidth <= 0 {
		d.EmailImageWidth = 600
	}
	if d.GalleryRowHeight <= 0 {
		d.GalleryRowHeight = 250
	}
	e := &Engine{d: d}
	e.site = e.forSite()
	e.email = e.forEmail()
	return e
}

// Site returns the website pipeline.
func (e *Engine) Site() Pipeline { return e.site }

// Email returns the email pipeline.
func (e *Engine) Email() Pipeline { return e.email }

// ProcessForSite resolves every code in text to website HTML.
func (e *Engine) ProcessForSite(ctx context.Context, text string, sink progress.Sink) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	start := time.Now()
	out, err := e.site.Run(ctx, text, sink)
	if err != nil {
		return "", err
	}
	progress.Reportf(sink, "Processed codes for site in %s", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// ProcessForEmail resolves every code in text to email-safe HTML.
func (e *Engine) ProcessForEmail(ctx context.Context, text string, sink progress.Sink) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	out, err := e.email.Run(ctx, text, sink)
	if err != nil {
		return "", err
	}
	progress.Reportf(sink, "Processed codes for email")
	return out, nil
}

// ContentIDs returns every id referenced by codes in text.
func (e *Engine) ContentIDs(text string) []content.ID { return ContentIDs(text) }

// Create returns the canonical bracket code for c.
func (e *Engine) Create(c content.Content) string { return Create(c) }
