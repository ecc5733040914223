// internal/email/email.go
//
// Email rendering.
//
// Context
//   The owner mails a post (or any record) to subscribers from outside
//   trailhead.  This package only produces the message: the body goes
//   through the email pipeline, so map and script codes degrade to links,
//   and is wrapped in a table-based template mail clients can lay out.
//
//------------------------------------------------------------------------------

package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/view"
)

// DefaultWidth is the content width of the email table.
const DefaultWidth = 600

// Email is one rendered message.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// Builder renders records as email.
type Builder struct {
	Site      *settings.Site
	Codes     *bracketcode.Engine
	Formatter render.Formatter
	View      *view.Engine
	Progress  progress.Sink
	Width     int
}

// Build renders c.  Drafts are rendered too; whether to send is the
// caller's decision.
func (b *Builder) Build(ctx context.Context, c content.Content) (*Email, error) {
	base := c.Base()
	body, err := b.Codes.ProcessForEmail(ctx, base.BodyContent, progress.Or(b.Progress))
	if err != nil {
		return nil, fmt.Errorf("email %s: %w", base.ContentID, err)
	}
	if body != "" {
		f := b.Formatter
		if f == nil {
			f = render.NewFormatter()
		}
		if body, err = f.Render(base.BodyContentFormat, body); err != nil {
			return nil, &content.IntegrityError{ContentID: base.ContentID, Title: base.Title, Reason: err.Error()}
		}
	}

	width := b.Width
	if width <= 0 {
		width = DefaultWidth
	}
	url := b.Site.PageURL(c)
	html, err := b.View.Render("email", struct {
		Title    string
		URL      string
		Summary  string
		Body     template.HTML
		SiteURL  string
		SiteName string
		Width    int
	}{base.Title, url, base.Summary, template.HTML(body), b.Site.IndexURL(), b.Site.Name(), width})
	if err != nil {
		return nil, err
	}

	return &Email{
		Subject: base.Title,
		HTML:    string(html),
		Text:    plainText(base.Title, base.Summary, url),
	}, nil
}

// plainText is the text/plain alternative: title, summary, and a link to
// the full page.
func plainText(title, summary, url string) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	if s := strings.TrimSpace(summary); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n\n")
	}
	if url != "" {
		sb.WriteString("Read it on the site: ")
		sb.WriteString(url)
		sb.WriteString("\n")
	}
	return sb.String()
}
