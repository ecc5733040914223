package generation

import (
	"fmt"
	"time"

	"github.com/yanizio/trailhead/internal/content"
)

// Mode is how much of the site a run rebuilds.
type Mode int

const (
	Incremental Mode = iota
	Full
)

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "incremental"
}

// Options tune one run.
type Options struct {
	// ForceFull rebuilds everything regardless of the change state.
	ForceFull bool
}

// Return is a post-generation diagnostic: a record references content
// that does not exist.  Returns are reported, never raised.
type Return struct {
	ContentID content.ID
	Title     string
	Kind      content.Kind
	MissingID content.ID
}

func (r Return) String() string {
	return fmt.Sprintf("%s %q (%s) references missing content %s", r.Kind, r.Title, r.ContentID, r.MissingID)
}

// Result summarizes a completed run.
type Result struct {
	Version  time.Time
	Mode     Mode
	Changed  []content.ID
	Returns  []Return
	Duration time.Duration
}

// Version returns the stamp of a run starting at now: UTC, second
// precision, and strictly after the last logged version.
func Version(last *content.GenerationLog, now time.Time) time.Time {
	v := now.UTC().Truncate(time.Second)
	if last != nil && !v.After(last.Version) {
		v = last.Version.UTC().Truncate(time.Second).Add(time.Second)
	}
	return v
}
