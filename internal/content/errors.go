package content

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by single-record lookups that find no live row.
var ErrNotFound = errors.New("content: not found")

// IntegrityError reports stored data that violates a model invariant.  It
// aborts a generation run.
type IntegrityError struct {
	ContentID ID
	Title     string
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("content integrity: %s (%s): %s", e.Title, e.ContentID, e.Reason)
}
