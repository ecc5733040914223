package generation

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/yanizio/trailhead/internal/content"
)

// Validate reports every reference in recs whose target has no live row.
// Lookups run in batches of batch ids.
func Validate(ctx context.Context, store content.Reader, recs []content.Content, batch int) ([]Return, error) {
	if batch <= 0 {
		batch = 500
	}
	refs := make(map[content.ID][]content.ID, len(recs))
	wanted := mapset.NewThreadUnsafeSet[content.ID]()
	for _, c := range recs {
		r := References(c)
		refs[c.Base().ContentID] = r
		wanted.Append(r...)
	}

	found := mapset.NewThreadUnsafeSet[content.ID]()
	for chunk := range slices.Chunk(sortedIDs(wanted), batch) {
		live, err := store.Lookup(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("validate lookup: %w", err)
		}
		for _, c := range live {
			found.Add(c.Base().ContentID)
		}
	}

	var out []Return
	for _, c := range recs {
		for _, id := range refs[c.Base().ContentID] {
			if !found.Contains(id) {
				out = append(out, Return{
					ContentID: c.Base().ContentID,
					Title:     c.Base().Title,
					Kind:      c.Kind(),
					MissingID: id,
				})
			}
		}
	}
	return out, nil
}
