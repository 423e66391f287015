package orderstore

import (
	"maps"
	"slices"

	"github.com/click2print/orderdesk/internal/model"
)

// Patch is a partial update keyed by wire field name. A nil value clears the
// field; containers are replaced, never merged.
type Patch map[string]any

// normalize returns a copy of p with aliases propagated and numeric fields
// coerced. It never fails: values that do not parse are kept as given.
func normalize(p Patch) Patch {
	u := make(Patch, len(p)+len(model.Aliases))
	for k, v := range p {
		u[k] = v
	}

	for legacy, canonical := range model.Aliases {
		if present(u, canonical) && !present(u, legacy) {
			u[legacy] = u[canonical]
		}
		if present(u, legacy) && !present(u, canonical) {
			u[canonical] = u[legacy]
		}
	}

	for _, k := range model.NumericFields {
		if present(u, k) {
			u[k] = model.ParseAmount(u[k])
		}
	}
	return u
}

// present reports whether key is set to a non-nil value.
func present(p Patch, key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// applyOrder lists the keys to write. A legacy name is skipped when its
// canonical field is in the patch too, so the canonical value wins.
func applyOrder(p Patch) []string {
	keys := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		if canonical, ok := model.Aliases[k]; ok {
			if _, both := p[canonical]; both {
				continue
			}
		}
		keys = append(keys, k)
	}
	return keys
}
