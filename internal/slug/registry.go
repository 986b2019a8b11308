package slug

import "strconv"

// Registry issues unique identifiers for one run and records every rename
// as new -> old. It is created per run and passed to whoever needs it.
type Registry struct {
	used    map[string]struct{}
	renamed map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		used:    make(map[string]struct{}),
		renamed: make(map[string]string),
	}
}

// Observe marks an existing identifier as taken, verbatim.
func (r *Registry) Observe(id string) {
	r.used[id] = struct{}{}
}

// Taken reports whether id was issued or observed.
func (r *Registry) Taken(id string) bool {
	_, ok := r.used[id]
	return ok
}

// Unique slugifies s and appends _0, _1, ... until the result is unused.
// The winner is registered before it is returned.
func (r *Registry) Unique(s string) string {
	base := Slugify(s)
	candidate := base
	for i := 0; r.Taken(candidate); i++ {
		candidate = base + "_" + strconv.Itoa(i)
	}
	r.Observe(candidate)
	return candidate
}

// Rename records that oldID was replaced by newID. When oldID was itself
// issued earlier in the run, the entry keeps pointing at the original.
func (r *Registry) Rename(newID, oldID string) {
	if newID == oldID {
		return
	}
	if original, ok := r.renamed[oldID]; ok {
		delete(r.renamed, oldID)
		oldID = original
	}
	r.renamed[newID] = oldID
}

// Mapping returns a copy of the new -> old identifier map.
func (r *Registry) Mapping() map[string]string {
	out := make(map[string]string, len(r.renamed))
	for k, v := range r.renamed {
		out[k] = v
	}
	return out
}

// Len returns the number of taken identifiers.
func (r *Registry) Len() int {
	return len(r.used)
}
