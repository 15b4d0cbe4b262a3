package registry

import (
	"fmt"

	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/rs/zerolog/log"
)

// DuplicateIDError reports two combinators sharing a constructor id. The
// runtime dispatches frames on this id alone, so any collision invalidates
// the whole registry.
type DuplicateIDError struct {
	ID     uint32
	First  string
	Second string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("registry: id %#08x used by both %s and %s", e.ID, e.First, e.Second)
}

// Registry maps constructor ids to combinators.
type Registry struct {
	items   map[uint32]*resolve.Combinator
	entries []*resolve.Combinator
}

// Build indexes every combinator of s by id, keeping declaration order.
func Build(s *resolve.Schema) (*Registry, error) {
	r := &Registry{
		items:   make(map[uint32]*resolve.Combinator, len(s.Combinators)),
		entries: make([]*resolve.Combinator, 0, len(s.Combinators)),
	}
	for _, c := range s.Combinators {
		if prev, ok := r.items[c.ID]; ok {
			log.Error().
				Str("first", prev.FullName()).
				Str("second", c.FullName()).
				Uint32("id", c.ID).
				Msg("registry.Build duplicate id")
			return nil, &DuplicateIDError{ID: c.ID, First: prev.FullName(), Second: c.FullName()}
		}
		r.items[c.ID] = c
		r.entries = append(r.entries, c)
	}
	log.Debug().Int("entries", len(r.entries)).Msg("registry.Build")
	return r, nil
}

// Lookup returns the combinator registered under id.
func (r *Registry) Lookup(id uint32) (*resolve.Combinator, bool) {
	c, ok := r.items[id]
	return c, ok
}

// Entries returns combinators in declaration order.
func (r *Registry) Entries() []*resolve.Combinator {
	out := make([]*resolve.Combinator, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered ids.
func (r *Registry) Len() int { return len(r.entries) }
