package card

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCard is returned by Lookup for ids with no definition.
var ErrUnknownCard = errors.New("unknown card")

// Registry maps card ids to their immutable definitions. It is populated
// once at load time and read-only afterwards, so it is safe to share across
// concurrent games without locking.
type Registry struct {
	byID map[string]*Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Definition)}
}

// Register adds a definition. Duplicate ids are rejected so a bad data file
// fails loudly at startup instead of shadowing cards silently.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("card definition missing id")
	}
	if _, exists := r.byID[def.ID]; exists {
		return fmt.Errorf("duplicate card id %q", def.ID)
	}
	r.byID[def.ID] = def
	return nil
}

// Lookup returns the definition for the given card id.
func (r *Registry) Lookup(cardID string) (*Definition, error) {
	def, ok := r.byID[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	return def, nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.byID)
}

// IDs returns all registered card ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
