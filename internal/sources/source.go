package sources

import (
	"encoding/json"

	"github.com/tlemaire/jobmarket/internal/domain/models"
)

// Canonical source names, as persisted and as used by the merge priority
// rule. France Travail is the designated higher-trust source: its records
// carry the richest salary and description data.
const (
	SourceAdzuna        = "Adzuna"
	SourceFranceTravail = "France Travail"
	SourceJSearch       = "JSearch"
)

// Adapter extracts one source-native raw record into a canonical offer.
// Implementations are pure: no I/O, safe for concurrent use.
type Adapter interface {
	// Name is the canonical source name persisted with every offer.
	Name() string
	// Dir is the source's subdirectory under the raw-data root.
	Dir() string
	Extract(raw json.RawMessage) (*models.CanonicalOffer, error)
}

// Registry holds the configured adapters in a fixed processing order.
type Registry struct {
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

func (r *Registry) All() []Adapter {
	return r.adapters
}

func (r *Registry) ByName(name string) (Adapter, bool) {
	for _, adapter := range r.adapters {
		if adapter.Name() == name {
			return adapter, true
		}
	}
	return nil, false
}
