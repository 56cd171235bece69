package pipeline

import (
	"strings"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/normalize"
	"github.com/tlemaire/jobmarket/internal/sources"
)

// DeduplicateWithinSource collapses exact duplicates inside one source's
// batch. Records carrying an external id key on (external_id, source) and
// the last seen wins; records without one key on (title, company) and the
// first seen wins. Output order follows first appearance of each key.
func DeduplicateWithinSource(offers []models.CanonicalOffer) []models.CanonicalOffer {

	type identity struct {
		id, source, title, company string
	}

	index := make(map[identity]int, len(offers))
	out := make([]models.CanonicalOffer, 0, len(offers))

	for _, offer := range offers {
		var key identity
		if offer.ExternalID != "" {
			key = identity{id: offer.ExternalID, source: offer.Source}
		} else {
			key = identity{title: offer.Title, company: offer.Company}
		}

		if pos, ok := index[key]; ok {
			if offer.ExternalID != "" {
				out[pos] = offer
			}
			continue
		}
		index[key] = len(out)
		out = append(out, offer)
	}

	return out
}

// MergeAcrossSources collapses offers sharing a normalized
// (title, company) key after the per-source batches are concatenated.
// The tie-break order is load-bearing: an incoming France Travail offer
// replaces a non-France-Travail one outright; only then does an offer
// carrying a salary replace one without; otherwise the existing offer
// stays. Output order follows first appearance of each key.
func MergeAcrossSources(offers []models.CanonicalOffer) []models.CanonicalOffer {

	type identity struct {
		title, company string
	}

	index := make(map[identity]int, len(offers))
	out := make([]models.CanonicalOffer, 0, len(offers))

	for _, offer := range offers {
		key := identity{
			title:   strings.ToLower(strings.TrimSpace(offer.Title)),
			company: normalize.HarmonizeCompany(offer.Company),
		}

		pos, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, offer)
			continue
		}

		existing := out[pos]
		if offer.Source == sources.SourceFranceTravail && existing.Source != sources.SourceFranceTravail {
			out[pos] = offer
			continue
		}
		if !existing.HasSalary() && offer.HasSalary() {
			out[pos] = offer
		}
	}

	return out
}
