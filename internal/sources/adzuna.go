package sources

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/geo"
	"github.com/tlemaire/jobmarket/internal/normalize"
)

// Adzuna records carry a structured area hierarchy (country first, commune
// deepest) next to a free-text display name; the hierarchy is tried first.
type Adzuna struct {
	geo *geo.Index
}

func NewAdzuna(geoIndex *geo.Index) *Adzuna {
	return &Adzuna{geo: geoIndex}
}

func (a *Adzuna) Name() string { return SourceAdzuna }
func (a *Adzuna) Dir() string  { return "adzuna" }

type adzunaRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location     *adzunaLocation `json:"location"`
	Longitude    *float64        `json:"longitude"`
	Latitude     *float64        `json:"latitude"`
	ContractType string          `json:"contract_type"`
	SalaryMin    *float64        `json:"salary_min"`
	SalaryMax    *float64        `json:"salary_max"`
	Category     struct {
		Label string `json:"label"`
	} `json:"category"`
	Created     string `json:"created"`
	RedirectURL string `json:"redirect_url"`
}

type adzunaLocation struct {
	DisplayName string   `json:"display_name"`
	Area        []string `json:"area"`
}

func (a *Adzuna) Extract(raw json.RawMessage) (*models.CanonicalOffer, error) {

	var record adzunaRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(err, "decode adzuna record")
	}

	location, codePostal, country := a.extractLocation(record.Location)

	return &models.CanonicalOffer{
		Source:       SourceAdzuna,
		ExternalID:   record.ID,
		Title:        normalize.CleanTitle(record.Title),
		Company:      normalize.HarmonizeCompany(record.Company.DisplayName),
		Location:     location,
		CodePostal:   codePostal,
		Longitude:    record.Longitude,
		Latitude:     record.Latitude,
		ContractType: record.ContractType,
		SalaryMin:    record.SalaryMin,
		SalaryMax:    record.SalaryMax,
		Sector:       record.Category.Label,
		Country:      country,
		CreatedAt:    ParseTimestamp(record.Created),
		ApplyURL:     record.RedirectURL,
	}, nil
}

// extractLocation walks the area hierarchy before falling back to the
// free-text display name. A single-level hierarchy is country-only; with
// five or more levels the two deepest commune levels are tried in order,
// with exactly four only the deepest. The first candidate the geo index
// resolves wins.
func (a *Adzuna) extractLocation(loc *adzunaLocation) (location, codePostal, country string) {

	if loc == nil {
		return "", "", ""
	}

	area := loc.Area
	if len(area) == 1 {
		return "", "", normalize.Text(area[0])
	}

	if len(area) >= 5 {
		for _, level := range []int{4, 3} {
			candidate := normalize.Text(area[level])
			if code := a.geo.MatchCommune(candidate); code != "" {
				return candidate, code, normalize.Text(area[0])
			}
		}
	} else if len(area) == 4 {
		candidate := normalize.Text(area[3])
		if code := a.geo.MatchCommune(candidate); code != "" {
			return candidate, code, normalize.Text(area[0])
		}
	}

	cleaned := normalize.Text(loc.DisplayName)
	code := a.geo.MatchCommune(cleaned)

	// "LILLE, NORD" resolves on the part before the comma.
	firstPart := normalize.Text(strings.SplitN(cleaned, ",", 2)[0])
	if code == "" && strings.Contains(cleaned, ",") {
		code = a.geo.MatchCommune(firstPart)
	}

	if len(area) > 0 {
		country = normalize.Text(area[0])
	}
	return firstPart, code, country
}
