package sources

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/geo"
	"github.com/tlemaire/jobmarket/internal/normalize"
)

// FranceTravail records are home-country only; their work location may
// carry a postal code directly, otherwise the free-text label is cleaned
// and resolved through the geo index.
type FranceTravail struct {
	geo *geo.Index
}

func NewFranceTravail(geoIndex *geo.Index) *FranceTravail {
	return &FranceTravail{geo: geoIndex}
}

func (f *FranceTravail) Name() string { return SourceFranceTravail }
func (f *FranceTravail) Dir() string  { return "france_travail" }

type franceTravailRecord struct {
	ID         string `json:"id"`
	Intitule   string `json:"intitule"`
	Entreprise struct {
		Nom string `json:"nom"`
	} `json:"entreprise"`
	LieuTravail *ftLieuTravail `json:"lieuTravail"`
	TypeContrat string         `json:"typeContrat"`
	Salaire     struct {
		Libelle string `json:"libelle"`
	} `json:"salaire"`
	SecteurActiviteLibelle string `json:"secteurActiviteLibelle"`
	Description            string `json:"description"`
	DateCreation           string `json:"dateCreation"`
	OrigineOffre           struct {
		URLOrigine string `json:"urlOrigine"`
	} `json:"origineOffre"`
}

type ftLieuTravail struct {
	Libelle    string   `json:"libelle"`
	CodePostal string   `json:"codePostal"`
	Longitude  *float64 `json:"longitude"`
	Latitude   *float64 `json:"latitude"`
}

func (f *FranceTravail) Extract(raw json.RawMessage) (*models.CanonicalOffer, error) {

	var record franceTravailRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(err, "decode france travail record")
	}

	location, codePostal := f.extractLocation(record.LieuTravail)
	salaryMin, salaryMax := ExtractSalary(record.Salaire.Libelle)

	offer := &models.CanonicalOffer{
		Source:       SourceFranceTravail,
		ExternalID:   record.ID,
		Title:        normalize.CleanTitle(record.Intitule),
		Company:      normalize.HarmonizeCompany(record.Entreprise.Nom),
		Location:     location,
		CodePostal:   codePostal,
		ContractType: record.TypeContrat,
		SalaryMin:    salaryMin,
		SalaryMax:    salaryMax,
		Sector:       record.SecteurActiviteLibelle,
		Description:  normalize.CleanDescription(record.Description),
		Country:      "FRANCE",
		CreatedAt:    ParseTimestamp(record.DateCreation),
		ApplyURL:     record.OrigineOffre.URLOrigine,
	}
	if record.LieuTravail != nil {
		offer.Longitude = record.LieuTravail.Longitude
		offer.Latitude = record.LieuTravail.Latitude
	}
	return offer, nil
}

var (
	leadingDeptNumber = regexp.MustCompile(`^\d+\s*-?\s*`)
	connectorWords    = regexp.MustCompile(`\b(DE|DU|DES|LA|LE|LES|AUX)\b\s+`)
	parenthetical     = regexp.MustCompile(`\(.*?\)`)
	numberToken       = regexp.MustCompile(`\b\d+\b(\s*(?:EME|ER|E)\b)?`)
)

// extractLocation resolves the routing label straight from the postal
// code when one is present. Otherwise the free-text label is normalized,
// stripped of its department-number prefix, connector words,
// parenthetical asides and standalone numbers (ordinal arrondissement
// numbers survive), then resolved through the geo index.
func (f *FranceTravail) extractLocation(lieu *ftLieuTravail) (location, codePostal string) {

	if lieu == nil {
		return "", ""
	}

	if lieu.CodePostal != "" {
		if label, ok := f.geo.LabelForCode(lieu.CodePostal); ok {
			return label, lieu.CodePostal
		}
		return lieu.Libelle, lieu.CodePostal
	}

	cleaned := normalize.Text(lieu.Libelle)
	cleaned = strings.TrimSpace(leadingDeptNumber.ReplaceAllString(cleaned, ""))
	cleaned = connectorWords.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(parenthetical.ReplaceAllString(cleaned, ""))
	cleaned = numberToken.ReplaceAllStringFunc(cleaned, func(match string) string {
		if strings.ContainsAny(match, "E") {
			return match
		}
		return ""
	})
	cleaned = strings.TrimSpace(multiSpacePattern.ReplaceAllString(cleaned, " "))

	return cleaned, f.geo.MatchCommune(cleaned)
}

var multiSpacePattern = regexp.MustCompile(`\s+`)
