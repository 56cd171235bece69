package sources

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/geo"
	"github.com/tlemaire/jobmarket/internal/normalize"
)

// JSearch locations come as a single free-text string that may be a bare
// country code; a static code→display-name table disambiguates.
type JSearch struct {
	geo       *geo.Index
	countries map[string]string
	now       func() time.Time
}

// NewJSearch loads the country-code table from countryCodesPath. A
// missing or corrupt table is logged and tolerated: every location is
// then treated as a commune name.
func NewJSearch(geoIndex *geo.Index, countryCodesPath string) *JSearch {

	countries := map[string]string{}

	data, err := os.ReadFile(countryCodesPath)
	if err != nil {
		log.Warnf("country code table unavailable: %v", err)
	} else if err := json.Unmarshal(data, &countries); err != nil {
		log.Warnf("country code table unreadable: %v", err)
	}

	normalized := make(map[string]string, len(countries))
	for code, name := range countries {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = name
	}

	return &JSearch{geo: geoIndex, countries: normalized, now: time.Now}
}

func (j *JSearch) Name() string { return SourceJSearch }
func (j *JSearch) Dir() string  { return "jsearch" }

type jsearchRecord struct {
	JobID             string   `json:"job_id"`
	JobTitle          string   `json:"job_title"`
	EmployerName      string   `json:"employer_name"`
	JobLocation       string   `json:"job_location"`
	JobLongitude      *float64 `json:"job_longitude"`
	JobLatitude       *float64 `json:"job_latitude"`
	JobEmploymentType string   `json:"job_employment_type"`
	JobMinSalary      *float64 `json:"job_min_salary"`
	JobMaxSalary      *float64 `json:"job_max_salary"`
	JobDescription    string   `json:"job_description"`
	JobPostedAt       string   `json:"job_posted_at"`
	JobApplyLink      string   `json:"job_apply_link"`
}

func (j *JSearch) Extract(raw json.RawMessage) (*models.CanonicalOffer, error) {

	var record jsearchRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(err, "decode jsearch record")
	}

	location, codePostal, country := j.extractLocation(record.JobLocation)

	return &models.CanonicalOffer{
		Source:       SourceJSearch,
		ExternalID:   record.JobID,
		Title:        normalize.CleanTitle(record.JobTitle),
		Company:      normalize.HarmonizeCompany(record.EmployerName),
		Location:     location,
		CodePostal:   codePostal,
		Longitude:    record.JobLongitude,
		Latitude:     record.JobLatitude,
		ContractType: record.JobEmploymentType,
		SalaryMin:    record.JobMinSalary,
		SalaryMax:    record.JobMaxSalary,
		Description:  normalize.CleanDescription(record.JobDescription),
		Country:      country,
		CreatedAt:    ParseRelativeTime(record.JobPostedAt, j.now()),
		ApplyURL:     record.JobApplyLink,
	}, nil
}

// extractLocation treats a known country code as country-only; anything
// else is a commune name to normalize and resolve.
func (j *JSearch) extractLocation(name string) (commune, codePostal, country string) {

	if name == "" {
		return "", "", ""
	}

	code := strings.ToUpper(strings.TrimSpace(name))
	if display, ok := j.countries[code]; ok {
		return "", "", normalize.Text(display)
	}

	commune = normalize.Text(name)
	return commune, j.geo.MatchCommune(commune), ""
}
