package sources

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const hoursPerMonth = 151.67

var (
	overMonthsSuffix = regexp.MustCompile(`(?i)sur\s*\d+(?:[.,]\d+)?\s*mois`)
	salaryToken      = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(k€|k|mille|€|euros?)?`)

	// Phrases implying there is no numeric value to extract.
	negotiatedTerms = []string{"négocier", "profil", "autre"}
)

// ExtractSalary parses a France Travail free-text salary label into an
// annualized (min, max) pair, or (nil, nil) when no figure can be used.
//
// Figures flagged with a thousands unit — or any "k" in the phrase — are
// scaled by 1000. Periodicity then applies: monthly figures multiply by
// 12 unless the raw minimum is already >= 10000, in which case they are
// assumed mislabeled annual figures and kept as-is; hourly figures
// multiply by 151.67 then 12; annual figures stay. With no periodicity
// keyword, thousands stay as-is and plain figures are treated as monthly.
// The >= 10000 guard is documented behavior, not a bug to fix: one source
// labels annual salaries as monthly and the guard keeps them sane.
func ExtractSalary(text string) (*float64, *float64) {

	if text == "" {
		return nil, nil
	}
	lower := strings.ToLower(text)
	for _, term := range negotiatedTerms {
		if strings.Contains(lower, term) {
			return nil, nil
		}
	}

	// "Mensuel de 38000 Euros à 42000 Euros sur 12 mois" — only the part
	// before "sur N mois" carries figures.
	text = strings.TrimSpace(overMonthsSuffix.Split(text, 2)[0])
	lower = strings.ToLower(text)

	matches := salaryToken.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	hasK := strings.Contains(lower, "k")

	var values []float64
	for _, m := range matches {
		number, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])
		if hasK || unit == "k" || unit == "k€" || unit == "mille" {
			number *= 1000
		}
		values = append(values, number)
	}
	if len(values) == 0 {
		return nil, nil
	}

	minRaw, maxRaw := values[0], values[0]
	for _, v := range values[1:] {
		if v < minRaw {
			minRaw = v
		}
		if v > maxRaw {
			maxRaw = v
		}
	}

	var salaryMin, salaryMax float64
	switch {
	case strings.Contains(lower, "mensuel") || strings.Contains(lower, "mois"):
		if minRaw >= 10000 {
			salaryMin, salaryMax = minRaw, maxRaw
		} else {
			salaryMin, salaryMax = minRaw*12, maxRaw*12
		}
	case strings.Contains(lower, "horaire") || strings.Contains(lower, "/h"):
		salaryMin, salaryMax = minRaw*hoursPerMonth*12, maxRaw*hoursPerMonth*12
	case strings.Contains(lower, "annuel") || strings.Contains(lower, "an"):
		salaryMin, salaryMax = minRaw, maxRaw
	case hasK:
		salaryMin, salaryMax = minRaw, maxRaw
	default:
		salaryMin, salaryMax = minRaw*12, maxRaw*12
	}

	salaryMin = math.Round(salaryMin)
	salaryMax = math.Round(salaryMax)
	return &salaryMin, &salaryMax
}
