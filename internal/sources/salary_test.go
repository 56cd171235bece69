package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSalary(t *testing.T, text string, wantMin, wantMax float64) {
	t.Helper()
	salaryMin, salaryMax := ExtractSalary(text)
	require.NotNil(t, salaryMin)
	require.NotNil(t, salaryMax)
	assert.Equal(t, wantMin, *salaryMin)
	assert.Equal(t, wantMax, *salaryMax)
}

func Test_ExtractSalary_WhenMonthlyRange_ShouldAnnualize(t *testing.T) {
	assertSalary(t, "Mensuel de 2500€ à 3000€", 30000, 36000)
}

func Test_ExtractSalary_WhenMonthlyFigureAlreadyAnnual_ShouldKeepAsIs(t *testing.T) {
	// Figures labeled monthly but >= 10000 are mislabeled annual figures.
	assertSalary(t, "Mensuel de 38000 Euros à 42000 Euros sur 12 mois", 38000, 42000)
}

func Test_ExtractSalary_WhenThousandsUnit_ShouldScale(t *testing.T) {
	assertSalary(t, "35K€ annuel", 35000, 35000)
	assertSalary(t, "Annuel de 32 mille euros", 32000, 32000)
}

func Test_ExtractSalary_WhenHourly_ShouldAnnualizeWithLegalHours(t *testing.T) {
	// 11.88 * 151.67 * 12, rounded.
	assertSalary(t, "Horaire de 11,88€", 21622, 21622)
}

func Test_ExtractSalary_WhenNegotiated_ShouldReturnNothing(t *testing.T) {
	for _, text := range []string{"à négocier selon profil", "Selon profil", "Autre"} {
		salaryMin, salaryMax := ExtractSalary(text)
		assert.Nil(t, salaryMin, text)
		assert.Nil(t, salaryMax, text)
	}
}

func Test_ExtractSalary_WhenNoFigure_ShouldReturnNothing(t *testing.T) {
	salaryMin, salaryMax := ExtractSalary("")
	assert.Nil(t, salaryMin)
	assert.Nil(t, salaryMax)

	salaryMin, salaryMax = ExtractSalary("Rémunération attractive")
	assert.Nil(t, salaryMin)
	assert.Nil(t, salaryMax)
}
