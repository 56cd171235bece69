package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Text_WhenAccentsAndPunctuation_ShouldCanonicalize(t *testing.T) {
	assert.Equal(t, "ST ETIENNE", Text("Saint-Étienne"))
	assert.Equal(t, "L HAY LES ROSES", Text("L'Haÿ-les-Roses"))
	assert.Equal(t, "AIX EN PROVENCE", Text("  Aix-en-Provence  "))
}

func Test_Text_WhenArrondissement_ShouldRewriteToPaddedForm(t *testing.T) {
	assert.Equal(t, "LYON 09", Text("9ème arrondissement, Lyon"))
	assert.Equal(t, "PARIS 12", Text("12eme arrondissement Paris"))
}

func Test_Text_WhenTrailingNumber_ShouldZeroPad(t *testing.T) {
	assert.Equal(t, "PARIS 08", Text("Paris 8"))
	assert.Equal(t, "MARSEILLE 13", Text("Marseille 13"))
}

func Test_Text_ShouldBeIdempotent(t *testing.T) {
	inputs := []string{"Saint-Étienne", "9ème arrondissement, Lyon", "Paris 8", "LILLE"}
	for _, input := range inputs {
		once := Text(input)
		assert.Equal(t, once, Text(once))
	}
}

func Test_CleanTitle_WhenGenderMarkers_ShouldStripThem(t *testing.T) {
	assert.Equal(t, "Data Engineer", CleanTitle("Data Engineer (H/F)"))
	assert.Equal(t, "Data Engineer", CleanTitle("Data engineer h/f"))
	assert.Equal(t, "Développeur Python", CleanTitle("Développeur Python F/H"))
}

func Test_CleanTitle_WhenLeftoverPunctuation_ShouldTidy(t *testing.T) {
	assert.Equal(t, "Data Analyst", CleanTitle("Data Analyst ()"))
	assert.Equal(t, "Data Analyst", CleanTitle("- Data Analyst -"))
}

func Test_HarmonizeCompany_ShouldMatchTextNormalization(t *testing.T) {
	assert.Equal(t, Text("Société Générale"), HarmonizeCompany("Société Générale"))
}

func Test_CleanDescription_WhenHtmlAndWhitespace_ShouldFlatten(t *testing.T) {
	input := "<p>Great&nbsp;job</p>\nwith <b>benefits</b>\r\n"
	assert.Equal(t, "Great job with benefits", CleanDescription(input))
}

func Test_Lexical_ShouldLowercaseAndStripSymbols(t *testing.T) {
	assert.Equal(t, "developpeur c a paris", Lexical("Développeur C++ à Paris!"))
}
