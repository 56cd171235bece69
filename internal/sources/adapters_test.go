package sources

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlemaire/jobmarket/internal/geo"
)

func testGeoIndex(t *testing.T) *geo.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "communes.csv")
	table := "Nom_de_la_commune;Code_postal;Libell\xe9_d_acheminement\n" +
		"LILLE;59000;LILLE\n" +
		"LYON 09;69009;LYON\n" +
		"ST ETIENNE;42000;ST ETIENNE\n"
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))

	idx, err := geo.NewIndex(path)
	require.NoError(t, err)
	return idx
}

func Test_Adzuna_Extract_WhenDeepAreaHierarchy_ShouldResolveCommune(t *testing.T) {
	adapter := NewAdzuna(testGeoIndex(t))

	raw := json.RawMessage(`{
		"id": "az-1",
		"title": "Data Engineer (H/F)",
		"company": {"display_name": "Decathlon"},
		"location": {
			"display_name": "Lille, Nord",
			"area": ["France", "Hauts-de-France", "Nord", "Lille Area", "Lille"]
		},
		"contract_type": "permanent",
		"salary_min": 40000,
		"salary_max": 50000,
		"category": {"label": "IT Jobs"},
		"created": "2024-03-15T09:30:00Z",
		"redirect_url": "https://adzuna.example/az-1"
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, SourceAdzuna, offer.Source)
	assert.Equal(t, "az-1", offer.ExternalID)
	assert.Equal(t, "Data Engineer", offer.Title)
	assert.Equal(t, "DECATHLON", offer.Company)
	assert.Equal(t, "LILLE", offer.Location)
	assert.Equal(t, "59000", offer.CodePostal)
	assert.Equal(t, "FRANCE", offer.Country)
	assert.Equal(t, "IT Jobs", offer.Sector)
	require.NotNil(t, offer.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC), *offer.CreatedAt)
}

func Test_Adzuna_Extract_WhenCountryOnlyArea_ShouldKeepCountry(t *testing.T) {
	adapter := NewAdzuna(testGeoIndex(t))

	raw := json.RawMessage(`{
		"id": "az-2",
		"title": "Remote Developer",
		"location": {"display_name": "France", "area": ["France"]}
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "", offer.Location)
	assert.Equal(t, "", offer.CodePostal)
	assert.Equal(t, "FRANCE", offer.Country)
}

func Test_Adzuna_Extract_WhenHierarchyUnresolvable_ShouldFallBackToDisplayName(t *testing.T) {
	adapter := NewAdzuna(testGeoIndex(t))

	raw := json.RawMessage(`{
		"id": "az-3",
		"title": "Analyst",
		"location": {
			"display_name": "Lille, Nord",
			"area": ["France", "Hauts-de-France", "Nord", "Somewhere", "Unknown Town"]
		}
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "LILLE", offer.Location)
	assert.Equal(t, "59000", offer.CodePostal)
}

func Test_FranceTravail_Extract_WhenPostalCodePresent_ShouldUseRoutingLabel(t *testing.T) {
	adapter := NewFranceTravail(testGeoIndex(t))

	raw := json.RawMessage(`{
		"id": "ft-1",
		"intitule": "Développeur Python (H/F)",
		"entreprise": {"nom": "La Redoute"},
		"lieuTravail": {"libelle": "59 - LILLE", "codePostal": "59000", "longitude": 3.06, "latitude": 50.63},
		"typeContrat": "CDI",
		"salaire": {"libelle": "Mensuel de 2500€ à 3000€"},
		"secteurActiviteLibelle": "Commerce",
		"description": "<p>Equipe&nbsp;data</p>",
		"dateCreation": "2024-03-15T09:30:00Z",
		"origineOffre": {"urlOrigine": "https://ft.example/ft-1"}
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, SourceFranceTravail, offer.Source)
	assert.Equal(t, "Développeur Python", offer.Title)
	assert.Equal(t, "LILLE", offer.Location)
	assert.Equal(t, "59000", offer.CodePostal)
	assert.Equal(t, "FRANCE", offer.Country)
	assert.Equal(t, "Equipe data", offer.Description)
	require.NotNil(t, offer.SalaryMin)
	assert.Equal(t, float64(30000), *offer.SalaryMin)
	require.NotNil(t, offer.SalaryMax)
	assert.Equal(t, float64(36000), *offer.SalaryMax)
	require.NotNil(t, offer.Longitude)
	assert.Equal(t, 3.06, *offer.Longitude)
}

func Test_FranceTravail_Extract_WhenFreeTextLocation_ShouldCleanAndResolve(t *testing.T) {
	adapter := NewFranceTravail(testGeoIndex(t))

	raw := json.RawMessage(`{
		"id": "ft-2",
		"intitule": "Chef de projet",
		"lieuTravail": {"libelle": "59 - Lille (Centre)"}
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "LILLE", offer.Location)
	assert.Equal(t, "59000", offer.CodePostal)
}

func Test_JSearch_Extract_WhenCountryCode_ShouldMapToCountryOnly(t *testing.T) {
	dir := t.TempDir()
	codesPath := filepath.Join(dir, "country_codes.json")
	require.NoError(t, os.WriteFile(codesPath, []byte(`{"FR": "France", "BE": "Belgique"}`), 0644))

	adapter := NewJSearch(testGeoIndex(t), codesPath)
	adapter.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	raw := json.RawMessage(`{
		"job_id": "js-1",
		"job_title": "data engineer h/f",
		"employer_name": "Capgemini",
		"job_location": "FR",
		"job_employment_type": "FULLTIME",
		"job_posted_at": "il y a 2 jours",
		"job_apply_link": "https://jsearch.example/js-1"
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "js-1", offer.ExternalID)
	assert.Equal(t, "Data Engineer", offer.Title)
	assert.Equal(t, "", offer.Location)
	assert.Equal(t, "FRANCE", offer.Country)
	require.NotNil(t, offer.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC), *offer.CreatedAt)
}

func Test_JSearch_Extract_WhenCommuneName_ShouldResolveThroughGeoIndex(t *testing.T) {
	adapter := NewJSearch(testGeoIndex(t), filepath.Join(t.TempDir(), "absent.json"))

	raw := json.RawMessage(`{
		"job_id": "js-2",
		"job_title": "Backend Developer",
		"job_location": "Saint-Étienne"
	}`)

	offer, err := adapter.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "ST ETIENNE", offer.Location)
	assert.Equal(t, "42000", offer.CodePostal)
	assert.Equal(t, "", offer.Country)
}

func Test_Registry_ByName_ShouldFindConfiguredAdapters(t *testing.T) {
	idx := testGeoIndex(t)
	registry := NewRegistry(NewAdzuna(idx), NewFranceTravail(idx))

	adapter, ok := registry.ByName(SourceFranceTravail)
	assert.True(t, ok)
	assert.Equal(t, "france_travail", adapter.Dir())

	_, ok = registry.ByName(SourceJSearch)
	assert.False(t, ok)
}
