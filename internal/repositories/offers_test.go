package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/entities"
	"github.com/tlemaire/jobmarket/internal/sources"
)

func testDb(t *testing.T) *DbContext {
	t.Helper()
	dbCtx, err := NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func canonicalOffer(id string, salaryMin float64) models.CanonicalOffer {
	return models.CanonicalOffer{
		Source:     sources.SourceFranceTravail,
		ExternalID: id,
		Title:      "Data Engineer",
		Company:    "ACME",
		Location:   "LILLE",
		CodePostal: "59000",
		Country:    "FRANCE",
		SalaryMin:  &salaryMin,
	}
}

func Test_Persist_WhenReplayed_ShouldNotDuplicateRows(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	require.NoError(t, repo.Persist(ctx, canonicalOffer("ft-1", 30000)))
	require.NoError(t, repo.Persist(ctx, canonicalOffer("ft-1", 30000)))

	var offers, companies, locations, extensions int64
	dbCtx.DB.Model(&entities.JobOffer{}).Count(&offers)
	dbCtx.DB.Model(&entities.Company{}).Count(&companies)
	dbCtx.DB.Model(&entities.Location{}).Count(&locations)
	dbCtx.DB.Table("france_travail_offers").Count(&extensions)

	assert.Equal(t, int64(1), offers)
	assert.Equal(t, int64(1), companies)
	assert.Equal(t, int64(1), locations)
	assert.Equal(t, int64(1), extensions)
}

func Test_Persist_WhenOfferChanged_ShouldOverwriteFields(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	require.NoError(t, repo.Persist(ctx, canonicalOffer("ft-1", 30000)))

	updated := canonicalOffer("ft-1", 35000)
	updated.Title = "Senior Data Engineer"
	require.NoError(t, repo.Persist(ctx, updated))

	var row entities.JobOffer
	require.NoError(t, dbCtx.DB.Where("external_id = ?", "ft-1").First(&row).Error)
	assert.Equal(t, "Senior Data Engineer", row.Title)
	require.NotNil(t, row.SalaryMin)
	assert.Equal(t, float64(35000), *row.SalaryMin)
}

func Test_Persist_WhenOfferWasInactive_ShouldReviveAsActive(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	require.NoError(t, repo.Persist(ctx, canonicalOffer("ft-1", 30000)))
	_, err := repo.MarkMissingInactive(ctx, []string{"other"})
	require.NoError(t, err)

	var row entities.JobOffer
	require.NoError(t, dbCtx.DB.Where("external_id = ?", "ft-1").First(&row).Error)
	require.Equal(t, string(models.StatusInactive), row.Status)

	require.NoError(t, repo.Persist(ctx, canonicalOffer("ft-1", 30000)))
	require.NoError(t, dbCtx.DB.Where("external_id = ?", "ft-1").First(&row).Error)
	assert.Equal(t, string(models.StatusActive), row.Status)
}

func Test_Persist_WhenSameIdDifferentSource_ShouldKeepBothRows(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	ft := canonicalOffer("shared", 30000)
	az := canonicalOffer("shared", 30000)
	az.Source = sources.SourceAdzuna

	require.NoError(t, repo.Persist(ctx, ft))
	require.NoError(t, repo.Persist(ctx, az))

	var offers int64
	dbCtx.DB.Model(&entities.JobOffer{}).Count(&offers)
	assert.Equal(t, int64(2), offers)
}

func Test_Persist_WhenCompanyNameMissing_ShouldCreateDistinctRows(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	a := canonicalOffer("ft-1", 30000)
	a.Company = ""
	b := canonicalOffer("ft-2", 30000)
	b.Company = ""

	require.NoError(t, repo.Persist(ctx, a))
	require.NoError(t, repo.Persist(ctx, b))

	var companies int64
	dbCtx.DB.Model(&entities.Company{}).Count(&companies)
	assert.Equal(t, int64(2), companies)
}

func Test_Persist_WhenLocationFieldsPartiallyAbsent_ShouldStillCoalesce(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	a := canonicalOffer("ft-1", 30000)
	a.Location, a.CodePostal = "", ""
	b := canonicalOffer("ft-2", 30000)
	b.Location, b.CodePostal = "", ""

	require.NoError(t, repo.Persist(ctx, a))
	require.NoError(t, repo.Persist(ctx, b))

	var locations int64
	dbCtx.DB.Model(&entities.Location{}).Count(&locations)
	assert.Equal(t, int64(1), locations)
}

func Test_MarkMissingInactive_WhenBatchesOverlap_ShouldFollowLifecycle(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Persist(ctx, canonicalOffer(id, 30000)))
	}
	affected, err := repo.MarkMissingInactive(ctx, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	for _, id := range []string{"2", "3", "4"} {
		require.NoError(t, repo.Persist(ctx, canonicalOffer(id, 30000)))
	}
	affected, err = repo.MarkMissingInactive(ctx, []string{"2", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var statuses []string
	require.NoError(t, dbCtx.DB.Model(&entities.JobOffer{}).
		Order("external_id").Pluck("status", &statuses).Error)
	assert.Equal(t, []string{"inactive", "active", "active", "active"}, statuses)

	ghosts, err := repo.ActiveGhosts(ctx, []string{"2", "3", "4"}, 10)
	require.NoError(t, err)
	assert.Empty(t, ghosts)
}

func Test_Persist_WhenSourceUnknown_ShouldSkipExtensionTable(t *testing.T) {
	dbCtx := testDb(t)
	repo := NewOffersRepository(dbCtx.DB)

	unknown := canonicalOffer("x-1", 30000)
	unknown.Source = "Craigslist"

	require.NoError(t, repo.Persist(context.Background(), unknown))

	var offers int64
	dbCtx.DB.Model(&entities.JobOffer{}).Count(&offers)
	assert.Equal(t, int64(1), offers)
}
