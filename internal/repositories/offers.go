package repositories

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/entities"
	"github.com/tlemaire/jobmarket/internal/sources"
)

var extensionTables = map[string]string{
	sources.SourceAdzuna:        "adzuna_offers",
	sources.SourceFranceTravail: "france_travail_offers",
	sources.SourceJSearch:       "jsearch_offers",
}

type Offers struct {
	db *gorm.DB
}

func NewOffersRepository(db *gorm.DB) *Offers {
	return &Offers{db: db}
}

// Persist upserts one canonical offer and its reference rows inside a
// single transaction. Replaying the same offer changes nothing except
// its status, which always comes back to active.
func (r *Offers) Persist(ctx context.Context, offer models.CanonicalOffer) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		sourceID, err := upsertSource(tx, offer.Source)
		if err != nil {
			return errors.Wrap(err, "upsert source")
		}

		companyID, err := upsertCompany(tx, offer.Company)
		if err != nil {
			return errors.Wrap(err, "upsert company")
		}

		locationID, err := findOrCreateLocation(tx, offer)
		if err != nil {
			return errors.Wrap(err, "upsert location")
		}

		jobID, err := upsertOffer(tx, offer, sourceID, companyID, locationID)
		if err != nil {
			return errors.Wrap(err, "upsert offer")
		}

		if err := upsertExtension(tx, offer, jobID); err != nil {
			return errors.Wrap(err, "upsert source extension")
		}

		return nil
	})
}

func upsertSource(tx *gorm.DB, name string) (uint, error) {

	source := entities.Source{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&source).Error
	if err != nil {
		return 0, err
	}

	if source.SourceID == 0 {
		if err := tx.Where("name = ?", name).First(&source).Error; err != nil {
			return 0, err
		}
	}
	return source.SourceID, nil
}

// upsertCompany creates a fresh anonymous row when the name is empty;
// anonymous employers are never coalesced with each other.
func upsertCompany(tx *gorm.DB, name string) (uint, error) {

	var company entities.Company
	if name == "" {
		if err := tx.Create(&company).Error; err != nil {
			return 0, err
		}
		return company.CompanyID, nil
	}

	company.Name = &name
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&company).Error
	if err != nil {
		return 0, err
	}

	if company.CompanyID == 0 {
		if err := tx.Where("name = ?", name).First(&company).Error; err != nil {
			return 0, err
		}
	}
	return company.CompanyID, nil
}

// findOrCreateLocation matches on the nullable identity triple with IS
// comparisons, so that two rows with the same absent fields resolve to
// one location.
func findOrCreateLocation(tx *gorm.DB, offer models.CanonicalOffer) (uint, error) {

	location := entities.Location{
		Location:   nilIfEmpty(offer.Location),
		CodePostal: nilIfEmpty(offer.CodePostal),
		Country:    nilIfEmpty(offer.Country),
		Longitude:  offer.Longitude,
		Latitude:   offer.Latitude,
	}

	var existing entities.Location
	err := tx.Where("location IS ? AND code_postal IS ? AND country IS ?",
		location.Location, location.CodePostal, location.Country).
		First(&existing).Error
	if err == nil {
		return existing.LocationID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if err := tx.Create(&location).Error; err != nil {
		return 0, err
	}
	return location.LocationID, nil
}

func upsertOffer(tx *gorm.DB, offer models.CanonicalOffer, sourceID, companyID, locationID uint) (uint, error) {

	createdAt := offer.CreatedAtOrZero()

	row := entities.JobOffer{
		ExternalID: offer.ExternalID,
		SourceID:   sourceID,
		CompanyID:  &companyID,
		LocationID: &locationID,
		Title:      offer.Title,
		SalaryMin:  offer.SalaryMin,
		SalaryMax:  offer.SalaryMax,
		CreatedAt:  createdAt,
		Status:     string(models.StatusActive),
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}, {Name: "source_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"company_id":  companyID,
			"location_id": locationID,
			"title":       offer.Title,
			"salary_min":  offer.SalaryMin,
			"salary_max":  offer.SalaryMax,
			"created_at":  createdAt,
			"status":      string(models.StatusActive),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	if row.JobID == 0 {
		if err := tx.Where("external_id = ? AND source_id = ?", offer.ExternalID, sourceID).
			First(&row).Error; err != nil {
			return 0, err
		}
	}
	return row.JobID, nil
}

func upsertExtension(tx *gorm.DB, offer models.CanonicalOffer, jobID uint) error {

	table, ok := extensionTables[offer.Source]
	if !ok {
		log.Warnf("no extension table for source %s, skipping", offer.Source)
		return nil
	}

	return tx.Table(table).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"title":         offer.Title,
			"contract_type": offer.ContractType,
			"sector":        offer.Sector,
			"description":   offer.Description,
			"apply_url":     offer.ApplyURL,
		}),
	}).Create(map[string]interface{}{
		"job_id":        jobID,
		"title":         offer.Title,
		"contract_type": offer.ContractType,
		"sector":        offer.Sector,
		"description":   offer.Description,
		"apply_url":     offer.ApplyURL,
	}).Error
}

// MarkMissingInactive flips to inactive every active offer whose
// external id is absent from the current batch, and reports how many
// active rows remain.
func (r *Offers) MarkMissingInactive(ctx context.Context, externalIDs []string) (int64, error) {

	var before int64
	if err := r.db.WithContext(ctx).Model(&entities.JobOffer{}).
		Where("status = ?", string(models.StatusActive)).
		Count(&before).Error; err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&entities.JobOffer{}).
		Where("status = ? AND external_id NOT IN ?", string(models.StatusActive), externalIDs).
		Update("status", string(models.StatusInactive))
	if result.Error != nil {
		return 0, result.Error
	}

	log.Infof("reconciliation: %d active offers before, %d marked inactive, %d remain active",
		before, result.RowsAffected, before-result.RowsAffected)
	return result.RowsAffected, nil
}

// ActiveGhosts returns up to limit active external ids that the batch
// does not contain; after MarkMissingInactive it must come back empty.
func (r *Offers) ActiveGhosts(ctx context.Context, externalIDs []string, limit int) ([]string, error) {

	var ghosts []string
	err := r.db.WithContext(ctx).Model(&entities.JobOffer{}).
		Where("status = ? AND external_id NOT IN ?", string(models.StatusActive), externalIDs).
		Limit(limit).
		Pluck("external_id", &ghosts).Error
	if err != nil {
		return nil, err
	}
	return ghosts, nil
}

func nilIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
