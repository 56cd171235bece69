package entities

import "time"

// Source is one job-offer provider row; referenced by every offer.
type Source struct {
	SourceID uint   `gorm:"primaryKey"`
	Name     string `gorm:"uniqueIndex"`
}

// Company names are nullable: a nil name means the provider omitted the
// employer and such rows are never coalesced with each other.
type Company struct {
	CompanyID uint    `gorm:"primaryKey"`
	Name      *string `gorm:"uniqueIndex"`
}

type Location struct {
	LocationID uint `gorm:"primaryKey"`
	Location   *string
	CodePostal *string
	Country    *string
	Longitude  *float64
	Latitude   *float64
}

// JobOffer is the canonical row shared by all sources; one offer is
// identified by (external_id, source_id).
type JobOffer struct {
	JobID      uint   `gorm:"primaryKey"`
	ExternalID string `gorm:"uniqueIndex:idx_offer_identity"`
	SourceID   uint   `gorm:"uniqueIndex:idx_offer_identity"`
	CompanyID  *uint
	LocationID *uint
	Title      string
	SalaryMin  *float64
	SalaryMax  *float64
	// Publication date from the source, not a bookkeeping column; zero
	// stays zero.
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	Status    string    `gorm:"default:active"`
}

// Per-source extension rows keep the fields the canonical row does not
// carry, keyed by the canonical JobID.

type AdzunaOffer struct {
	JobID        uint `gorm:"primaryKey"`
	Title        string
	ContractType string
	Sector       string
	Description  string
	ApplyURL     string
}

func (AdzunaOffer) TableName() string { return "adzuna_offers" }

type FranceTravailOffer struct {
	JobID        uint `gorm:"primaryKey"`
	Title        string
	ContractType string
	Sector       string
	Description  string
	ApplyURL     string
}

func (FranceTravailOffer) TableName() string { return "france_travail_offers" }

type JSearchOffer struct {
	JobID        uint `gorm:"primaryKey"`
	Title        string
	ContractType string
	Sector       string
	Description  string
	ApplyURL     string
}

func (JSearchOffer) TableName() string { return "jsearch_offers" }
