package models

import "time"

type OfferStatus string

const (
	StatusActive   OfferStatus = "active"
	StatusInactive OfferStatus = "inactive"
)

// CanonicalOffer is the unified, source-agnostic form of one job listing,
// produced by a field extractor and consumed by both the persistence and
// the matching stages. Empty strings stand for absent text fields; salary,
// coordinates and creation time stay nil-able so absence survives the
// round trip through the batch files.
type CanonicalOffer struct {
	Source       string     `json:"source" validate:"required"`
	ExternalID   string     `json:"external_id"`
	Title        string     `json:"title" validate:"required"`
	Company      string     `json:"company"`
	Location     string     `json:"location" validate:"required_without=Country"`
	CodePostal   string     `json:"code_postal"`
	Longitude    *float64   `json:"longitude"`
	Latitude     *float64   `json:"latitude"`
	ContractType string     `json:"contract_type"`
	SalaryMin    *float64   `json:"salary_min"`
	SalaryMax    *float64   `json:"salary_max"`
	Sector       string     `json:"sector"`
	Description  string     `json:"description"`
	Country      string     `json:"country"`
	CreatedAt    *time.Time `json:"created_at"`
	ApplyURL     string     `json:"apply_url"`
}

// HasSalary reports whether the offer carries a usable salary figure.
// A zero minimum counts as missing, like an empty field.
func (o CanonicalOffer) HasSalary() bool {
	return o.SalaryMin != nil && *o.SalaryMin != 0
}

// CreatedAtOrZero returns the publication time, or the zero time when
// the source did not provide one.
func (o CanonicalOffer) CreatedAtOrZero() time.Time {
	if o.CreatedAt == nil {
		return time.Time{}
	}
	return *o.CreatedAt
}
