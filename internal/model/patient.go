package model

import "time"

type ReportStatus string

const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusInactive ReportStatus = "inactive"
	ReportStatusArchived ReportStatus = "archived"
)

// PatientReport is a patient record with its report metadata. The backend
// returns the full unpaginated set; slicing happens client-side.
type PatientReport struct {
	ID        int64     `json:"id"`
	PatientID string    `json:"patient_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PatientReport) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientFilters are serialized as query parameters; a change re-queries the
// server instead of filtering the cache.
type PatientFilters struct {
	Search       string
	SpecificDate string // yyyy-mm-dd
}
