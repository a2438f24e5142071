package models

import (
	"time"
)

// AnimalType is the closed set of animal categories a report may carry.
type AnimalType string

const (
	AnimalDeer     AnimalType = "Deer"
	AnimalRaccoon  AnimalType = "Raccoon"
	AnimalOpossum  AnimalType = "Opossum"
	AnimalCat      AnimalType = "Cat"
	AnimalDog      AnimalType = "Dog"
	AnimalSquirrel AnimalType = "Squirrel"
	AnimalRabbit   AnimalType = "Rabbit"
	AnimalOther    AnimalType = "Other"
)

var animalTypes = map[AnimalType]bool{
	AnimalDeer:     true,
	AnimalRaccoon:  true,
	AnimalOpossum:  true,
	AnimalCat:      true,
	AnimalDog:      true,
	AnimalSquirrel: true,
	AnimalRabbit:   true,
	AnimalOther:    true,
}

// ParseAnimalType validates an animal type token.
func ParseAnimalType(s string) (AnimalType, bool) {
	a := AnimalType(s)
	return a, animalTypes[a]
}

// Size is the closed set of animal size categories.
type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

var sizes = map[Size]bool{
	SizeSmall:  true,
	SizeMedium: true,
	SizeLarge:  true,
}

// ParseSize validates a size token.
func ParseSize(s string) (Size, bool) {
	sz := Size(s)
	return sz, sizes[sz]
}

// Status is the report lifecycle state. A report is created as pending,
// becomes submitted once the city notification is confirmed, and is moved
// to in-progress/resolved by an operator. Resolved is terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

var statuses = map[Status]bool{
	StatusPending:    true,
	StatusSubmitted:  true,
	StatusInProgress: true,
	StatusResolved:   true,
}

// ParseStatus validates a status token.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, statuses[st]
}

// Location is a WGS84 point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReporterInfo is the public slice of the owner's identity joined into
// report reads for authenticated submissions.
type ReporterInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Report is the canonical report record.
type Report struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id,omitempty"`
	Location          Location      `json:"location"`
	Address           string        `json:"address"`
	AnimalType        AnimalType    `json:"animal_type"`
	Size              Size          `json:"size"`
	Description       string        `json:"description,omitempty"`
	PhotoURL          string        `json:"photo_url,omitempty"`
	ContactEmail      string        `json:"contact_email,omitempty"`
	ContactPhone      string        `json:"contact_phone,omitempty"`
	SendUpdates       bool          `json:"send_updates"`
	Status            Status        `json:"status"`
	CityResponse      string        `json:"city_response,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	SubmittedToCityAt *time.Time    `json:"submitted_to_city_at,omitempty"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`
	Reporter          *ReporterInfo `json:"reporter,omitempty"`
}

// SubmitReportRequest is the client payload for POST /reports.
type SubmitReportRequest struct {
	Location     Location `json:"location"`
	Address      string   `json:"address"`
	AnimalType   string   `json:"animal_type"`
	Size         string   `json:"size"`
	Description  string   `json:"description"`
	PhotoURL     string   `json:"photo_url"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	SendUpdates  bool     `json:"send_updates"`
}

// SubmitReportResponse acknowledges a stored report.
type SubmitReportResponse struct {
	ReportID string `json:"report_id"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
}

// UpdateStatusRequest is the operator payload for PATCH /reports/:id/status.
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	CityResponse string `json:"city_response"`
}

// ReportsResponse wraps a plain report list.
type ReportsResponse struct {
	Reports []Report `json:"reports"`
}

// PagedReportsResponse wraps a paginated report list.
type PagedReportsResponse struct {
	Reports    []Report `json:"reports"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
}
