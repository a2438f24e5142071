package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"roadkill-service/email"
	"roadkill-service/geo"
	"roadkill-service/models"

	"github.com/apex/log"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\+]?[1-9][\d]{0,15}$`)
)

const maxDescriptionLength = 1000

// ReportStore is the slice of the report store the intake flow depends on.
type ReportStore interface {
	CreateReport(ctx context.Context, req *models.SubmitReportRequest, userID string) (*models.Report, error)
	MarkSubmitted(ctx context.Context, id string, at time.Time) error
}

// IntakeService orchestrates a submission: validate, dedup-check, persist,
// notify the city, finalize status.
type IntakeService struct {
	store  ReportStore
	sender email.Sender
	area   *geo.ServiceArea
}

func NewIntakeService(store ReportStore, sender email.Sender, area *geo.ServiceArea) *IntakeService {
	return &IntakeService{
		store:  store,
		sender: sender,
		area:   area,
	}
}

// Validate checks every field of the payload and collects all failures.
func (s *IntakeService) Validate(req *models.SubmitReportRequest) *models.ValidationError {
	verr := &models.ValidationError{}

	if !s.area.Contains(req.Location.Latitude, req.Location.Longitude) {
		verr.Add("location", "location is outside the service area")
	}
	if req.Address == "" {
		verr.Add("address", "Address is required")
	}
	if _, ok := models.ParseAnimalType(req.AnimalType); !ok {
		verr.Add("animal_type", "Invalid animal type")
	}
	if _, ok := models.ParseSize(req.Size); !ok {
		verr.Add("size", "Invalid size")
	}
	if len(req.Description) > maxDescriptionLength {
		verr.Add("description", "Description too long")
	}
	if req.ContactEmail != "" && !emailRegex.MatchString(req.ContactEmail) {
		verr.Add("contact_email", "Invalid email")
	}
	if req.ContactPhone != "" && !phoneRegex.MatchString(req.ContactPhone) {
		verr.Add("contact_phone", "Invalid phone number")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Submit runs the full intake pipeline. The returned error is one of
// *models.ValidationError, *models.DuplicateError, or an opaque store
// failure. A notification failure is not an error: the report stays
// pending and the submission still succeeds.
func (s *IntakeService) Submit(ctx context.Context, req *models.SubmitReportRequest, userID string) (*models.Report, error) {
	if verr := s.Validate(req); verr != nil {
		return nil, verr
	}

	report, err := s.store.CreateReport(ctx, req, userID)
	if err != nil {
		return nil, err
	}

	// The report is durable at this point. The city notification is a
	// single blocking attempt made outside any store transaction; its
	// failure must never fail the request.
	outcome := s.sender.SendCityNotification(report)
	if outcome.Sent {
		now := time.Now().UTC()
		if err := s.store.MarkSubmitted(ctx, report.ID, now); err != nil {
			log.Errorf("Failed to mark report %s submitted: %v", report.ID, err)
		} else {
			report.Status = models.StatusSubmitted
			report.SubmittedToCityAt = &now
		}
	} else {
		log.Warnf("Failed to send city notification for report %s: %s", report.ID, outcome.Reason)
	}

	if conf := s.sender.SendReporterConfirmation(report); !conf.Sent {
		log.Warnf("Failed to send reporter confirmation for report %s: %s", report.ID, conf.Reason)
	}

	return report, nil
}

// ValidatePageParams normalizes operator pagination input.
func ValidatePageParams(pageStr, limitStr string, defaultLimit, maxLimit int) (int, int, error) {
	page := 1
	limit := defaultLimit

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, fmt.Errorf("invalid page parameter %q", pageStr)
		}
		page = p
	}
	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, fmt.Errorf("invalid limit parameter %q", limitStr)
		}
		limit = l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, nil
}
