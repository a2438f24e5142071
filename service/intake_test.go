package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roadkill-service/email"
	"roadkill-service/geo"
	"roadkill-service/models"
)

type fakeStore struct {
	createErr     error
	markErr       error
	created       *models.Report
	markedID      string
	createCalled  bool
	markSubmitted bool
}

func (f *fakeStore) CreateReport(ctx context.Context, req *models.SubmitReportRequest, userID string) (*models.Report, error) {
	f.createCalled = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &models.Report{
		ID:          "report-1",
		UserID:      userID,
		Location:    req.Location,
		Address:     req.Address,
		AnimalType:  models.AnimalType(req.AnimalType),
		Size:        models.Size(req.Size),
		Description: req.Description,
		SendUpdates: req.SendUpdates,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return f.created, nil
}

func (f *fakeStore) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markSubmitted = true
	f.markedID = id
	return nil
}

type fakeSender struct {
	cityOutcome         email.NotifyOutcome
	confirmOutcome      email.NotifyOutcome
	citySent            bool
	confirmationCalled  bool
	confirmationReports []*models.Report
}

func (f *fakeSender) SendCityNotification(report *models.Report) email.NotifyOutcome {
	f.citySent = true
	return f.cityOutcome
}

func (f *fakeSender) SendReporterConfirmation(report *models.Report) email.NotifyOutcome {
	f.confirmationCalled = true
	f.confirmationReports = append(f.confirmationReports, report)
	return f.confirmOutcome
}

func oakRidge() *geo.ServiceArea {
	return geo.NewServiceArea(35.95, 36.05, -84.35, -84.25)
}

func validRequest() *models.SubmitReportRequest {
	return &models.SubmitReportRequest{
		Location:   models.Location{Latitude: 36.0, Longitude: -84.3},
		Address:    "100 Main St",
		AnimalType: "Deer",
		Size:       "Medium",
	}
}

func TestValidate(t *testing.T) {
	svc := NewIntakeService(&fakeStore{}, &fakeSender{cityOutcome: email.Sent(), confirmOutcome: email.Sent()}, oakRidge())

	longDescription := make([]byte, 1001)
	for i := range longDescription {
		longDescription[i] = 'x'
	}

	testCases := []struct {
		name   string
		mutate func(*models.SubmitReportRequest)
		fields []string
	}{
		{
			name:   "Valid payload",
			mutate: func(r *models.SubmitReportRequest) {},
			fields: nil,
		},
		{
			name:   "Latitude outside the service area",
			mutate: func(r *models.SubmitReportRequest) { r.Location.Latitude = 36.2 },
			fields: []string{"location"},
		},
		{
			name:   "Longitude outside the service area",
			mutate: func(r *models.SubmitReportRequest) { r.Location.Longitude = -84.4 },
			fields: []string{"location"},
		},
		{
			name:   "Empty address",
			mutate: func(r *models.SubmitReportRequest) { r.Address = "" },
			fields: []string{"address"},
		},
		{
			name:   "Unknown animal type",
			mutate: func(r *models.SubmitReportRequest) { r.AnimalType = "Moose" },
			fields: []string{"animal_type"},
		},
		{
			name:   "Unknown size",
			mutate: func(r *models.SubmitReportRequest) { r.Size = "Huge" },
			fields: []string{"size"},
		},
		{
			name:   "Description too long",
			mutate: func(r *models.SubmitReportRequest) { r.Description = string(longDescription) },
			fields: []string{"description"},
		},
		{
			name:   "Malformed contact email",
			mutate: func(r *models.SubmitReportRequest) { r.ContactEmail = "not-an-email" },
			fields: []string{"contact_email"},
		},
		{
			name:   "Malformed contact phone",
			mutate: func(r *models.SubmitReportRequest) { r.ContactPhone = "023-abc" },
			fields: []string{"contact_phone"},
		},
		{
			name: "All failing fields are collected",
			mutate: func(r *models.SubmitReportRequest) {
				r.Location.Latitude = 0
				r.Address = ""
				r.AnimalType = ""
				r.Size = ""
			},
			fields: []string{"location", "address", "animal_type", "size"},
		},
	}

	for _, testCase := range testCases {
		req := validRequest()
		testCase.mutate(req)

		verr := svc.Validate(req)
		if len(testCase.fields) == 0 {
			if verr != nil {
				t.Errorf("%s: expected no validation error, got %v", testCase.name, verr)
			}
			continue
		}
		if verr == nil {
			t.Errorf("%s: expected validation error", testCase.name)
			continue
		}
		if len(verr.Fields) != len(testCase.fields) {
			t.Errorf("%s: expected %d failing fields, got %d (%v)",
				testCase.name, len(testCase.fields), len(verr.Fields), verr.Fields)
			continue
		}
		for i, field := range testCase.fields {
			if verr.Fields[i].Field != field {
				t.Errorf("%s: expected field %s at %d, got %s", testCase.name, field, i, verr.Fields[i].Field)
			}
		}
	}
}

func TestSubmitValidationShortCircuits(t *testing.T) {
	store := &fakeStore{}
	svc := NewIntakeService(store, &fakeSender{}, oakRidge())

	req := validRequest()
	req.Location.Latitude = 40.0

	_, err := svc.Submit(context.Background(), req, "")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.createCalled {
		t.Error("expected no persistence after a validation failure")
	}
}

func TestSubmitNotificationSucceeds(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{cityOutcome: email.Sent(), confirmOutcome: email.Sent()}
	svc := NewIntakeService(store, sender, oakRidge())

	report, err := svc.Submit(context.Background(), validRequest(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != models.StatusSubmitted {
		t.Errorf("expected status submitted, got %s", report.Status)
	}
	if report.SubmittedToCityAt == nil {
		t.Error("expected submitted_to_city_at to be stamped")
	}
	if !store.markSubmitted || store.markedID != "report-1" {
		t.Error("expected the store to be marked submitted")
	}
	if report.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %q", report.UserID)
	}
}

func TestSubmitNotificationFails(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{cityOutcome: email.Failed("smtp down"), confirmOutcome: email.Sent()}
	svc := NewIntakeService(store, sender, oakRidge())

	report, err := svc.Submit(context.Background(), validRequest(), "")
	if err != nil {
		t.Fatalf("notification failure must not fail the submission, got %v", err)
	}
	if report.Status != models.StatusPending {
		t.Errorf("expected status pending after failed notification, got %s", report.Status)
	}
	if report.SubmittedToCityAt != nil {
		t.Error("expected no submitted_to_city_at stamp after failed notification")
	}
	if store.markSubmitted {
		t.Error("expected no submitted transition after failed notification")
	}
}

func TestSubmitDuplicatePassesThrough(t *testing.T) {
	store := &fakeStore{createErr: &models.DuplicateError{MatchedReportID: "report-9"}}
	sender := &fakeSender{}
	svc := NewIntakeService(store, sender, oakRidge())

	_, err := svc.Submit(context.Background(), validRequest(), "")
	var derr *models.DuplicateError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if derr.MatchedReportID != "report-9" {
		t.Errorf("expected matched id report-9, got %s", derr.MatchedReportID)
	}
	if sender.citySent {
		t.Error("expected no notification for a duplicate submission")
	}
}

func TestSubmitReporterConfirmationIsNonFatal(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{cityOutcome: email.Sent(), confirmOutcome: email.Failed("bounced")}
	svc := NewIntakeService(store, sender, oakRidge())

	req := validRequest()
	req.SendUpdates = true
	req.ContactEmail = "reporter@example.com"

	report, err := svc.Submit(context.Background(), req, "")
	if err != nil {
		t.Fatalf("confirmation failure must not fail the submission, got %v", err)
	}
	if report.Status != models.StatusSubmitted {
		t.Errorf("expected status submitted, got %s", report.Status)
	}
	if !sender.confirmationCalled {
		t.Error("expected a reporter confirmation attempt")
	}
}

func TestValidatePageParams(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		limit    string
		expPage  int
		expLimit int
		expErr   bool
	}{
		{name: "Defaults", page: "", limit: "", expPage: 1, expLimit: 20},
		{name: "Explicit values", page: "3", limit: "50", expPage: 3, expLimit: 50},
		{name: "Limit clamped to ceiling", page: "1", limit: "500", expPage: 1, expLimit: 100},
		{name: "Zero page rejected", page: "0", limit: "", expErr: true},
		{name: "Negative limit rejected", page: "1", limit: "-5", expErr: true},
		{name: "Garbage page rejected", page: "abc", limit: "", expErr: true},
	}

	for _, testCase := range testCases {
		page, limit, err := ValidatePageParams(testCase.page, testCase.limit, 20, 100)
		if testCase.expErr != (err != nil) {
			t.Errorf("%s: expected error: %v, got: %v", testCase.name, testCase.expErr, err)
			continue
		}
		if err != nil {
			continue
		}
		if page != testCase.expPage || limit != testCase.expLimit {
			t.Errorf("%s: expected page=%d limit=%d, got page=%d limit=%d",
				testCase.name, testCase.expPage, testCase.expLimit, page, limit)
		}
	}
}
