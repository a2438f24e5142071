package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roadkill-service/models"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// ReportService owns the canonical report records.
type ReportService struct {
	db *sql.DB

	// Deduplication parameters: a candidate submission is a duplicate of
	// any report within dedupRadius meters created within dedupWindow of
	// now. Both bounds are inclusive.
	dedupRadius float64
	dedupWindow time.Duration
}

func NewReportService(db *sql.DB, dedupRadius float64, dedupWindow time.Duration) *ReportService {
	return &ReportService{
		db:          db,
		dedupRadius: dedupRadius,
		dedupWindow: dedupWindow,
	}
}

const reportColumns = `r.id, r.user_id, r.latitude, r.longitude, r.address, r.animal_type,
		r.size, r.description, r.photo_url, r.contact_email, r.contact_phone,
		r.send_updates, r.status, r.city_response, r.created_at,
		r.submitted_to_city_at, r.resolved_at, u.id, u.email`

type rowScanner interface {
	Scan(dest ...any) error
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanReport(row rowScanner) (*models.Report, error) {
	var r models.Report
	var userID, description, photoURL, contactEmail, contactPhone, cityResponse sql.NullString
	var submittedAt, resolvedAt sql.NullTime
	var ownerID, ownerEmail sql.NullString

	err := row.Scan(&r.ID, &userID, &r.Location.Latitude, &r.Location.Longitude,
		&r.Address, &r.AnimalType, &r.Size, &description, &photoURL,
		&contactEmail, &contactPhone, &r.SendUpdates, &r.Status, &cityResponse,
		&r.CreatedAt, &submittedAt, &resolvedAt, &ownerID, &ownerEmail)
	if err != nil {
		return nil, err
	}

	r.UserID = userID.String
	r.Description = description.String
	r.PhotoURL = photoURL.String
	r.ContactEmail = contactEmail.String
	r.ContactPhone = contactPhone.String
	r.CityResponse = cityResponse.String
	if submittedAt.Valid {
		t := submittedAt.Time
		r.SubmittedToCityAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		r.ResolvedAt = &t
	}
	if ownerID.Valid {
		r.Reporter = &models.ReporterInfo{ID: ownerID.String, Email: ownerEmail.String}
	}
	return &r, nil
}

// findRecentNearby returns the id of the most recent report within the
// dedup radius and window, or "" when there is none. Ties on created_at
// break on id so concurrent submissions resolve deterministically.
func (s *ReportService) findRecentNearby(ctx context.Context, q rowQuerier, lat, lon float64, now time.Time) (string, error) {
	ptWKT := fmt.Sprintf("POINT(%g %g)", lat, lon)
	cutoff := now.Add(-s.dedupWindow)

	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM reports
		WHERE ST_Distance_Sphere(location, ST_GeomFromText(?, 4326)) <= ?
			AND created_at >= ?
		ORDER BY created_at DESC, id
		LIMIT 1`,
		ptWKT, s.dedupRadius, cutoff).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateReport runs the dedup check and the insert inside one serializable
// transaction so two concurrent near-duplicate submissions resolve to at
// most one accepted report. Returns a *models.DuplicateError when a recent
// nearby report already covers the incident.
func (s *ReportService) CreateReport(ctx context.Context, req *models.SubmitReportRequest, userID string) (*models.Report, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)

	matchedID, err := s.findRecentNearby(ctx, tx, req.Location.Latitude, req.Location.Longitude, now)
	if err != nil {
		return nil, fmt.Errorf("failed to run dedup query: %w", err)
	}
	if matchedID != "" {
		log.Infof("Submission at %f,%f duplicates recent report %s", req.Location.Latitude, req.Location.Longitude, matchedID)
		return nil, &models.DuplicateError{MatchedReportID: matchedID}
	}

	report := &models.Report{
		ID:           uuid.NewString(),
		UserID:       userID,
		Location:     req.Location,
		Address:      req.Address,
		AnimalType:   models.AnimalType(req.AnimalType),
		Size:         models.Size(req.Size),
		Description:  req.Description,
		PhotoURL:     req.PhotoURL,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		SendUpdates:  req.SendUpdates,
		Status:       models.StatusPending,
		CreatedAt:    now,
	}

	ptWKT := fmt.Sprintf("POINT(%g %g)", req.Location.Latitude, req.Location.Longitude)
	_, err = tx.ExecContext(ctx, `INSERT
		INTO reports (id, user_id, location, latitude, longitude, address,
			animal_type, size, description, photo_url, contact_email,
			contact_phone, send_updates, status, created_at)
		VALUES (?, ?, ST_GeomFromText(?, 4326), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, nullable(userID), ptWKT,
		report.Location.Latitude, report.Location.Longitude, report.Address,
		string(report.AnimalType), string(report.Size),
		nullable(report.Description), nullable(report.PhotoURL),
		nullable(report.ContactEmail), nullable(report.ContactPhone),
		report.SendUpdates, string(report.Status), report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}

	log.Infof("Stored report %s at %f,%f (%s, %s)", report.ID,
		report.Location.Latitude, report.Location.Longitude, report.AnimalType, report.Size)
	return report, nil
}

// MarkSubmitted transitions a report to submitted after a confirmed city
// notification. The submitted_to_city_at stamp is written at most once.
func (s *ReportService) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE reports
		SET status = ?, submitted_to_city_at = COALESCE(submitted_to_city_at, ?)
		WHERE id = ? AND status = ?`,
		string(models.StatusSubmitted), at.UTC().Truncate(time.Second), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark report %s submitted: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get status of db op: %w", err)
	}
	if rows != 1 {
		log.Warnf("MarkSubmitted(%s): expected to affect 1 row, affected %d", id, rows)
	}
	return nil
}

// GetReport fetches one report by id, joining the owner's public fields
// when the report was submitted by an authenticated user.
func (s *ReportService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.id
		WHERE r.id = ?`, id)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", id, err)
	}
	return report, nil
}

// ListByOwner returns all reports submitted by the given user, most
// recent first.
func (s *ReportService) ListByOwner(ctx context.Context, userID string) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// ListByStatus returns one page of reports in the given status, most
// recent first, together with the total count.
func (s *ReportService) ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]models.Report, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE status = ?`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s reports: %w", status, err)
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.id
		WHERE r.status = ?
		ORDER BY r.created_at DESC, r.id
		LIMIT ? OFFSET ?`, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s reports: %w", status, err)
	}
	defer rows.Close()

	reports, err := collectReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// UpdateStatus applies an operator status change. Stamping rules:
// submitted_to_city_at and resolved_at are written at most once, resolved
// is terminal, and city_response is stored when provided.
func (s *ReportService) UpdateStatus(ctx context.Context, id string, status models.Status, cityResponse string) (*models.Report, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s for update: %w", id, err)
	}
	if models.Status(current) == models.StatusResolved && status != models.StatusResolved {
		return nil, models.ErrReportResolved
	}

	now := time.Now().UTC().Truncate(time.Second)
	query := `UPDATE reports SET status = ?`
	args := []any{string(status)}

	switch status {
	case models.StatusSubmitted:
		query += `, submitted_to_city_at = COALESCE(submitted_to_city_at, ?)`
		args = append(args, now)
	case models.StatusResolved:
		query += `, resolved_at = COALESCE(resolved_at, ?)`
		args = append(args, now)
	}
	if cityResponse != "" {
		query += `, city_response = ?`
		args = append(args, cityResponse)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update status of report %s: %w", id, err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.id
		WHERE r.id = ?`, id)
	report, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read back report %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	log.Infof("Report %s status set to %s", id, status)
	return report, nil
}

func collectReports(rows *sql.Rows) ([]models.Report, error) {
	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}
	return reports, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
