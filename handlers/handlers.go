package handlers

import (
	"context"
	"errors"
	"net/http"

	"roadkill-service/middleware"
	"roadkill-service/models"
	"roadkill-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Intake is the submission pipeline the handler delegates to.
type Intake interface {
	Submit(ctx context.Context, req *models.SubmitReportRequest, userID string) (*models.Report, error)
}

// ReportReader serves report lookups and operator actions.
type ReportReader interface {
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Report, error)
	ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]models.Report, int, error)
	UpdateStatus(ctx context.Context, id string, status models.Status, cityResponse string) (*models.Report, error)
}

type ReportsHandler struct {
	intake          Intake
	reports         ReportReader
	defaultPageSize int
	maxPageSize     int
}

func NewReportsHandler(intake Intake, reports ReportReader, defaultPageSize, maxPageSize int) *ReportsHandler {
	return &ReportsHandler{
		intake:          intake,
		reports:         reports,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// HealthCheck returns a simple health status
func (h *ReportsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "roadkill-service",
	})
}

// SubmitReport handles POST /reports.
func (h *ReportsHandler) SubmitReport(c *gin.Context) {
	args := &models.SubmitReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Warnf("Failed to get the argument in /reports call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	report, err := h.intake.Submit(c.Request.Context(), args, userID)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
			return
		}
		var derr *models.DuplicateError
		if errors.As(err, &derr) {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Duplicate Report",
				"message":           "A similar report was submitted recently in this area",
				"matched_report_id": derr.MatchedReportID,
			})
			return
		}
		log.Errorf("Error submitting report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to submit report",
		})
		return
	}

	c.JSON(http.StatusCreated, models.SubmitReportResponse{
		ReportID: report.ID,
		Status:   report.Status,
		Message:  "Report submitted successfully",
	})
}

// GetUserReports handles GET /reports/user for authenticated reporters.
func (h *ReportsHandler) GetUserReports(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	reports, err := h.reports.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Error fetching reports for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to fetch reports",
		})
		return
	}

	c.JSON(http.StatusOK, models.ReportsResponse{Reports: reports})
}

// GetReport handles GET /reports/:id.
func (h *ReportsHandler) GetReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Report not found",
			})
			return
		}
		log.Errorf("Error fetching report %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to fetch report",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// UpdateReportStatus handles PATCH /reports/:id/status for operators.
func (h *ReportsHandler) UpdateReportStatus(c *gin.Context) {
	id := c.Param("id")

	args := &models.UpdateStatusRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Warnf("Failed to get the argument in /reports/:id/status call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	status, ok := models.ParseStatus(args.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid Status",
			"message": "Invalid status value",
		})
		return
	}

	report, err := h.reports.UpdateStatus(c.Request.Context(), id, status, args.CityResponse)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Report not found",
			})
		case errors.Is(err, models.ErrReportResolved):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Report Resolved",
				"message": "Resolved reports cannot change status",
			})
		default:
			log.Errorf("Error updating status of report %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to update report status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"message": "Report status updated successfully",
	})
}

// GetReportsByStatus handles GET /reports/status/:status for operators.
func (h *ReportsHandler) GetReportsByStatus(c *gin.Context) {
	status, ok := models.ParseStatus(c.Param("status"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid Status",
			"message": "Invalid status value",
		})
		return
	}

	page, limit, err := service.ValidatePageParams(
		c.Query("page"), c.Query("limit"), h.defaultPageSize, h.maxPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, total, err := h.reports.ListByStatus(c.Request.Context(), status, page, limit)
	if err != nil {
		log.Errorf("Error fetching %s reports: %v", status, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to fetch reports",
		})
		return
	}

	totalPages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, models.PagedReportsResponse{
		Reports:    reports,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}
