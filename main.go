package main

import (
	"fmt"
	"strconv"

	"roadkill-service/config"
	"roadkill-service/database"
	"roadkill-service/email"
	"roadkill-service/geo"
	"roadkill-service/handlers"
	"roadkill-service/middleware"
	"roadkill-service/service"
	"roadkill-service/version"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const (
	EndPointHealth          = "/health"
	EndPointReports         = "/reports"
	EndPointUserReports     = "/reports/user"
	EndPointReportsByStatus = "/reports/status/:status"
	EndPointReport          = "/reports/:id"
	EndPointReportStatus    = "/reports/:id/status"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Info("Starting the roadkill report service...")

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Build the service area
	area := geo.NewServiceArea(cfg.ServiceAreaLatMin, cfg.ServiceAreaLatMax,
		cfg.ServiceAreaLonMin, cfg.ServiceAreaLonMax)
	if cfg.ServiceAreaGeoJSON != "" {
		if err := area.LoadPolygon(cfg.ServiceAreaGeoJSON); err != nil {
			log.Fatalf("Failed to load service area polygon: %v", err)
		}
		log.Infof("Service area polygon loaded from %s", cfg.ServiceAreaGeoJSON)
	}

	// Initialize services
	reportService := database.NewReportService(db, cfg.DedupRadiusMeters, cfg.DedupWindow)
	emailSender := email.NewEmailSender(cfg)
	intakeService := service.NewIntakeService(reportService, emailSender, area)

	// Initialize handlers
	reportsHandler := handlers.NewReportsHandler(intakeService, reportService,
		cfg.DefaultPageSize, cfg.MaxPageSize)

	// Setup router
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("roadkill-service"))
	})

	// Register health endpoint (outside API group)
	router.GET(EndPointHealth, reportsHandler.HealthCheck)

	// Create API v3 router group
	apiV3 := router.Group("/api/v3")
	{
		apiV3.POST(EndPointReports,
			middleware.RateLimitMiddleware(cfg.SubmitRateLimit, cfg.SubmitRateWindow),
			middleware.OptionalAuthMiddleware(cfg.JWTSecret),
			reportsHandler.SubmitReport)
		apiV3.GET(EndPointUserReports,
			middleware.AuthMiddleware(cfg.JWTSecret),
			reportsHandler.GetUserReports)
		apiV3.GET(EndPointReportsByStatus,
			middleware.OperatorMiddleware(cfg.JWTSecret),
			reportsHandler.GetReportsByStatus)
		apiV3.GET(EndPointReport, reportsHandler.GetReport)
		apiV3.PATCH(EndPointReportStatus,
			middleware.OperatorMiddleware(cfg.JWTSecret),
			reportsHandler.UpdateReportStatus)
	}

	// Get server port from config
	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	// Start server
	log.Infof("Roadkill report service starting on port %d", serverPort)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
