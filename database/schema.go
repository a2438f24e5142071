package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing roadkill-service database schema...")

	// Users are owned by the identity provider; this table mirrors the
	// public fields joined into report reads.
	usersTableSQL := `
	CREATE TABLE IF NOT EXISTS users(
		id CHAR(36) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(20),
		is_verified BOOL NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	)`

	if _, err := db.Exec(usersTableSQL); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Info("Users table created/verified")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		id CHAR(36) NOT NULL,
		user_id CHAR(36),
		location POINT NOT NULL SRID 4326,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		address TEXT NOT NULL,
		animal_type VARCHAR(100) NOT NULL,
		size ENUM('Small', 'Medium', 'Large') NOT NULL,
		description TEXT,
		photo_url TEXT,
		contact_email VARCHAR(255),
		contact_phone VARCHAR(20),
		send_updates BOOL NOT NULL DEFAULT false,
		status ENUM('pending', 'submitted', 'in-progress', 'resolved') NOT NULL DEFAULT 'pending',
		city_response TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		submitted_to_city_at TIMESTAMP NULL,
		resolved_at TIMESTAMP NULL,
		PRIMARY KEY (id),
		INDEX user_id_index (user_id),
		INDEX status_index (status),
		INDEX created_at_index (created_at),
		SPATIAL INDEX(location)
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	log.Info("Roadkill-service database schema initialization completed")
	return nil
}
