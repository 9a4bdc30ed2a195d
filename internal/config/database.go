package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(10) NOT NULL DEFAULT 'user',
			building_no INT,
			flat_no VARCHAR(20),
			contact_no VARCHAR(20),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create donations table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS donations (
			id VARCHAR(36) PRIMARY KEY,
			building_no INT,
			flat_no VARCHAR(20),
			contributor_name VARCHAR(255),
			is_external BOOLEAN NOT NULL DEFAULT FALSE,
			amount NUMERIC(12,2) NOT NULL,
			payment_method VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			financial_year VARCHAR(9) NOT NULL,
			received_by VARCHAR(255),
			edit_history JSONB NOT NULL DEFAULT '[]',
			deleted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// One live internal contribution per unit per financial year. The
	// partial unique index backstops the service-level admission check so a
	// concurrent writer cannot slip a colliding record in between the
	// uniqueness scan and the insert.
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_donations_unit_year
		ON donations (building_no, flat_no, financial_year)
		WHERE NOT is_external AND deleted_at IS NULL
	`)
	if err != nil {
		return err
	}

	// Create expenses table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS expenses (
			id VARCHAR(36) PRIMARY KEY,
			description TEXT NOT NULL,
			category VARCHAR(100) NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			payment_method VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			financial_year VARCHAR(9) NOT NULL,
			expense_by VARCHAR(255),
			receipt TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create expense_sources table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS expense_sources (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create events table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date DATE NOT NULL,
			registration_deadline DATE NOT NULL,
			venue VARCHAR(255),
			max_participants INT,
			current_participants INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create event_registrations table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS event_registrations (
			id VARCHAR(36) PRIMARY KEY,
			event_id VARCHAR(36) NOT NULL REFERENCES events(id),
			event_name VARCHAR(255) NOT NULL,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			user_email VARCHAR(255) NOT NULL,
			sequence_number INT NOT NULL,
			participants JSONB NOT NULL DEFAULT '[]',
			group_name VARCHAR(255),
			contact_phone VARCHAR(20) NOT NULL,
			status VARCHAR(10) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (event_id, sequence_number)
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_donations_year ON donations(financial_year) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_expenses_year ON expenses(financial_year)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_event ON event_registrations(event_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_user ON event_registrations(user_id)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
