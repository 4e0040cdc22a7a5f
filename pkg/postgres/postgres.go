package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/careplus/clinic-backend/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS branch (
			id SERIAL PRIMARY KEY,
			name_en VARCHAR(255) NOT NULL,
			name_ar VARCHAR(255) NOT NULL,
			city VARCHAR(255) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS app_user (
			id SERIAL PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS doctor (
			id SERIAL PRIMARY KEY,
			name_en VARCHAR(255) NOT NULL,
			name_ar VARCHAR(255) NOT NULL,
			session_fees NUMERIC(10,2) NOT NULL,
			photo_url TEXT DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS service (
			id SERIAL PRIMARY KEY,
			name_en VARCHAR(255) NOT NULL,
			name_ar VARCHAR(255) NOT NULL,
			category_id INTEGER NOT NULL DEFAULT 0,
			actual_price NUMERIC(10,2) NOT NULL,
			discounted_price NUMERIC(10,2) NOT NULL,
			can_redeem BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS doctor_branch (
			id SERIAL PRIMARY KEY,
			doctor_id INTEGER NOT NULL REFERENCES doctor(id),
			branch_id INTEGER NOT NULL REFERENCES branch(id),
			day_bitmap INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE (doctor_id, branch_id)
		)`,

		`CREATE TABLE IF NOT EXISTS doctor_time_slot (
			id SERIAL PRIMARY KEY,
			doctor_id INTEGER NOT NULL REFERENCES doctor(id),
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS service_branch (
			id SERIAL PRIMARY KEY,
			service_id INTEGER NOT NULL REFERENCES service(id),
			branch_id INTEGER NOT NULL REFERENCES branch(id),
			maximum_booking_per_slot INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE (service_id, branch_id)
		)`,

		`CREATE TABLE IF NOT EXISTS service_time_slot (
			id SERIAL PRIMARY KEY,
			service_id INTEGER NOT NULL REFERENCES service(id),
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS booking_doctor (
			id SERIAL PRIMARY KEY,
			doctor_id INTEGER NOT NULL REFERENCES doctor(id),
			time_slot_id INTEGER NOT NULL REFERENCES doctor_time_slot(id),
			branch_id INTEGER NOT NULL REFERENCES branch(id),
			user_id INTEGER NOT NULL REFERENCES app_user(id),
			date VARCHAR(10) NOT NULL,
			vat_percentage NUMERIC(5,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'SCHEDULED',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS booking_service (
			id SERIAL PRIMARY KEY,
			service_id INTEGER NOT NULL REFERENCES service(id),
			time_slot_id INTEGER NOT NULL REFERENCES service_time_slot(id),
			branch_id INTEGER NOT NULL REFERENCES branch(id),
			user_id INTEGER NOT NULL REFERENCES app_user(id),
			date VARCHAR(10) NOT NULL,
			vat_percentage NUMERIC(5,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'SCHEDULED',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS redemption (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES app_user(id),
			booking_id INTEGER NOT NULL,
			service_id INTEGER NOT NULL REFERENCES service(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS setting (
			name VARCHAR(100) PRIMARY KEY,
			value VARCHAR(255) NOT NULL
		)`,

		`INSERT INTO setting (name, value) VALUES ('vat_percentage', '15')
			ON CONFLICT (name) DO NOTHING`,

		// Doctor appointments are exclusive: at most one SCHEDULED row per
		// (doctor, branch, date, slot). Concurrent inserts lose on this index.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_booking_doctor_active_slot
			ON booking_doctor (doctor_id, branch_id, date, time_slot_id)
			WHERE status = 'SCHEDULED'`,

		`CREATE INDEX IF NOT EXISTS idx_booking_doctor_user ON booking_doctor(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_doctor_status ON booking_doctor(status)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_service_user ON booking_service(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_service_status ON booking_service(status)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_service_slot
			ON booking_service(service_id, branch_id, date, time_slot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_redemption_user ON redemption(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
