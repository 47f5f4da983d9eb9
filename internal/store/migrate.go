package store

import (
	"database/sql"
	"log"
)

// Migrate applies the schema. Statements are idempotent so the server can run
// them on every start. The composite unique indexes on cancellations and
// attendance back the insert-or-fail semantics of the exception store; the
// uniqueness invariant lives here, not in application-level checks.
func Migrate(db *sql.DB) error {
	log.Println("running database migrations...")
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			phone_no      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL CHECK (role IN ('student', 'teacher')),
			department    TEXT,
			semester      TEXT,
			reg_no        TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_reg_no_idx
			ON users (reg_no) WHERE reg_no IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			user_id    TEXT NOT NULL REFERENCES users (id),
			token      TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked    BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			code       TEXT NOT NULL,
			teacher_id TEXT NOT NULL REFERENCES users (id),
			department TEXT NOT NULL CHECK (department IN ('CST', 'CFS', 'EE', 'ID', 'MTR')),
			semester   TEXT NOT NULL CHECK (semester IN ('1st', '2nd', '3rd', '4th', '5th', '6th')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS slots (
			id           TEXT PRIMARY KEY,
			day          TEXT NOT NULL CHECK (day IN
				('Monday', 'Tuesday', 'Wednesday', 'Thursday', 'Friday', 'Saturday', 'Sunday')),
			start_minute INT NOT NULL CHECK (start_minute >= 0 AND start_minute < 1440),
			end_minute   INT NOT NULL CHECK (end_minute > start_minute),
			subject_id   TEXT NOT NULL REFERENCES subjects (id),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// No FK from the exception tables to slots: deleting a slot keeps its
		// cancellation/attendance rows as orphans that never match a
		// projected occurrence.
		`CREATE TABLE IF NOT EXISTS cancellations (
			slot_id      TEXT NOT NULL,
			date         DATE NOT NULL,
			reason       TEXT NOT NULL DEFAULT '',
			cancelled_by TEXT NOT NULL REFERENCES users (id),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (slot_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			student_id TEXT NOT NULL REFERENCES users (id),
			slot_id    TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			date       DATE NOT NULL,
			status     TEXT NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'absent')),
			marked_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (student_id, slot_id, date)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("migration failed: %v", err)
			return err
		}
	}
	log.Println("database migrations completed")
	return nil
}
