package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the hostel tables.  users is normally owned by the auth
// service; it is created here only so a fresh database is usable.  A room's
// occupants are the students whose room_id references it, and the foreign
// key stops an occupied room from being deleted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(120) NOT NULL,
		email      VARCHAR(190) NOT NULL UNIQUE,
		role       ENUM('ADMIN','STUDENT') NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		room_number VARCHAR(32) NOT NULL,
		capacity    INT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_rooms_number (room_number),
		CHECK (capacity >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS students (
		id      BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		room_id BIGINT UNSIGNED NULL,
		UNIQUE KEY uq_students_user (user_id),
		KEY idx_students_room (room_id),
		CONSTRAINT fk_students_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_students_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_requests (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		student_id    BIGINT UNSIGNED NOT NULL,
		room_id       BIGINT UNSIGNED NOT NULL,
		room_number   VARCHAR(32) NOT NULL,
		room_capacity INT UNSIGNED NOT NULL,
		status        ENUM('PENDING','APPROVED','REJECTED','CANCELLED') NOT NULL DEFAULT 'PENDING',
		admin_remarks TEXT NULL,
		created_at    DATETIME(6) NOT NULL,
		resolved_at   DATETIME(6) NULL,
		KEY idx_booking_student_status (student_id, status),
		KEY idx_booking_room (room_id),
		CONSTRAINT fk_booking_student FOREIGN KEY (student_id) REFERENCES students (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS maintenance_requests (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		student_id    BIGINT UNSIGNED NOT NULL,
		room_id       BIGINT UNSIGNED NULL,
		description   TEXT NOT NULL,
		status        ENUM('PENDING','IN_PROGRESS','COMPLETED','CANCELLED') NOT NULL DEFAULT 'PENDING',
		admin_remarks TEXT NULL,
		created_at    DATETIME(6) NOT NULL,
		resolved_at   DATETIME(6) NULL,
		KEY idx_maintenance_student (student_id),
		KEY idx_maintenance_status (status),
		CONSTRAINT fk_maintenance_student FOREIGN KEY (student_id) REFERENCES students (id),
		CONSTRAINT fk_maintenance_room FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
