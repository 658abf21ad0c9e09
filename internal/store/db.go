package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection, verifies it and bootstraps the schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS courses (
		id            BIGSERIAL PRIMARY KEY,
		department_id BIGINT NOT NULL REFERENCES departments(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		user_code     TEXT UNIQUE NOT NULL,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		department_id BIGINT REFERENCES departments(id),
		course_id     BIGINT REFERENCES courses(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token      TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked    BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS subjects (
		id         BIGSERIAL PRIMARY KEY,
		course_id  BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		code       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (course_id, code)
	);

	CREATE TABLE IF NOT EXISTS subject_assignments (
		subject_id BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       TEXT NOT NULL,
		PRIMARY KEY (subject_id, user_id, role)
	);

	CREATE TABLE IF NOT EXISTS enrollments (
		subject_id BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (subject_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS locations (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		loc_type      TEXT NOT NULL DEFAULT 'room',
		capacity      INT NOT NULL DEFAULT 0 CHECK (capacity >= 0),
		department_id BIGINT REFERENCES departments(id),
		available     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS equipment (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		equip_type    TEXT NOT NULL DEFAULT '',
		total_qty     INT NOT NULL CHECK (total_qty >= 0),
		available_qty INT NOT NULL,
		department_id BIGINT REFERENCES departments(id),
		description   TEXT NOT NULL DEFAULT '',
		image_url     TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (available_qty >= 0 AND available_qty <= total_qty)
	);

	CREATE TABLE IF NOT EXISTS equipment_requests (
		id            BIGSERIAL PRIMARY KEY,
		equipment_id  BIGINT NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
		user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		department_id BIGINT REFERENCES departments(id),
		qty           INT NOT NULL CHECK (qty > 0),
		request_date  DATE NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		decided_by    BIGINT REFERENCES users(id),
		decided_at    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS lab_bookings (
		id            BIGSERIAL PRIMARY KEY,
		lab_id        BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		department_id BIGINT REFERENCES departments(id),
		session_date  DATE NOT NULL,
		start_time    TIME NOT NULL,
		end_time      TIME NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		decided_by    BIGINT REFERENCES users(id),
		decided_at    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_time > start_time)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id           BIGSERIAL PRIMARY KEY,
		subject_id   BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		lecturer_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assistant_id BIGINT REFERENCES users(id),
		location_id  BIGINT NOT NULL REFERENCES locations(id),
		session_date DATE NOT NULL,
		start_time   TIME NOT NULL,
		end_time     TIME NOT NULL,
		status       TEXT NOT NULL DEFAULT 'scheduled',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_time > start_time)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id         BIGSERIAL PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'present',
		scanned_by BIGINT NOT NULL REFERENCES users(id),
		scan_time  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		id         UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_lab_date  ON lab_bookings(lab_id, session_date);
	CREATE INDEX IF NOT EXISTS idx_bookings_user      ON lab_bookings(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_user      ON equipment_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_location  ON sessions(location_id, session_date);
	CREATE INDEX IF NOT EXISTS idx_sessions_lecturer  ON sessions(lecturer_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_session ON attendance_records(session_id);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
