// Package mariadb provides a MariaDB/MySQL storage backend. Embeddings are
// stored as JSON-encoded float arrays in a TEXT column, which keeps the
// schema compatible with deployments that predate pgvector.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	// Timestamps must scan into time.Time.
	if strings.Contains(dsn, "?") {
		dsn += "&parseTime=true"
	} else {
		dsn += "?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing MariaDB connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the schema if it does not exist.
func (p *Pool) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS classes (
			class_id   VARCHAR(64) PRIMARY KEY,
			school_id  VARCHAR(64) NOT NULL,
			class_name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			student_id VARCHAR(64) PRIMARY KEY,
			school_id  VARCHAR(64) NOT NULL,
			class_id   VARCHAR(64),
			first_name VARCHAR(255) NOT NULL,
			last_name  VARCHAR(255) NOT NULL,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_students_school (school_id)
		)`,
		`CREATE TABLE IF NOT EXISTS face_embeddings (
			id         BIGINT AUTO_INCREMENT PRIMARY KEY,
			student_id VARCHAR(64) NOT NULL,
			embedding  TEXT NOT NULL,
			source     VARCHAR(32) NOT NULL DEFAULT 'enrollment',
			dim        INT NOT NULL DEFAULT 128,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_face_embeddings_student (student_id)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			attendance_id       VARCHAR(64) PRIMARY KEY,
			student_id          VARCHAR(64) NOT NULL,
			school_id           VARCHAR(64) NOT NULL,
			class_id            VARCHAR(64),
			marked_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			status              VARCHAR(32) NOT NULL,
			verification_method VARCHAR(32) NOT NULL DEFAULT 'face',
			confidence_score    DOUBLE,
			INDEX idx_attendance_student (student_id, marked_at),
			INDEX idx_attendance_school (school_id, marked_at)
		)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
