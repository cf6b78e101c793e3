package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/database/mariadb"
	"github.com/tkaraca/facegate/internal/database/postgres"
)

// attendanceStore combines the read and write sides of attendance storage.
type attendanceStore interface {
	database.AttendanceWriter
	database.AttendanceReader
}

// storageBackends bundles the repositories so commands work the same over
// PostgreSQL and MariaDB.
type storageBackends struct {
	embeddings database.EmbeddingWriter
	attendance attendanceStore
	students   database.StudentStore
	close      func() error
}

// openStorage connects to the configured database backend and runs
// migrations. MariaDB is selected when MARIADB_DSN is set, PostgreSQL
// otherwise.
func openStorage(cfg *config.Config) (*storageBackends, error) {
	if cfg.Database.MariaDBDSN != "" {
		pool, err := mariadb.NewPool(cfg.Database.MariaDBDSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to MariaDB: %w", err)
		}
		if err := pool.Migrate(context.Background()); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("migrating MariaDB schema: %w", err)
		}
		fmt.Printf("Using MariaDB backend\n")

		return &storageBackends{
			embeddings: mariadb.NewEmbeddingRepository(pool),
			attendance: mariadb.NewAttendanceRepository(pool),
			students:   mariadb.NewStudentRepository(pool),
			close:      pool.Close,
		}, nil
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL or MARIADB_DSN environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	pool := postgres.GetGlobalPool()
	fmt.Printf("Using PostgreSQL backend\n")

	return &storageBackends{
		embeddings: postgres.NewEmbeddingRepository(pool),
		attendance: postgres.NewAttendanceRepository(pool),
		students:   postgres.NewStudentRepository(pool),
		close:      pool.Close,
	}, nil
}
