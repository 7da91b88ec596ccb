package migrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Run applies every pending migration under dir to the database reachable
// at dsn. It is a no-op if the schema is already at the latest version.
// dsn is the same postgres:// connection string used everywhere else; the
// pgx5 driver registers under its own scheme, so it's swapped in here
// rather than threaded through every config caller.
func Run(dsn string, dir string) error {
	migrateDSN := "pgx5://" + strings.TrimPrefix(strings.TrimPrefix(dsn, "postgres://"), "postgresql://")

	m, err := migrate.New(fmt.Sprintf("file://%s", dir), migrateDSN)
	if err != nil {
		return fmt.Errorf("migrator: open: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrator: up: %w", err)
	}
	return nil
}
