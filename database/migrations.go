package database

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTempDir writes the session store migrations into a new temporary directory so the
// golang-migrate file source can read them from a single binary. The caller removes the directory.
func MigrationsTempDir() (string, error) {
	dir, err := os.MkdirTemp("", "cargo-migrations-*")
	if err != nil {
		return "", err
	}

	if err := copyMigrations(dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	return dir, nil
}

func copyMigrations(dir string) error {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		// embed paths always use forward slashes.
		content, err := migrationsFS.ReadFile(path.Join(migrationsDir, entry.Name()))
		if err != nil {
			return err
		}

		dst := filepath.Join(dir, entry.Name())
		if err := os.WriteFile(dst, content, 0600); err != nil {
			return fmt.Errorf("failed to write migration %q: %w", dst, err)
		}
	}

	return nil
}
