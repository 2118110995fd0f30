package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"slices"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Run applies the embedded migrations not yet recorded in schema_migrations,
// in lexicographic order, each in its own transaction.
func Run(db *sql.DB) error {
	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied, err := Applied(db)
	if err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if slices.Contains(applied, name) {
			continue
		}
		if err := apply(db, name); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *sql.DB, name string) error {
	data, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(data)); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("recording %s: %w", name, err)
	}
	return tx.Commit()
}

// Applied returns the names of the recorded migrations in order.
func Applied(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM schema_migrations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning migration name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
