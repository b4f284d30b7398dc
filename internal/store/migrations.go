package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date using the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Notable details are stored as a JSON array in a single text column.

func marshalDetails(details []string) (string, error) {
	if len(details) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("marshal notable details: %w", err)
	}
	return string(raw), nil
}

func unmarshalDetails(raw string) []string {
	if raw == "" {
		return nil
	}
	var details []string
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
