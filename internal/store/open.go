package store

import (
	"fmt"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the repository for driver. For SQLite target is a file path,
// for PostgreSQL a connection URL; the memory driver ignores it.
func Open(driver, target string) (Repository, error) {
	switch driver {
	case DriverSQLite, "":
		s, err := NewSQLite(target)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgres(target)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
