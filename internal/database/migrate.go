package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationSet names one embedded schema.
type MigrationSet string

const (
	// AppMigrations is the client's local venue catalogue.
	AppMigrations MigrationSet = "app"
	// AuthdMigrations is the development auth server's user table.
	AuthdMigrations MigrationSet = "authd"
)

// RunMigrations applies all up migrations of set to the database at dbPath.
// It opens its own handle because closing a migrate instance closes the
// underlying *sql.DB.
func RunMigrations(dbPath string, set MigrationSet) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(set))
	if err != nil {
		return fmt.Errorf("migrations %s: %w", set, err)
	}
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
