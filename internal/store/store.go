// Package store owns the lifecycle of the database handle: opened once by
// the composition root, injected into repositories, closed at shutdown.
package store

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"librarymanager/internal/config"
)

// Open connects to postgres using cfg and verifies the connection with a
// ping. When the settings file omits the password and stdin is a terminal,
// the user is prompted for it with echo disabled.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Password == "" && term.IsTerminal(int(syscall.Stdin)) {
		pw, err := promptPassword(cfg)
		if err != nil {
			return nil, err
		}
		cfg.Password = pw
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database %s@%s: %w", cfg.User, cfg.Host, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get generic DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database %s@%s: %w", cfg.User, cfg.Host, err)
	}
	return db, nil
}

// Close releases the underlying connection pool. Calling it again after a
// successful close is harmless.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func promptPassword(cfg config.DatabaseConfig) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", cfg.User, cfg.Host)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
