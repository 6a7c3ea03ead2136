package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
)

type PgMarketRepository struct {
	conn *sql.DB
}

func NewPgMarketRepository(dsn string) (*PgMarketRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgMarketRepository{conn: db}, nil
}

func (db *PgMarketRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgMarketRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Migrate applies any pending schema migrations. The DSN must be in URL
// form so it can be shared with the sql driver.
func Migrate(migrationsURL, dsn string) error {
	m, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
