// Package dbconfig loads gateway configuration rows from a shared
// PostgreSQL database. The database is optional: deployments that set
// DATABASE_URL get their endpoint list and token registry extended from
// the endpoints and tokens tables.
package dbconfig

import (
	"database/sql"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

type DBConfig struct {
	db *sql.DB
}

// New opens a connection pool for the provided DSN and verifies it with
// a ping.
//
// Parameters:
// - dsn: the PostgreSQL connection string.
//
// Returns:
// - *DBConfig: a pointer to the newly created DBConfig instance.
// - error: an error if the database is unreachable.
func New(dsn string) (*DBConfig, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "open: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "ping: %v", err)
	}

	return &DBConfig{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *DBConfig) Close() error {
	return r.db.Close()
}
