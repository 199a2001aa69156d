// Package sqlite opens the embedded database behind the sample
// datasets. Two drivers are supported:
//
//   - Default: pure Go modernc.org/sqlite, no CGO required.
//   - With -tags cgo_sqlite and CGO_ENABLED=1: mattn/go-sqlite3.
//
// The registered driver name differs between the two, so always open
// databases through this package instead of sql.Open.
package sqlite

import (
	"database/sql"
	"fmt"
)

// DriverName returns the registered SQL driver name.
func DriverName() string {
	return driverName
}

// DriverType identifies the implementation: "purego" or "cgo".
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO implementation is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database with the selected driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenMemory opens a private in-memory database. The connection pool is
// pinned to a single connection: every pooled connection to :memory:
// would otherwise get its own empty database.
func OpenMemory() (*sql.DB, error) {
	db, err := Open(":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenReadOnly opens an existing database file read-only.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(path + "?mode=ro")
}

// MustOpen opens a database and panics on error. Intended for tests
// and initialization paths where failure is unrecoverable.
func MustOpen(dataSourceName string) *sql.DB {
	db, err := Open(dataSourceName)
	if err != nil {
		panic(fmt.Sprintf("sqlite: failed to open %s: %v", dataSourceName, err))
	}
	return db
}

// Info describes the active driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the active driver configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
