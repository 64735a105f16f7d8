package openmod

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/MRtecno98/afero/sqlitevfs"
	"github.com/MRtecno98/openmod/api"
)

const DatabaseName = "openmod.db"

// SqliteIndex keeps the installed package index in a sqlite database
// living on the context filesystem.
type SqliteIndex struct {
	Name string

	conn *sql.DB
	ctx  *OpenContext

	packages *BiMap[string, string, InstalledPackage]
}

func NewNamedSqliteIndex(name string) *SqliteIndex {
	return &SqliteIndex{
		Name:     name,
		packages: NewPackageBiMap(),
	}
}

func NewSqliteIndex() *SqliteIndex {
	return NewNamedSqliteIndex(DatabaseName)
}

func (db *SqliteIndex) InitializeIndex(ctx *OpenContext) error {
	sqlitevfs.RegisterVFS(ctx.Name, ctx.Fs)

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?vfs=%s", db.Name, ctx.Name))
	if err != nil {
		return err
	}

	db.conn = conn
	db.ctx = ctx

	if err = db.InitializeTables(); err != nil {
		db.CloseIndex()
		return fmt.Errorf("sql: %w", err)
	}

	return nil
}

func (db *SqliteIndex) InitializeTables() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if _, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS packages (
		coordinate VARCHAR(255) PRIMARY KEY,
		name VARCHAR(255),
		version VARCHAR(64),
		provider VARCHAR(255),
		modules TEXT
	);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS packages_name ON packages (name);
	`); err != nil {
		return err
	}

	// We need a transaction to force the database to write the changes
	// if we're using an in-memory or remote filesystem
	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (db *SqliteIndex) LoadPackageIndex() error {
	rows, err := db.conn.Query(`SELECT name, version, provider, modules FROM packages`)
	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var pkg InstalledPackage
		var version, modules string

		if err := rows.Scan(&pkg.Name, &version, &pkg.Provider, &modules); err != nil {
			return err
		}

		ver, err := api.ParseVersion(version)
		if err != nil {
			return fmt.Errorf("index record %s: %w", pkg.Name, err)
		}

		pkg.Version = ver
		if modules != "" {
			pkg.Modules = strings.Split(modules, ",")
		}

		recordPackage(db.packages, pkg)
	}

	return rows.Err()
}

func (db *SqliteIndex) Record(pkg InstalledPackage) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if _, err := tx.Exec(`REPLACE INTO packages
		(coordinate, name, version, provider, modules)
		VALUES (?, ?, ?, ?, ?)`,
		pkg.Coordinate(), pkg.Name, pkg.Version.String(),
		pkg.Provider, strings.Join(pkg.Modules, ",")); err != nil {
		return fmt.Errorf("index save (no data was modified): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("package save: %w", err)
	}

	recordPackage(db.packages, pkg)
	return nil
}

func (db *SqliteIndex) Latest(name string) (InstalledPackage, bool) {
	return db.packages.GetSecond(name)
}

func (db *SqliteIndex) Packages() []InstalledPackage {
	return db.packages.Values()
}

func (db *SqliteIndex) IndexSize() (int64, error) {
	inf, err := db.ctx.Fs.Stat(db.Name)
	if err != nil {
		return -1, nil
	}

	return inf.Size(), nil
}

func (db *SqliteIndex) CleanIndex() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return err
		}
	}

	if err := db.ctx.Fs.Remove(db.Name); err != nil {
		return err
	}

	db.conn = nil
	db.packages = NewPackageBiMap()
	return nil
}

func (db *SqliteIndex) CloseIndex() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}
	}

	db.conn = nil
	db.ctx = nil
	db.packages = nil

	return nil
}
