package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang-migrate/migrate/v4/database"
)

const migrationsTable = "schema_migrations"

// migrateDriver runs golang-migrate against a connection opened with the
// ncruces driver. It does not own the connection.
type migrateDriver struct {
	conn   *sql.DB
	mu     sync.Mutex
	locked bool
}

var _ database.Driver = (*migrateDriver)(nil)

func newMigrateDriver(conn *sql.DB) (*migrateDriver, error) {
	_, err := conn.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (version INTEGER NOT NULL PRIMARY KEY, dirty INTEGER NOT NULL)`)
	if err != nil {
		return nil, err
	}
	return &migrateDriver{conn: conn}, nil
}

func (d *migrateDriver) Open(string) (database.Driver, error) {
	return nil, errors.New("sqlite migrate driver must be created from an open connection")
}

func (d *migrateDriver) Close() error { return nil }

func (d *migrateDriver) Lock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return database.ErrLocked
	}
	d.locked = true
	return nil
}

func (d *migrateDriver) Unlock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.locked {
		return database.ErrNotLocked
	}
	d.locked = false
	return nil
}

func (d *migrateDriver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if _, err := d.conn.Exec(string(body)); err != nil {
		return &database.Error{OrigErr: err, Query: body}
	}
	return nil
}

func (d *migrateDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.conn.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("starting version transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ` + migrationsTable); err != nil {
		_ = tx.Rollback()
		return err
	}
	if version >= 0 || (version == database.NilVersion && dirty) {
		if _, err := tx.Exec(`INSERT INTO `+migrationsTable+` (version, dirty) VALUES (?, ?)`, version, boolInt(dirty)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (d *migrateDriver) Version() (int, bool, error) {
	var version, dirty int
	err := d.conn.QueryRow(`SELECT version, dirty FROM ` + migrationsTable + ` LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return database.NilVersion, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func (d *migrateDriver) Drop() error {
	rows, err := d.conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := d.conn.Exec(`DROP TABLE IF EXISTS "` + t + `"`); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
