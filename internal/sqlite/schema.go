package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const tableName = "padron"

// Schema DDL. Bundled datasets already carry the table; the statements only
// fill in what an empty or older file lacks.
const (
	createPadron = `CREATE TABLE IF NOT EXISTS padron (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dni TEXT,
    lastname TEXT,
    names TEXT,
    clase TEXT,
    address TEXT,
    alternate_address TEXT,
    locality TEXT,
    province TEXT,
    work TEXT
);`

	idxPadronDNI = `CREATE INDEX IF NOT EXISTS idx_padron_dni ON padron(dni);`
)

// schemaDDL lists the statements applied on every open.
var schemaDDL = []string{
	createPadron,
	idxPadronDNI,
}

// migrate applies schemaDDL and adds any record column missing from an older
// bundled table.
func migrate(ctx context.Context, db *sqlx.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	var present []string
	if err := db.SelectContext(ctx, &present, "SELECT name FROM pragma_table_info('"+tableName+"')"); err != nil {
		return fmt.Errorf("reading table info: %w", err)
	}
	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}
	for _, col := range columns {
		if have[col] {
			continue
		}
		// col comes from the fixed allow-list, never from input.
		if _, err := db.ExecContext(ctx, "ALTER TABLE "+tableName+" ADD COLUMN "+col+" TEXT"); err != nil {
			return fmt.Errorf("adding column %s: %w", col, err)
		}
	}
	return nil
}

// recordColumns is the select list. NULL text reads back as "".
const recordColumns = `COALESCE(id, rowid) AS id,
    COALESCE(dni, '') AS dni,
    COALESCE(lastname, '') AS lastname,
    COALESCE(names, '') AS names,
    COALESCE(clase, '') AS clase,
    COALESCE(address, '') AS address,
    COALESCE(alternate_address, '') AS alternate_address,
    COALESCE(locality, '') AS locality,
    COALESCE(province, '') AS province,
    COALESCE(work, '') AS work`

const (
	insertRecord = `INSERT INTO padron (dni, lastname, names, clase, address, alternate_address, locality, province, work)
VALUES (:dni, :lastname, :names, :clase, :address, :alternate_address, :locality, :province, :work)`

	updateRecord = `UPDATE padron SET
    dni = :dni,
    lastname = :lastname,
    names = :names,
    clase = :clase,
    address = :address,
    alternate_address = :alternate_address,
    locality = :locality,
    province = :province,
    work = :work
WHERE id = :id`
)
