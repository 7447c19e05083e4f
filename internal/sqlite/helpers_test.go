package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/padron/internal/provision"
	"github.com/mesh-intelligence/padron/pkg/types"
)

// buildAsset writes a bundled dataset holding recs, plus any extra DDL, and
// returns its path.
func buildAsset(t *testing.T, recs []types.Record, extraDDL ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets", "padron.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	dsn, err := fileDSN(path)
	require.NoError(t, err)
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, ddl := range schemaDDL {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	for _, rec := range recs {
		_, err := db.NamedExec(insertRecord, rec)
		require.NoError(t, err)
	}
	for _, ddl := range extraDDL {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	return path
}

// newTestRepository returns a repository whose writable copy lives in a
// fresh directory and is provisioned from asset.
func newTestRepository(t *testing.T, asset string) (*Repository, string) {
	t.Helper()
	target := filepath.Join(t.TempDir(), "SQLite", "padron.db")
	p := provision.New(target, provision.FileAsset(asset), zerolog.Nop())
	return NewRepository(p, zerolog.Nop()), target
}

// countingEnsurer records how often storage was reached.
type countingEnsurer struct {
	next  Ensurer
	calls atomic.Int32
}

func (c *countingEnsurer) Ensure(ctx context.Context) (string, error) {
	c.calls.Add(1)
	return c.next.Ensure(ctx)
}

func sampleRecords() []types.Record {
	return []types.Record{
		{NationalID: "20123456", LastName: "PÉREZ", FirstName: "Juan Carlos", Class: "1980", Address: "San Martín 123", Locality: "Rosario", Province: "Santa Fe", Occupation: "Docente"},
		{NationalID: "20999888", LastName: "Perez", FirstName: "María", Class: "1985", Address: "Belgrano 45", Locality: "Córdoba", Province: "Córdoba"},
		{NationalID: "30111222", LastName: "Muñoz", FirstName: "Ana", Class: "1990", Address: "Mitre 9", Locality: "Mendoza", Province: "Mendoza", Occupation: "Médica"},
		{NationalID: "30444555", LastName: "Gómez", FirstName: "Carlos Juan", Class: "1979", Address: "Sarmiento 1", Locality: "Rosario", Province: "Santa Fe"},
		{NationalID: "35777888", LastName: "Benítez", FirstName: "Juan  Carlos", Class: "1992", Address: "Alem 300", Locality: "Paraná", Province: "Entre Ríos"},
	}
}
