// Package sqlite implements the padron record repository on top of the
// provisioned SQLite file. Every operation opens its own connection and
// closes it before returning; no handle is shared between calls.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// Compile-time interface check: Repository must implement Registry.
var _ types.Registry = (*Repository)(nil)

// Ensurer provides the path of a provisioned database file.
type Ensurer interface {
	Ensure(ctx context.Context) (string, error)
}

// Repository runs lookups and upserts against the padron table.
type Repository struct {
	ensurer     Ensurer
	log         zerolog.Logger
	busyTimeout time.Duration

	// writeMu serializes writers inside this process. Separate processes
	// writing the same file are not coordinated.
	writeMu sync.Mutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.busyTimeout = d
		}
	}
}

// NewRepository returns a Repository that provisions through ensurer before
// each connection.
func NewRepository(ensurer Ensurer, log zerolog.Logger, opts ...Option) *Repository {
	r := &Repository{
		ensurer:     ensurer,
		log:         log.With().Str("component", "repository").Logger(),
		busyTimeout: types.DefaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provision makes sure the database file exists.
func (r *Repository) Provision(ctx context.Context) (string, error) {
	return r.ensurer.Ensure(ctx)
}

// Find returns up to types.MaxResults records matching every active
// criterion. Empty criteria return an empty slice without touching storage.
// Failures are logged and degrade to an empty result.
func (r *Repository) Find(ctx context.Context, criteria types.Criteria) []types.Record {
	log := r.opLogger("find")
	recs, err := r.find(ctx, criteria)
	if err != nil {
		log.Error().Err(err).Interface("criteria", criteria).Msg("find failed")
		return []types.Record{}
	}
	log.Debug().Int("results", len(recs)).Msg("find completed")
	return recs
}

func (r *Repository) find(ctx context.Context, criteria types.Criteria) ([]types.Record, error) {
	preds, err := criteriaPredicates(criteria)
	if err != nil {
		return nil, &types.QueryError{Op: "find", Err: err}
	}
	if len(preds) == 0 {
		return []types.Record{}, nil
	}
	query, args := buildSelect(preds, types.MaxResults)
	return r.selectRecords(ctx, "find", query, args)
}

// GetOne returns the first record Find({dni: nationalID}) would return,
// preferring an exact national ID match. A missing record is reported with
// ok == false and a nil error.
func (r *Repository) GetOne(ctx context.Context, nationalID string) (types.Record, bool, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return types.Record{}, false, nil
	}

	query, args := buildLookup(nationalID)
	recs, err := r.selectRecords(ctx, "get", query, args)
	if err != nil {
		log := r.opLogger("get")
		log.Error().Err(err).Str("dni", nationalID).Msg("get failed")
		return types.Record{}, false, err
	}
	if len(recs) == 0 {
		return types.Record{}, false, nil
	}
	return recs[0], true, nil
}

func (r *Repository) selectRecords(ctx context.Context, op, query string, args []any) ([]types.Record, error) {
	recs := []types.Record{}
	err := r.withDB(ctx, func(db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &recs, query, args...); err != nil {
			return &types.QueryError{Op: op, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Save inserts rec or updates the stored record with the same national ID.
// The existence check and the write share one transaction. Any failure rolls
// the transaction back, is logged, and yields false.
func (r *Repository) Save(ctx context.Context, rec types.Record) bool {
	rec = rec.Trimmed()
	log := r.opLogger("save").With().Str("dni", rec.NationalID).Logger()

	if err := rec.Validate(); err != nil {
		log.Error().Err(err).Msg("save rejected")
		return false
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var action upsertAction
	err := r.withTx(ctx, log, "save", rec.NationalID, func(tx *sqlx.Tx) error {
		var err error
		action, err = upsertTx(ctx, tx, rec)
		if err == nil {
			log.Debug().Str("state", string(action)).Msg("write applied")
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("save failed")
		return false
	}
	log.Info().Str("action", string(action)).Msg("record saved")
	return true
}

// Delete removes every record carrying nationalID. It reports false when
// nothing was removed or the transaction failed.
func (r *Repository) Delete(ctx context.Context, nationalID string) bool {
	nationalID = strings.TrimSpace(nationalID)
	log := r.opLogger("delete").With().Str("dni", nationalID).Logger()
	if nationalID == "" {
		log.Error().Err(types.ErrInvalidRecord).Msg("delete rejected")
		return false
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var removed int64
	err := r.withTx(ctx, log, "delete", nationalID, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE dni = ?", nationalID)
		if err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("delete failed")
		return false
	}
	if removed == 0 {
		log.Info().Msg("no record to delete")
		return false
	}
	log.Info().Int64("rows", removed).Msg("record deleted")
	return true
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.withDB(ctx, func(db *sqlx.DB) error {
		if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+tableName); err != nil {
			return &types.QueryError{Op: "count", Err: err}
		}
		return nil
	})
	if err != nil {
		log := r.opLogger("count")
		log.Error().Err(err).Msg("count failed")
		return 0, err
	}
	return n, nil
}

type upsertAction string

const (
	actionInserted upsertAction = "inserted"
	actionUpdated  upsertAction = "updated"
)

// upsertTx decides insert versus update inside tx. Extra rows that share the
// national ID are folded into the oldest one so the business key stays
// unique after the write.
func upsertTx(ctx context.Context, tx *sqlx.Tx, rec types.Record) (upsertAction, error) {
	var ids []int64
	if err := tx.SelectContext(ctx, &ids, "SELECT id FROM "+tableName+" WHERE dni = ? ORDER BY id", rec.NationalID); err != nil {
		return "", fmt.Errorf("checking existing record: %w", err)
	}

	if len(ids) == 0 {
		rec.ID = 0
		if _, err := tx.NamedExecContext(ctx, insertRecord, rec); err != nil {
			return "", fmt.Errorf("inserting record: %w", err)
		}
		return actionInserted, nil
	}

	rec.ID = ids[0]
	if _, err := tx.NamedExecContext(ctx, updateRecord, rec); err != nil {
		return "", fmt.Errorf("updating record: %w", err)
	}
	if len(ids) > 1 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE dni = ? AND id <> ?", rec.NationalID, rec.ID); err != nil {
			return "", fmt.Errorf("removing duplicate records: %w", err)
		}
	}
	return actionUpdated, nil
}

// open provisions the database and returns a single-connection handle with
// the schema applied. The caller closes it.
func (r *Repository) open(ctx context.Context) (*sqlx.DB, error) {
	path, err := r.ensurer.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	dsn, err := fileDSN(path)
	if err != nil {
		return nil, &types.ConnectionError{Path: path, Err: err}
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, &types.ConnectionError{Path: path, Err: err}
	}
	// One connection per handle, so the pragma below applies to every query.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &types.ConnectionError{Path: path, Err: err}
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", r.busyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, &types.ConnectionError{Path: path, Err: fmt.Errorf("setting busy timeout: %w", err)}
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, &types.ConnectionError{Path: path, Err: err}
	}
	return db, nil
}

// fileDSN turns a filesystem path into a SQLite file: URI. The path is
// percent-encoded so '?', '#' and '%' in directory names stay part of the
// file name.
func fileDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving database path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// withDB scopes one connection to fn.
func (r *Repository) withDB(ctx context.Context, fn func(db *sqlx.DB) error) error {
	db, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer r.closeDB(db)
	return fn(db)
}

// withTx runs fn inside a transaction on a fresh connection. fn's error rolls
// the transaction back and comes back as a *types.WriteError.
func (r *Repository) withTx(ctx context.Context, log zerolog.Logger, op, nationalID string, fn func(tx *sqlx.Tx) error) error {
	return r.withDB(ctx, func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return &types.WriteError{Op: op, NationalID: nationalID, Err: fmt.Errorf("beginning transaction: %w", err)}
		}
		log.Debug().Str("state", "transaction_open").Send()

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Warn().Err(rbErr).Msg("rollback failed")
			}
			log.Debug().Str("state", "rolled_back").Send()
			return &types.WriteError{Op: op, NationalID: nationalID, Err: err}
		}

		if err := tx.Commit(); err != nil {
			return &types.WriteError{Op: op, NationalID: nationalID, Err: fmt.Errorf("committing transaction: %w", err)}
		}
		log.Debug().Str("state", "committed").Send()
		return nil
	})
}

func (r *Repository) closeDB(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		r.log.Warn().Err(err).Msg("closing database")
	}
}

// opLogger tags entries of one operation with a fresh UUID v7.
func (r *Repository) opLogger(op string) zerolog.Logger {
	return r.log.With().Str("op", op).Str("op_id", newOpID()).Logger()
}

func newOpID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
