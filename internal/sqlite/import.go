package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// Import upserts every record of the JSONL file at path inside a single
// transaction. Malformed lines and records without a national ID are
// skipped; any write failure rolls back the whole file.
func (r *Repository) Import(ctx context.Context, path string) (types.ImportResult, error) {
	log := r.opLogger("import").With().Str("path", path).Logger()

	lines, err := readJSONL(path)
	if err != nil {
		log.Error().Err(err).Msg("import read failed")
		return types.ImportResult{}, &types.WriteError{Op: "import", Err: err}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var res types.ImportResult
	err = r.withTx(ctx, log, "import", "", func(tx *sqlx.Tx) error {
		res = types.ImportResult{Read: len(lines)}
		for i, raw := range lines {
			if raw == nil {
				res.Skipped++
				continue
			}
			rec, err := recordFromJSON(raw)
			if err != nil || rec.Validate() != nil {
				res.Skipped++
				continue
			}
			action, err := upsertTx(ctx, tx, rec)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			switch action {
			case actionInserted:
				res.Inserted++
			case actionUpdated:
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return types.ImportResult{Read: len(lines)}, err
	}

	log.Info().
		Int("read", res.Read).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Msg("import completed")
	return res, nil
}
