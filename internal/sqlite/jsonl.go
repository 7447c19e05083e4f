package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// maxJSONLLine bounds a single record line.
const maxJSONLLine = 1 << 20

// readJSONL reads a JSONL file and returns each non-empty line. Lines that
// are not valid JSON come back as nil entries so callers can count them.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			records = append(records, nil)
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// recordFromJSON decodes one JSONL object into a Record. Keys are matched
// through the criteria aliases, unknown keys are ignored, and numeric values
// such as an unquoted dni are kept verbatim.
func recordFromJSON(raw json.RawMessage) (types.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return types.Record{}, fmt.Errorf("decoding record: %w", err)
	}

	var rec types.Record
	for key, v := range fields {
		col, ok := resolveField(key)
		if !ok {
			continue
		}
		setField(&rec, col, jsonText(v))
	}
	return rec.Trimmed(), nil
}

func jsonText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func setField(rec *types.Record, column, value string) {
	switch column {
	case types.FieldNationalID:
		rec.NationalID = value
	case types.FieldLastName:
		rec.LastName = value
	case types.FieldFirstName:
		rec.FirstName = value
	case types.FieldClass:
		rec.Class = value
	case types.FieldAddress:
		rec.Address = value
	case types.FieldAlternateAddress:
		rec.AlternateAddress = value
	case types.FieldLocality:
		rec.Locality = value
	case types.FieldProvince:
		rec.Province = value
	case types.FieldOccupation:
		rec.Occupation = value
	}
}
