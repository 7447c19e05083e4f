package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	msqlite "modernc.org/sqlite"
)

// fold(x) is available in every connection opened by this package. It
// case-folds text and strips diacritics so "PÉREZ" and "perez" compare equal
// under LIKE, which on its own only folds ASCII.
func init() {
	msqlite.MustRegisterDeterministicScalarFunction("fold", 1, foldFunc)
}

func foldFunc(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return foldText(v), nil
	case []byte:
		return foldText(string(v)), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return foldText(fmt.Sprint(v)), nil
	}
}

// foldText removes combining marks and applies Unicode case folding.
// Transformers are stateful, so each call builds its own.
func foldText(s string) string {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(strip, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}
