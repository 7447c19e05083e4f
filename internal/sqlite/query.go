package sqlite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// columns is the closed set of filterable record columns, in the order their
// predicates are emitted.
var columns = []string{
	types.FieldNationalID,
	types.FieldLastName,
	types.FieldFirstName,
	types.FieldClass,
	types.FieldAddress,
	types.FieldAlternateAddress,
	types.FieldLocality,
	types.FieldProvince,
	types.FieldOccupation,
}

// fieldAliases maps lower-cased criteria keys to columns.
var fieldAliases = map[string]string{
	"dni":               types.FieldNationalID,
	"nationalid":        types.FieldNationalID,
	"national_id":       types.FieldNationalID,
	"lastname":          types.FieldLastName,
	"last_name":         types.FieldLastName,
	"names":             types.FieldFirstName,
	"firstname":         types.FieldFirstName,
	"first_name":        types.FieldFirstName,
	"clase":             types.FieldClass,
	"class":             types.FieldClass,
	"address":           types.FieldAddress,
	"alternate_address": types.FieldAlternateAddress,
	"alternateaddress":  types.FieldAlternateAddress,
	"locality":          types.FieldLocality,
	"province":          types.FieldProvince,
	"work":              types.FieldOccupation,
	"occupation":        types.FieldOccupation,
}

// resolveField maps a criteria key to its column.
func resolveField(key string) (string, bool) {
	col, ok := fieldAliases[strings.ToLower(strings.TrimSpace(key))]
	return col, ok
}

// predicate is one folded LIKE clause on an allow-listed column.
type predicate struct {
	column string
	value  string
}

// criteriaPredicates turns the active criteria into predicates ordered by
// column. Values with no searchable text are dropped. It returns
// ErrInvalidCriteria for keys outside the allow-list.
func criteriaPredicates(c types.Criteria) ([]predicate, error) {
	byColumn := make(map[string][]string)
	for key, value := range c.Active() {
		col, ok := resolveField(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidCriteria, key)
		}
		// A value of only combining marks folds to nothing and would match
		// every row.
		if len(strings.Fields(foldText(value))) == 0 {
			continue
		}
		byColumn[col] = append(byColumn[col], value)
	}

	var preds []predicate
	for _, col := range columns {
		values := byColumn[col]
		sort.Strings(values)
		for _, v := range values {
			preds = append(preds, predicate{column: col, value: v})
		}
	}
	return preds, nil
}

// buildSelect renders a bounded SELECT over padron. All values are bound as
// parameters; only allow-listed column names reach the query text.
func buildSelect(preds []predicate, limit int) (string, []any) {
	var conditions []string
	var args []any
	for _, p := range preds {
		conditions = append(conditions, "fold("+p.column+`) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(p.value))
	}

	query := "SELECT " + recordColumns + " FROM " + tableName
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)
	return query, args
}

// buildLookup renders the GetOne query: the Find predicate on dni alone,
// with a row whose dni equals nationalID ranked ahead of partial matches.
func buildLookup(nationalID string) (string, []any) {
	query := "SELECT " + recordColumns + " FROM " + tableName +
		` WHERE fold(dni) LIKE ? ESCAPE '\' ORDER BY (dni = ?) DESC, id LIMIT 1`
	return query, []any{likePattern(nationalID), nationalID}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern folds value, escapes LIKE metacharacters and joins its words
// with %, so "Juan Carlos" becomes "%juan%carlos%".
func likePattern(value string) string {
	words := strings.Fields(foldText(value))
	for i, w := range words {
		words[i] = likeEscaper.Replace(w)
	}
	return "%" + strings.Join(words, "%") + "%"
}

// ResolveField reports the column a criteria key or alias refers to.
func ResolveField(key string) (string, bool) {
	return resolveField(key)
}
