package stores

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a single keyed record: a mapping from field name to value.
// Records are stored as JSON documents; values round-trip with JSON
// semantics (numbers decode as float64).
type Record map[string]any

// recordColumn is the table column holding the full JSON document. The
// underscore prefix keeps it out of the identifier space schema
// validation permits for declared fields.
const recordColumn = "_record"

// canonicalKey converts a primary-key value to its canonical string
// form. Strings pass through; integer and float values render in
// decimal form. Anything else is not a valid key.
func canonicalKey(v any) (string, error) {
	switch k := v.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case int32:
		return strconv.FormatInt(int64(k), 10), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case float32:
		return canonicalKey(float64(k))
	case float64:
		// JSON decodes all numbers as float64; keep whole values in
		// integer form so keys compare equal across encodings.
		if k == math.Trunc(k) && !math.IsInf(k, 0) {
			return strconv.FormatInt(int64(k), 10), nil
		}
		return strconv.FormatFloat(k, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, v)
	}
}

// columnValue converts a record field value into a form the SQL driver
// accepts. Scalars bind directly; composite values are stored as JSON
// text so they remain comparable and indexable.
func columnValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, uint64, float32, float64, []byte:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column value: %w", err)
		}
		return string(data), nil
	}
}

// quoteIdent quotes an identifier for inclusion in SQL text. Store and
// column names flow from caller-supplied schemas, so they are always
// quoted rather than trusted.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// isConstraintErr reports whether the engine rejected a statement due
// to a constraint, such as a unique-index violation.
func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
