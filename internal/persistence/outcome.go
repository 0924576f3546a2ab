package persistence

import (
	"strconv"
	"strings"
	"time"
)

// Row is one result row keyed by column name. Values arrive either as pgx
// native Go types or as decoded JSON from the HTTP transport, so the typed
// accessors coerce both representations.
type Row map[string]any

// Outcome is the normalized result of one statement, identical for both
// transports.
type Outcome struct {
	Rows     []Row
	RowCount int
	Command  string
}

// First returns the first row, or nil when the result is empty.
func (o *Outcome) First() Row {
	if o == nil || len(o.Rows) == 0 {
		return nil
	}
	return o.Rows[0]
}

// String returns the column as a string, or "" when absent or null.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int64 coerces the column to int64. JSON numbers arrive as float64.
func (r Row) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		parsed, _ := strconv.ParseInt(v, 10, 64)
		return parsed
	default:
		return 0
	}
}

// Float64 coerces the column to float64.
func (r Row) Float64(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		parsed, _ := strconv.ParseFloat(v, 64)
		return parsed
	default:
		return 0
	}
}

// Bool coerces the column to bool.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return v == "t" || v == "true"
	default:
		return false
	}
}

// Time coerces the column to time.Time, accepting RFC3339 strings from the
// HTTP transport.
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TimePtr returns the column as *time.Time, nil when absent or null.
func (r Row) TimePtr(key string) *time.Time {
	if v, ok := r[key]; !ok || v == nil {
		return nil
	}
	t := r.Time(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// IsNull reports whether the column is absent or SQL NULL.
func (r Row) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// commandVerb extracts the statement's leading keyword, upper-cased.
func commandVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
