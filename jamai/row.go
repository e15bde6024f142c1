package jamai

import (
	"encoding/json"
	"sort"
	"strings"
)

// UnknownTimestamp is reported for rows that carry neither an updated nor a
// created time.
const UnknownTimestamp = "Unknown Time"

// Row is one table row. The service answers with two different shapes
// depending on the endpoint and table generation: a flat mapping of column
// name to a scalar or a {"value": ...} wrapper, or an object exposing a
// "columns" mapping of column name to a {"text": ...} cell. Row normalizes
// both behind ColumnText so the divergence never leaks past ingestion.
type Row struct {
	fields  map[string]json.RawMessage
	columns map[string]rowCell

	updatedAt string
	createdAt string
}

type rowCell struct {
	Text string `json:"text"`
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["columns"]; ok {
		var columns map[string]rowCell
		if json.Unmarshal(raw, &columns) == nil && columns != nil {
			r.columns = columns
			r.updatedAt = rawString(fields["updated_at"])
			r.createdAt = rawString(fields["created_at"])
			return nil
		}
	}

	r.fields = fields
	return nil
}

// ColumnText returns the text of a column, or "" when the column is absent.
// Output is identical for semantically identical data regardless of which
// wire shape the row arrived in.
func (r *Row) ColumnText(name string) string {
	if r.columns != nil {
		if cell, ok := r.columns[name]; ok {
			return cell.Text
		}
		return ""
	}

	raw, ok := r.fields[name]
	if !ok {
		return ""
	}

	var wrapper struct {
		Value *json.RawMessage `json:"value"`
	}
	if json.Unmarshal(raw, &wrapper) == nil && wrapper.Value != nil {
		return rawString(*wrapper.Value)
	}
	return rawString(raw)
}

// HasColumn reports whether the row carries the named column at all, which
// is distinct from the column holding an empty string.
func (r *Row) HasColumn(name string) bool {
	if r.columns != nil {
		_, ok := r.columns[name]
		return ok
	}
	_, ok := r.fields[name]
	return ok
}

// ColumnNames lists the row's column names in lexicographic order, so the
// "last column" positional fallback is deterministic.
func (r *Row) ColumnNames() []string {
	var names []string
	if r.columns != nil {
		for name := range r.columns {
			names = append(names, name)
		}
	} else {
		for name := range r.fields {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LastColumnText is the positional extraction fallback: the text of the
// lexically-last column, or "" for an empty row.
func (r *Row) LastColumnText() string {
	names := r.ColumnNames()
	if len(names) == 0 {
		return ""
	}
	return r.ColumnText(names[len(names)-1])
}

// Timestamp prefers the row's update time over its creation time and
// degrades to UnknownTimestamp. Values stay strings; ordering downstream is
// lexicographic.
func (r *Row) Timestamp() string {
	if r.columns != nil {
		if r.updatedAt != "" {
			return r.updatedAt
		}
		if r.createdAt != "" {
			return r.createdAt
		}
		return UnknownTimestamp
	}

	if raw, ok := r.fields["Updated at"]; ok {
		return rawString(raw)
	}
	if raw, ok := r.fields["Created at"]; ok {
		return rawString(raw)
	}
	return UnknownTimestamp
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
