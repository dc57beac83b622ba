// Package query filters and pages in-memory record collections using
// field/operator/value conditions of the form filters[field][$op]=value.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sangkips/salesbook-api/pkg/pagination"
)

// Operator names a comparison applied to a record field
type Operator string

const (
	OpEqualFold    Operator = "eqi"
	OpContainsFold Operator = "containsi"
	OpGTE          Operator = "gte"
	OpLTE          Operator = "lte"
)

// Known reports whether the operator is supported
func (o Operator) Known() bool {
	switch o {
	case OpEqualFold, OpContainsFold, OpGTE, OpLTE:
		return true
	}
	return false
}

// Condition is a single operator/value test on a field
type Condition struct {
	Operator Operator
	Value    string
}

// Filters maps a field name to the conditions that must all hold on it
type Filters map[string][]Condition

// Add appends a condition on field
func (f Filters) Add(field string, op Operator, value string) Filters {
	f[field] = append(f[field], Condition{Operator: op, Value: value})
	return f
}

// Unknown returns the filter keys, in filters[field][$op] form, whose
// operator is not supported. The result is sorted.
func (f Filters) Unknown() []string {
	var keys []string
	for field, conds := range f {
		for _, c := range conds {
			if !c.Operator.Known() {
				keys = append(keys, fmt.Sprintf("filters[%s][$%s]", field, c.Operator))
			}
		}
	}
	sort.Strings(keys)
	return keys
}

var filterKey = regexp.MustCompile(`^filters\[([^\[\]]+)\]\[\$([A-Za-z]+)\]$`)

// ParseValues extracts filters from URL query values. Keys outside the
// filters[field][$op] grammar are ignored; repeated keys add one condition
// per value.
func ParseValues(values url.Values) Filters {
	filters := Filters{}
	for key, vals := range values {
		m := filterKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		for _, v := range vals {
			filters.Add(m[1], Operator(m[2]), v)
		}
	}
	return filters
}

// Match reports whether record satisfies every condition. A field missing
// from the record, or null, fails all of its conditions.
func (f Filters) Match(record map[string]any) bool {
	for field, conds := range f {
		raw, ok := record[field]
		if !ok || raw == nil {
			return false
		}
		actual := stringify(raw)
		for _, c := range conds {
			if !c.test(actual) {
				return false
			}
		}
	}
	return true
}

func (c Condition) test(actual string) bool {
	switch c.Operator {
	case OpEqualFold:
		return strings.EqualFold(actual, c.Value)
	case OpContainsFold:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case OpGTE, OpLTE:
		have, err := parseDate(actual)
		if err != nil {
			return false
		}
		want, err := parseDate(c.Value)
		if err != nil {
			return false
		}
		if c.Operator == OpGTE {
			return !have.Before(want)
		}
		return !have.After(want)
	default:
		return false
	}
}

func parseDate(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Apply filters records and returns the requested page with its metadata.
// Records are compared through their JSON object form, so field names are
// the JSON names.
func Apply[T any](records []T, filters Filters, params *pagination.PaginationParams) ([]T, *pagination.Pagination, error) {
	matched := records
	if len(filters) > 0 {
		matched = make([]T, 0, len(records))
		for _, r := range records {
			fields, err := toFields(r)
			if err != nil {
				return nil, nil, err
			}
			if filters.Match(fields) {
				matched = append(matched, r)
			}
		}
	}

	page, meta := pagination.Paginate(matched, params)
	return page, meta, nil
}

func toFields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("query: encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("query: record is not an object: %w", err)
	}
	return fields, nil
}
