// Package query turns URL query strings into a store-agnostic description of a
// filtered, sorted, projected and paginated collection read.
//
//	GET /jobs?status=pending&createdAt[gte]=2024-01-01T00:00:00Z&sort=-createdAt,company&fields=company,position&page=2&limit=20
//
// Each store backend translates a Query into its own dialect.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 100
	DefaultSort  = "-createdAt"

	// MaxPage keeps Skip within an int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Operator is a comparison applied by a filter.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

var operators = map[string]Operator{
	"ne":  OpNe,
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// FieldType decides how raw query values are converted.
type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
	Time
)

// Schema lists the fields a collection may be filtered, sorted and projected on.
type Schema map[string]FieldType

var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

type Filter struct {
	Field string
	Op    Operator
	Value any
}

type SortField struct {
	Field string
	Desc  bool
}

type Query struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

// Skip returns the number of documents preceding the requested page.
func (q *Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Error is returned for malformed query strings.
type Error struct {
	Param  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Reason)
}

// Default returns the query used when no parameters are given.
func Default() *Query {
	return &Query{
		Sort:  []SortField{{Field: "createdAt", Desc: true}},
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}
}

// Parse builds a Query from values. Filters on fields missing from schema are
// dropped; sort and projection fields missing from schema are dropped too.
func Parse(values url.Values, schema Schema) (*Query, error) {
	q := Default()

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, &Error{Param: "page", Reason: "must be a positive integer"}
		}
		if page > MaxPage {
			return nil, &Error{Param: "page", Reason: "is too large"}
		}
		q.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, &Error{Param: "limit", Reason: "must be a positive integer"}
		}
		q.Limit = min(limit, MaxLimit)
	}

	if raw := values.Get("sort"); raw != "" {
		q.Sort = parseSort(raw, schema)
		if len(q.Sort) == 0 {
			q.Sort = Default().Sort
		}
	}

	if raw := values.Get("fields"); raw != "" {
		for _, f := range splitList(raw) {
			if _, ok := schema[f]; ok {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	// Map iteration order is random; sort keys so translated queries are stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}

		field, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}

		fieldType, ok := schema[field]
		if !ok {
			continue
		}

		for _, raw := range values[key] {
			value, err := convert(raw, fieldType)
			if err != nil {
				return nil, &Error{Param: key, Reason: err.Error()}
			}
			q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
		}
	}

	return q, nil
}

func splitKey(key string) (string, Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", &Error{Param: key, Reason: "malformed operator"}
	}

	op, ok := operators[key[open+1:len(key)-1]]
	if !ok {
		return "", "", &Error{Param: key, Reason: "unsupported operator"}
	}

	return key[:open], op, nil
}

func parseSort(raw string, schema Schema) []SortField {
	var fields []SortField
	for _, part := range splitList(raw) {
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if _, ok := schema[name]; !ok {
			continue
		}
		fields = append(fields, SortField{Field: name, Desc: desc})
	}
	return fields
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func convert(raw string, fieldType FieldType) (any, error) {
	switch fieldType {
	case Int:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return v, nil
	case Float:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return v, nil
	case Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return v, nil
	case Time:
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an RFC3339 timestamp", raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
