package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MatchFunc reports whether a JSON-encoded record satisfies a query.
type MatchFunc func(record []byte) (bool, error)

type compiledClause func(data interface{}) bool

// MatchFunc compiles the query into a predicate over JSON records. Each
// clause resolves its field's attribute path inside the record; a record
// that is missing the attribute simply fails that clause. Clauses are
// conjoined, so an empty query matches every record.
func (q *Query) MatchFunc(fields *FieldSet) MatchFunc {
	clauses := make([]compiledClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		clauses = append(clauses, compileClause(c, fields))
	}

	return func(record []byte) (bool, error) {
		var data interface{}
		if err := json.Unmarshal(record, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal record: %v", err)
		}
		for _, clause := range clauses {
			if !clause(data) {
				return false, nil
			}
		}
		return true, nil
	}
}

func compileClause(c Clause, fields *FieldSet) compiledClause {
	field, ok := fields.Lookup(c.Field)
	if !ok {
		return func(interface{}) bool { return false }
	}
	path := field.attrPath()

	return func(data interface{}) bool {
		value, err := getField(data, path)
		if err != nil {
			return false
		}
		return evaluateClause(field, c, value)
	}
}

func evaluateClause(field *Field, c Clause, value interface{}) bool {
	switch field.Type {
	case Text, Choice:
		s, ok := value.(string)
		if !ok {
			return false
		}
		return compareText(c.Op, s, c.Value.(string))
	case Number:
		f, err := toFloat64(value)
		if err != nil {
			return false
		}
		return compareOrdered(c.Op, f, c.Value.(float64))
	case Date:
		s, ok := value.(string)
		if !ok {
			return false
		}
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return false
		}
		want := c.Value.(time.Time)
		switch c.Op {
		case OpEqual:
			return d.Equal(want)
		case OpNotEqual:
			return !d.Equal(want)
		case OpLess:
			return d.Before(want)
		case OpLessEqual:
			return !d.After(want)
		case OpGreater:
			return d.After(want)
		case OpGreaterEqual:
			return !d.Before(want)
		}
		return false
	case Boolean:
		b, ok := value.(bool)
		if !ok {
			return false
		}
		want := c.Value.(bool)
		if c.Op == OpNotEqual {
			return b != want
		}
		return b == want
	}
	return false
}

// compareText applies an operator to strings. Equality and substring are
// case-insensitive; ordering uses the raw byte order.
func compareText(op Operator, have, want string) bool {
	switch op {
	case OpEqual:
		return strings.EqualFold(have, want)
	case OpNotEqual:
		return !strings.EqualFold(have, want)
	case OpContains:
		return strings.Contains(strings.ToLower(have), strings.ToLower(want))
	case OpLess:
		return have < want
	case OpLessEqual:
		return have <= want
	case OpGreater:
		return have > want
	case OpGreaterEqual:
		return have >= want
	}
	return false
}

func compareOrdered(op Operator, have, want float64) bool {
	switch op {
	case OpEqual:
		return have == want
	case OpNotEqual:
		return have != want
	case OpLess:
		return have < want
	case OpLessEqual:
		return have <= want
	case OpGreater:
		return have > want
	case OpGreaterEqual:
		return have >= want
	}
	return false
}

func getField(data interface{}, path []string) (interface{}, error) {
	current := data
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot access field %s on %T", key, current)
		}
		current, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("field %s not found", key)
		}
	}
	return current, nil
}

func toFloat64(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}
