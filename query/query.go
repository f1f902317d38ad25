package query

import "strings"

// Operator is one of the seven comparison operators of the search grammar.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpContains     Operator = ":"
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// Clause is a single field/operator/value condition. Raw is the literal
// exactly as the user wrote it (quotes removed); Value is the typed value
// produced by the field's ParseValue.
type Clause struct {
	Field string
	Op    Operator
	Raw   string
	Value interface{}
}

// Query is an ordered flat conjunction of clauses. An empty Query matches
// everything. There is no OR, grouping or nesting.
type Query struct {
	Clauses []Clause
}

func (q *Query) Empty() bool {
	return q == nil || len(q.Clauses) == 0
}

// String re-serializes the query in the advanced-search syntax. Parsing the
// result against the same field set reproduces an equal Query.
func (q *Query) String() string {
	if q == nil {
		return ""
	}
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (c Clause) String() string {
	return c.Field + string(c.Op) + quoteValue(c.Raw)
}

// quoteValue wraps a literal in double quotes when the bare form would not
// survive re-tokenization, escaping backslashes and quotes.
func quoteValue(s string) string {
	if !needsQuotes(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\n\r\"\\=!<>:")
}
