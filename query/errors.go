package query

import "fmt"

type ErrorKind int

const (
	UnknownField ErrorKind = iota
	DisallowedOperator
	InvalidLiteral
	MalformedQuotedString
	InvalidSyntax
)

// Error describes why a query string was rejected. The whole query is
// rejected on the first error; callers display Error() next to the search
// box verbatim.
type Error struct {
	Kind    ErrorKind
	Field   string
	Op      Operator
	Literal string
	Pos     int
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownField:
		return fmt.Sprintf("unknown field %q", e.Field)
	case DisallowedOperator:
		return fmt.Sprintf("invalid operator %q for field %q", string(e.Op), e.Field)
	case InvalidLiteral:
		return fmt.Sprintf("unknown value %q for field %q", e.Literal, e.Field)
	case MalformedQuotedString:
		return fmt.Sprintf("unterminated quoted string at position %d", e.Pos)
	default:
		return "invalid syntax for query"
	}
}
