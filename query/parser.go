package query

// Parser turns an advanced-search string into a Query, validating every
// clause against a FieldSet. Parsing is left to right, one clause at a
// time; the first error aborts the parse and no partial Query is returned.
type Parser struct {
	lexer  *Lexer
	fields *FieldSet
	tok    Token
}

// Parse parses an advanced-search string. An empty or blank input is not an
// error; it yields an empty Query. On failure the returned error is a
// *Error describing the offending part of the input.
func Parse(fields *FieldSet, input string) (*Query, error) {
	p := &Parser{lexer: NewLexer(input), fields: fields}
	if err := p.next(); err != nil {
		return nil, err
	}

	q := &Query{}
	for p.tok.Type != TokenEOF {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func (p *Parser) next() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) parseClause() (Clause, error) {
	// field name
	if p.tok.Type != TokenWord {
		return Clause{}, &Error{Kind: InvalidSyntax, Literal: p.tok.Literal, Pos: p.tok.Pos}
	}
	name := p.tok.Literal
	if !isIdentifier(name) {
		return Clause{}, &Error{Kind: InvalidSyntax, Literal: name, Pos: p.tok.Pos}
	}
	field, ok := p.fields.Lookup(name)
	if !ok {
		return Clause{}, &Error{Kind: UnknownField, Field: name, Pos: p.tok.Pos}
	}
	if err := p.next(); err != nil {
		return Clause{}, err
	}

	// operator
	if p.tok.Type != TokenOperator {
		return Clause{}, &Error{Kind: InvalidSyntax, Literal: p.tok.Literal, Pos: p.tok.Pos}
	}
	op := Operator(p.tok.Literal)
	if !field.Allows(op) {
		return Clause{}, &Error{Kind: DisallowedOperator, Field: field.Name, Op: op, Pos: p.tok.Pos}
	}
	if err := p.next(); err != nil {
		return Clause{}, err
	}

	// value: bare word or quoted string
	if p.tok.Type != TokenWord && p.tok.Type != TokenString {
		return Clause{}, &Error{Kind: InvalidSyntax, Literal: p.tok.Literal, Pos: p.tok.Pos}
	}
	raw := p.tok.Literal
	value, err := field.ParseValue(raw)
	if err != nil {
		return Clause{}, err
	}
	if err := p.next(); err != nil {
		return Clause{}, err
	}

	return Clause{Field: field.Name, Op: op, Raw: raw, Value: value}, nil
}

// isIdentifier reports whether s can be a field name. Values may contain
// arbitrary word characters but a clause must start with an identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '_':
		default:
			return false
		}
	}
	return true
}
