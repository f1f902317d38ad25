package query

type TokenType int

const (
	TokenWord     TokenType = iota // field name or bare value
	TokenOperator                  // one of = != : < <= > >=
	TokenString                    // double-quoted value, quotes and escapes resolved
	TokenEOF
)

type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset of the token in the input
}

// Lexer splits an advanced-search string into words, operators and quoted
// strings. Operators use longest match first so that "age<=10" tokenizes as
// "<=" rather than "<" followed by "=10".
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	pos := l.position

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: pos}, nil
	case '"':
		literal, ok := l.readString()
		if !ok {
			return Token{}, &Error{Kind: MalformedQuotedString, Pos: pos}
		}
		return Token{Type: TokenString, Literal: literal, Pos: pos}, nil
	case '=':
		l.readChar()
		return Token{Type: TokenOperator, Literal: "=", Pos: pos}, nil
	case ':':
		l.readChar()
		return Token{Type: TokenOperator, Literal: ":", Pos: pos}, nil
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOperator, Literal: "<=", Pos: pos}, nil
		}
		l.readChar()
		return Token{Type: TokenOperator, Literal: "<", Pos: pos}, nil
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOperator, Literal: ">=", Pos: pos}, nil
		}
		l.readChar()
		return Token{Type: TokenOperator, Literal: ">", Pos: pos}, nil
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOperator, Literal: "!=", Pos: pos}, nil
		}
		return Token{}, &Error{Kind: InvalidSyntax, Pos: pos}
	default:
		return Token{Type: TokenWord, Literal: l.readWord(), Pos: pos}, nil
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isWordChar(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', '"', '\\', '=', '!', '<', '>', ':':
		return false
	}
	return true
}

func (l *Lexer) readWord() string {
	position := l.position
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString consumes a double-quoted string, resolving \" and \\ escapes.
// Reports ok=false if the input ends before the closing quote.
func (l *Lexer) readString() (string, bool) {
	var out []byte
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", false
		case '"':
			l.readChar()
			return string(out), true
		case '\\':
			next := l.peekChar()
			if next == '"' || next == '\\' {
				l.readChar()
			}
			out = append(out, l.ch)
		default:
			out = append(out, l.ch)
		}
	}
}
