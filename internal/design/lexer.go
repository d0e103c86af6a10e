package design

// tokenType identifies a contrast expression token.
type tokenType int

const (
	tokEOF      tokenType = iota
	tokSign               // + or -
	tokNumber             // unsigned decimal coefficient
	tokStar               // *
	tokIdent              // EV name
	tokLag                // [a..b] AFNI lag selector, kept whole
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of expression"
	case tokSign:
		return "sign"
	case tokNumber:
		return "number"
	case tokStar:
		return "'*'"
	case tokIdent:
		return "name"
	case tokLag:
		return "lag selector"
	default:
		return "unknown"
	}
}

type token struct {
	typ tokenType
	val string
	col int // 1-based column of the first byte
}

// exprLexer splits a contrast expression into tokens. Whitespace separates
// tokens and is otherwise ignored; any other character outside the grammar
// is an error.
type exprLexer struct {
	input string
	pos   int
}

func newExprLexer(input string) *exprLexer {
	return &exprLexer{input: input}
}

// tokenize returns every token up to and including tokEOF.
func (l *exprLexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokEOF {
			return tokens, nil
		}
	}
}

func (l *exprLexer) next() (token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, col: l.pos + 1}, nil
	}

	start := l.pos
	ch := l.input[l.pos]
	switch {
	case ch == '+' || ch == '-':
		l.pos++
		return token{typ: tokSign, val: string(ch), col: start + 1}, nil
	case ch == '*':
		l.pos++
		return token{typ: tokStar, val: "*", col: start + 1}, nil
	case ch == '[':
		// The selector body is never parsed; an unclosed group runs to the end.
		for l.pos < len(l.input) && l.input[l.pos] != ']' {
			l.pos++
		}
		if l.pos < len(l.input) {
			l.pos++
		}
		return token{typ: tokLag, val: l.input[start:l.pos], col: start + 1}, nil
	case isDigit(ch) || ch == '.':
		for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
			l.pos++
		}
		return token{typ: tokNumber, val: l.input[start:l.pos], col: start + 1}, nil
	case isIdentStart(ch):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{typ: tokIdent, val: l.input[start:l.pos], col: start + 1}, nil
	default:
		return token{}, exprError(ErrValidation, l.input, start+1, "unexpected character %q", rune(ch))
	}
}

func (l *exprLexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isIdent reports whether s lexes as a single name token.
func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
