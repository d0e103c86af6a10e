package template

import (
	"strings"
	"unicode/utf8"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for template token types.
const (
	TokenText    TokenType = iota // Literal design text
	TokenExpr                     // Expression content (between {{ and }})
	TokenStmt                     // Statement content (between {* and *})
	TokenComment                  // Comment content (between {# and #})
	TokenEOF                      // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "TEXT"
	case TokenExpr:
		return "EXPR"
	case TokenStmt:
		return "STMT"
	case TokenComment:
		return "COMMENT"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// Lexer tokenizes a template string.
type Lexer struct {
	input    string
	file     string
	pos      int // current position in input
	line     int // current line number (1-based)
	col      int // current column number (1-based)
	lastLine int // line at start of current token
	lastCol  int // column at start of current token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input, file string) *Lexer {
	return &Lexer{
		input: input,
		file:  file,
		pos:   0,
		line:  1,
		col:   1,
	}
}

// Tokenize converts the input into a slice of tokens. A statement or comment
// tag that is the only thing on its line takes the whole line with it.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return trimStandalone(tokens), nil
}

// nextToken returns the next token from the input.
func (l *Lexer) nextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position()}, nil
	}

	// Check for expression start {{
	if l.matchString("{{") {
		return l.scanExpression()
	}

	// Check for statement start {*
	if l.matchString("{*") {
		return l.scanStatement()
	}

	// Check for comment start {#
	if l.matchString("{#") {
		return l.scanComment()
	}

	// Otherwise, scan text until we hit a delimiter or EOF
	return l.scanText()
}

// scanText scans literal text until a delimiter or EOF.
func (l *Lexer) scanText() (Token, error) {
	l.markStart()
	start := l.pos

	for l.pos < len(l.input) {
		// Check for expression or statement start
		if l.atDelimiter() {
			break
		}
		l.advance()
	}

	if l.pos == start {
		// No text consumed, something is wrong
		return Token{}, NewLexError(l.position(), "unexpected state in lexer")
	}

	return Token{
		Type:  TokenText,
		Value: l.input[start:l.pos],
		Pos:   l.startPosition(),
	}, nil
}

// scanExpression scans a {{ expr }} expression.
func (l *Lexer) scanExpression() (Token, error) {
	l.markStart()

	// Skip {{
	l.pos += 2
	l.col += 2

	// Skip leading whitespace
	l.skipWhitespace()

	exprStart := l.pos
	depth := 0 // Track nested braces

	for l.pos < len(l.input) {
		if l.matchString("}}") && depth == 0 {
			// Found closing delimiter
			exprEnd := l.pos

			// Trim trailing whitespace from expression
			expr := strings.TrimSpace(l.input[exprStart:exprEnd])

			// Skip }}
			l.pos += 2
			l.col += 2

			return Token{
				Type:  TokenExpr,
				Value: expr,
				Pos:   l.startPosition(),
			}, nil
		}

		// Track nested braces to handle {{ in strings or dicts
		r := l.peek()
		if r == '{' {
			depth++
		} else if r == '}' && depth > 0 {
			depth--
		}

		l.advance()
	}

	return Token{}, NewLexError(l.startPosition(), "unclosed expression: missing '}}'")
}

// scanStatement scans a {* stmt *} statement.
func (l *Lexer) scanStatement() (Token, error) {
	return l.scanDelimited(TokenStmt, "*}", "unclosed statement: missing '*}'")
}

// scanComment scans a {# comment #}.
func (l *Lexer) scanComment() (Token, error) {
	return l.scanDelimited(TokenComment, "#}", "unclosed comment: missing '#}'")
}

// scanDelimited scans from an opening two-byte delimiter up to closer and
// returns the trimmed content as a token of type typ.
func (l *Lexer) scanDelimited(typ TokenType, closer, unclosed string) (Token, error) {
	l.markStart()

	// Skip the opening delimiter
	l.pos += 2
	l.col += 2

	l.skipWhitespace()

	start := l.pos

	for l.pos < len(l.input) {
		if l.matchString(closer) {
			content := strings.TrimSpace(l.input[start:l.pos])

			l.pos += len(closer)
			l.col += len(closer)

			return Token{
				Type:  typ,
				Value: content,
				Pos:   l.startPosition(),
			}, nil
		}
		l.advance()
	}

	return Token{}, NewLexError(l.startPosition(), unclosed)
}

// Helper methods

// peek returns the current rune without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// atDelimiter reports whether a tag opens at the current position.
func (l *Lexer) atDelimiter() bool {
	return l.matchString("{{") || l.matchString("{*") || l.matchString("{#")
}

// matchString checks if the input at current position matches s.
func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r := l.peek()
		if r != ' ' && r != '\t' {
			break
		}
		l.advance()
	}
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

// startPosition returns the position where the current token started.
func (l *Lexer) startPosition() Position {
	return Position{File: l.file, Line: l.lastLine, Column: l.lastCol}
}

// trimStandalone removes the indentation before, and the line break after,
// every statement or comment tag that sits alone on its line. Text tokens
// left empty are dropped.
func trimStandalone(tokens []Token) []Token {
	type cut struct{ head, tail int }
	cuts := make([]cut, len(tokens))

	for i, tok := range tokens {
		if tok.Type != TokenStmt && tok.Type != TokenComment {
			continue
		}
		tail, okBefore := standaloneBefore(tokens, i)
		head, okAfter := standaloneAfter(tokens, i)
		if !okBefore || !okAfter {
			continue
		}
		if i > 0 {
			cuts[i-1].tail = tail
		}
		if i+1 < len(tokens) {
			cuts[i+1].head = head
		}
	}

	out := tokens[:0]
	for i, tok := range tokens {
		if tok.Type == TokenText {
			c := cuts[i]
			end := len(tok.Value) - c.tail
			if c.head > end {
				end = c.head
			}
			tok.Value = tok.Value[c.head:end]
			if tok.Value == "" {
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// standaloneBefore reports whether only blanks separate tag i from the start
// of its line, and how many trailing bytes of the preceding text to drop.
func standaloneBefore(tokens []Token, i int) (int, bool) {
	if i == 0 {
		return 0, true
	}
	prev := tokens[i-1]
	if prev.Type != TokenText {
		return 0, false
	}
	nl := strings.LastIndexByte(prev.Value, '\n')
	rest := prev.Value[nl+1:]
	if !isBlank(rest) {
		return 0, false
	}
	if nl < 0 && i-1 != 0 {
		return 0, false
	}
	return len(rest), true
}

// standaloneAfter reports whether only blanks follow tag i up to the end of
// its line, and how many leading bytes of the following text to drop.
func standaloneAfter(tokens []Token, i int) (int, bool) {
	next := tokens[i+1]
	if next.Type == TokenEOF {
		return 0, true
	}
	if next.Type != TokenText {
		return 0, false
	}
	nl := strings.IndexByte(next.Value, '\n')
	if nl < 0 {
		if isBlank(next.Value) && tokens[i+2].Type == TokenEOF {
			return len(next.Value), true
		}
		return 0, false
	}
	if !isBlank(strings.TrimSuffix(next.Value[:nl], "\r")) {
		return 0, false
	}
	return nl + 1, true
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t") == ""
}
