package template

import "fmt"

// Error is implemented by every error the lexer, parser and renderer return,
// so callers can point at the offending line of a design template.
type Error interface {
	error
	Position() Position
}

// located formats msg behind its template position, "file:line:col: msg".
type located struct {
	Pos Position
	Msg string
}

func at(pos Position, format string, args ...any) located {
	return located{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Position returns where in the template the error was detected.
func (e located) Position() Position { return e.Pos }

func (e located) Error() string {
	if e.Pos.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// LexError reports an unterminated tag.
type LexError struct{ located }

// NewLexError creates a LexError at pos.
func NewLexError(pos Position, msg string) *LexError {
	return &LexError{at(pos, "%s", msg)}
}

// ParseError reports a malformed statement.
type ParseError struct{ located }

// NewParseError creates a ParseError at pos.
func NewParseError(pos Position, msg string) *ParseError {
	return &ParseError{at(pos, "%s", msg)}
}

// NewParseErrorf is NewParseError with formatting.
func NewParseErrorf(pos Position, format string, args ...any) *ParseError {
	return &ParseError{at(pos, format, args...)}
}

// RenderError reports a failure while filling in the design namespace,
// usually a Starlark evaluation error kept in Cause.
type RenderError struct {
	located
	Cause error
}

// NewRenderErrorf creates a RenderError without a cause.
func NewRenderErrorf(pos Position, format string, args ...any) *RenderError {
	return &RenderError{located: at(pos, format, args...)}
}

// WrapRenderError records cause as the reason msg failed at pos.
func WrapRenderError(pos Position, msg string, cause error) *RenderError {
	return &RenderError{located: at(pos, "%s", msg), Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.located.Error()
	}
	return fmt.Sprintf("%s: %v", e.located.Error(), e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// UnmatchedBlockError reports a for/if block that is never closed, or a
// closing or continuation tag with nothing to attach to.
type UnmatchedBlockError struct {
	located
	BlockKind StmtKind
}

var unmatchedMessages = map[StmtKind]string{
	StmtFor:    "'for' is never closed by 'endfor'",
	StmtIf:     "'if' is never closed by 'endif'",
	StmtEndFor: "'endfor' has no open 'for'",
	StmtEndIf:  "'endif' has no open 'if'",
	StmtElse:   "'else' has no open 'if'",
	StmtElif:   "'elif' has no open 'if'",
}

// NewUnmatchedBlockError creates an UnmatchedBlockError for a tag of kind.
func NewUnmatchedBlockError(pos Position, kind StmtKind) *UnmatchedBlockError {
	msg, ok := unmatchedMessages[kind]
	if !ok {
		msg = fmt.Sprintf("unmatched %s", kind)
	}
	return &UnmatchedBlockError{located: at(pos, "%s", msg), BlockKind: kind}
}
