package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokSpec struct {
	typ TokenType
	val string
}

func assertTokens(t *testing.T, input string, expected []tokSpec) {
	t.Helper()
	tokens, err := NewLexer(input, "design.fsf").Tokenize()
	require.NoError(t, err, "unexpected error")
	require.Len(t, tokens, len(expected), "wrong number of tokens: %v", tokens)

	for i, exp := range expected {
		assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
		if exp.typ != TokenEOF {
			assert.Equal(t, exp.val, tokens[i].Value, "token[%d] value", i)
		}
	}
}

func TestLexer_PlainText(t *testing.T) {
	assertTokens(t, "set fmri(level) 1\n", []tokSpec{
		{TokenText, "set fmri(level) 1\n"},
		{TokenEOF, ""},
	})
}

func TestLexer_SimpleExpression(t *testing.T) {
	assertTokens(t, "set fmri(tr) {{ tr }}\n", []tokSpec{
		{TokenText, "set fmri(tr) "},
		{TokenExpr, "tr"},
		{TokenText, "\n"},
		{TokenEOF, ""},
	})
}

func TestLexer_MultipleExpressions(t *testing.T) {
	assertTokens(t, "{{ a }} + {{ b }}", []tokSpec{
		{TokenExpr, "a"},
		{TokenText, " + "},
		{TokenExpr, "b"},
		{TokenEOF, ""},
	})
}

func TestLexer_Statement(t *testing.T) {
	assertTokens(t, "{* for ev in evs: *}", []tokSpec{
		{TokenStmt, "for ev in evs:"},
		{TokenEOF, ""},
	})
}

func TestLexer_Comment(t *testing.T) {
	assertTokens(t, "a{# note #}b", []tokSpec{
		{TokenText, "a"},
		{TokenComment, "note"},
		{TokenText, "b"},
		{TokenEOF, ""},
	})
}

func TestLexer_StandaloneLines(t *testing.T) {
	input := "# EVs\n" +
		"{* for ev in evs: *}\n" +
		"set fmri(evtitle) {{ ev.title }}\n" +
		"  {* endfor *}  \n" +
		"{# trailing comment #}\n" +
		"done\n"

	assertTokens(t, input, []tokSpec{
		{TokenText, "# EVs\n"},
		{TokenStmt, "for ev in evs:"},
		{TokenText, "set fmri(evtitle) "},
		{TokenExpr, "ev.title"},
		{TokenText, "\n"},
		{TokenStmt, "endfor"},
		{TokenComment, "trailing comment"},
		{TokenText, "done\n"},
		{TokenEOF, ""},
	})
}

func TestLexer_StandaloneKeepsBlankLines(t *testing.T) {
	input := "{* if a: *}\n\nx\n{* endif *}\n"

	assertTokens(t, input, []tokSpec{
		{TokenStmt, "if a:"},
		{TokenText, "\nx\n"},
		{TokenStmt, "endif"},
		{TokenEOF, ""},
	})
}

func TestLexer_InlineTagsKeepWhitespace(t *testing.T) {
	input := "set x {* if a: *}1{* else: *}0{* endif *}\n"

	assertTokens(t, input, []tokSpec{
		{TokenText, "set x "},
		{TokenStmt, "if a:"},
		{TokenText, "1"},
		{TokenStmt, "else:"},
		{TokenText, "0"},
		{TokenStmt, "endif"},
		{TokenText, "\n"},
		{TokenEOF, ""},
	})
}

func TestLexer_CRLF(t *testing.T) {
	assertTokens(t, "{* if a: *}\r\nx\r\n{* endif *}\r\n", []tokSpec{
		{TokenStmt, "if a:"},
		{TokenText, "x\r\n"},
		{TokenStmt, "endif"},
		{TokenEOF, ""},
	})
}

func TestLexer_Unclosed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"expression", "set fmri(tr) {{ tr\n"},
		{"statement", "{* for ev in evs: set"},
		{"comment", "{# never closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input, "design.fsf").Tokenize()
			require.Error(t, err)

			lexErr, ok := err.(*LexError)
			require.True(t, ok, "expected LexError, got %T", err)
			assert.Equal(t, 1, lexErr.Position().Line)
			assert.Contains(t, lexErr.Error(), "design.fsf:1:")
		})
	}
}

func TestLexer_NestedBraces(t *testing.T) {
	assertTokens(t, `{{ {"key": "value"}["key"] }}`, []tokSpec{
		{TokenExpr, `{"key": "value"}["key"]`},
		{TokenEOF, ""},
	})
}

func TestLexer_PositionTracking(t *testing.T) {
	tokens, err := NewLexer("line1\nline2\n  {{ expr }}", "design.fsf").Tokenize()
	require.NoError(t, err)

	exprToken := tokens[1]
	require.Equal(t, TokenExpr, exprToken.Type)
	assert.Equal(t, 3, exprToken.Pos.Line)
	assert.Equal(t, 3, exprToken.Pos.Column)
}

func TestLexer_WhitespaceHandling(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"{{  x  }}", "x"},
		{"{{x}}", "x"},
		{"{{  x + y  }}", "x + y"},
		{"{*  for x in y:  *}", "for x in y:"},
		{"{#  note  #}", "note"},
	}

	for _, tt := range tests {
		tokens, err := NewLexer(tt.input, "design.fsf").Tokenize()
		require.NoError(t, err, "input %q: unexpected error", tt.input)
		assert.Equal(t, tt.expected, tokens[0].Value, "input %q", tt.input)
	}
}
