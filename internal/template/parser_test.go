package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ValidInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		checkFunc func(t *testing.T, tmpl *Template)
	}{
		{
			name:      "plain text",
			input:     "set fmri(level) 1",
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				text, ok := tmpl.Nodes[0].(*TextNode)
				require.True(t, ok, "expected TextNode, got %T", tmpl.Nodes[0])
				assert.Equal(t, "set fmri(level) 1", text.Text)
			},
		},
		{
			name:      "simple expression",
			input:     "set fmri(tr) {{ tr }}\n",
			wantNodes: 3,
			checkFunc: func(t *testing.T, tmpl *Template) {
				expr, ok := tmpl.Nodes[1].(*ExprNode)
				require.True(t, ok, "node[1]: expected ExprNode, got %T", tmpl.Nodes[1])
				assert.Equal(t, "tr", expr.Expr)
			},
		},
		{
			name: "for loop",
			input: `{* for ev in evs: *}
{{ ev.title }}
{* endfor *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				forBlock, ok := tmpl.Nodes[0].(*ForBlock)
				require.True(t, ok, "expected ForBlock, got %T", tmpl.Nodes[0])
				assert.Equal(t, []string{"ev"}, forBlock.Vars)
				assert.Equal(t, "evs", forBlock.IterExpr)
				require.Len(t, forBlock.Body, 2)
				expr, ok := forBlock.Body[0].(*ExprNode)
				require.True(t, ok, "body[0]: expected ExprNode, got %T", forBlock.Body[0])
				assert.Equal(t, "ev.title", expr.Expr)
			},
		},
		{
			name:      "for loop with unpacking",
			input:     `{* for i, ev in enumerate(evs, 1): *}{{ i }}{* endfor *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				forBlock, ok := tmpl.Nodes[0].(*ForBlock)
				require.True(t, ok, "expected ForBlock, got %T", tmpl.Nodes[0])
				assert.Equal(t, []string{"i", "ev"}, forBlock.Vars)
				assert.Equal(t, "enumerate(evs, 1)", forBlock.IterExpr)
			},
		},
		{
			name: "if-else",
			input: `{* if confound_yn: *}
yes
{* else: *}
no
{* endif *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				ifBlock, ok := tmpl.Nodes[0].(*IfBlock)
				require.True(t, ok, "expected IfBlock, got %T", tmpl.Nodes[0])
				assert.Equal(t, "confound_yn", ifBlock.Condition)
				assert.Len(t, ifBlock.Body, 1)
				require.NotNil(t, ifBlock.Else)
				assert.Len(t, ifBlock.Else, 1)
			},
		},
		{
			name:      "empty else",
			input:     `{* if a: *}A{* else: *}{* endif *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				ifBlock := tmpl.Nodes[0].(*IfBlock)
				assert.NotNil(t, ifBlock.Else)
				assert.Empty(t, ifBlock.Else)
			},
		},
		{
			name: "if-elif-else",
			input: `{* if a: *}
A
{* elif b: *}
B
{* elif c: *}
C
{* else: *}
D
{* endif *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				ifBlock, ok := tmpl.Nodes[0].(*IfBlock)
				require.True(t, ok, "expected IfBlock, got %T", tmpl.Nodes[0])
				assert.Equal(t, "a", ifBlock.Condition)
				require.Len(t, ifBlock.ElseIfs, 2)
				assert.Equal(t, "b", ifBlock.ElseIfs[0].Condition)
				assert.Equal(t, "c", ifBlock.ElseIfs[1].Condition)
				assert.NotNil(t, ifBlock.Else)
			},
		},
		{
			name: "nested blocks",
			input: `{* for c in contrasts: *}
{* if c.title: *}
{{ c.title }}
{* endif *}
{* endfor *}`,
			wantNodes: 1,
			checkFunc: func(t *testing.T, tmpl *Template) {
				forBlock, ok := tmpl.Nodes[0].(*ForBlock)
				require.True(t, ok, "expected ForBlock, got %T", tmpl.Nodes[0])
				require.Len(t, forBlock.Body, 1)
				_, ok = forBlock.Body[0].(*IfBlock)
				assert.True(t, ok, "expected nested IfBlock in ForBlock body")
			},
		},
		{
			name:      "comments are dropped",
			input:     "{# header #}\nset a 1\n",
			wantNodes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseString(tt.input, "design.fsf")
			require.NoError(t, err)
			require.Len(t, tmpl.Nodes, tt.wantNodes)
			assert.Equal(t, "design.fsf", tmpl.File)
			if tt.checkFunc != nil {
				tt.checkFunc(t, tmpl)
			}
		})
	}
}

func TestParser_ForWithoutColon(t *testing.T) {
	inputs := []string{
		`{* for x in items: *}{{ x }}{* endfor *}`,
		`{* for x in items *}{{ x }}{* endfor *}`,
	}

	for _, input := range inputs {
		tmpl, err := ParseString(input, "design.fsf")
		require.NoError(t, err, "input %q", input)

		forBlock, ok := tmpl.Nodes[0].(*ForBlock)
		require.True(t, ok, "input %q: expected ForBlock, got %T", input, tmpl.Nodes[0])
		assert.Equal(t, []string{"x"}, forBlock.Vars)
	}
}

func TestParse_Reader(t *testing.T) {
	tmpl, err := Parse(strings.NewReader("set fmri(tr) {{ tr }}\n"), "custom.fsf")
	require.NoError(t, err)
	assert.Len(t, tmpl.Nodes, 3)
	assert.Equal(t, "custom.fsf", tmpl.File)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		unmatched StmtKind // StmtUnknown when a plain ParseError is expected
	}{
		{"unmatched for", "{* for x in items: *}\n{{ x }}", StmtFor},
		{"unmatched endfor", "{{ x }}\n{* endfor *}", StmtEndFor},
		{"unmatched if", "{* if condition: *}\nyes", StmtIf},
		{"unmatched else", "yes\n{* else: *}\nno", StmtElse},
		{"endif closing for", "{* for x in xs: *}{* endif *}", StmtEndIf},
		{"invalid statement", "{* while true: *}", StmtUnknown},
		{"for without in", "{* for x *}{* endfor *}", StmtUnknown},
		{"bad loop variable", "{* for 1x in xs: *}{* endfor *}", StmtUnknown},
		{"if without condition", "{* if: *}{* endif *}", StmtUnknown},
		{"text after endif", "{* if a: *}{* endif a *}", StmtUnknown},
		{"elif after else", "{* if a: *}{* else: *}{* elif b: *}{* endif *}", StmtUnknown},
		{"duplicate else", "{* if a: *}{* else: *}{* else: *}{* endif *}", StmtUnknown},
		{"empty expression", "set {{ }}", StmtUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input, "design.fsf")
			require.Error(t, err)

			if tt.unmatched != StmtUnknown {
				ube, ok := err.(*UnmatchedBlockError)
				require.True(t, ok, "expected UnmatchedBlockError, got %T: %v", err, err)
				assert.Equal(t, tt.unmatched, ube.BlockKind)
				return
			}
			_, ok := err.(*ParseError)
			assert.True(t, ok, "expected ParseError, got %T: %v", err, err)
		})
	}
}
