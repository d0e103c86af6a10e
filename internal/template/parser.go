package template

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Parse reads a template from r. file is used in error positions only.
func Parse(r io.Reader, file string) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", file, err)
	}
	return ParseString(string(data), file)
}

// ParseString parses a template held in memory.
func ParseString(input, file string) (*Template, error) {
	tokens, err := NewLexer(input, file).Tokenize()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	nodes, end, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if end != nil {
		return nil, NewUnmatchedBlockError(end.Pos(), end.Kind)
	}

	return &Template{Nodes: nodes, File: file}, nil
}

// parser builds the block tree from a flat token stream.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// parseBody collects nodes until EOF or a statement that ends or continues
// an enclosing block (elif, else, endif, endfor). That statement is returned
// as end; end is nil at EOF.
func (p *parser) parseBody() (nodes []Node, end *StmtNode, err error) {
	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF:
			return nodes, nil, nil

		case TokenText:
			nodes = append(nodes, &TextNode{nodeBase: nodeBase{pos: tok.Pos}, Text: tok.Value})

		case TokenExpr:
			if tok.Value == "" {
				return nil, nil, NewParseError(tok.Pos, "empty expression")
			}
			nodes = append(nodes, &ExprNode{nodeBase: nodeBase{pos: tok.Pos}, Expr: tok.Value})

		case TokenComment:
			// dropped

		case TokenStmt:
			stmt, err := parseStmt(tok)
			if err != nil {
				return nil, nil, err
			}
			switch stmt.Kind {
			case StmtFor:
				block, err := p.parseFor(stmt)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, block)
			case StmtIf:
				block, err := p.parseIf(stmt)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, block)
			default:
				return nodes, stmt, nil
			}
		}
	}
}

func (p *parser) parseFor(stmt *StmtNode) (*ForBlock, error) {
	body, end, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if end == nil {
		return nil, NewUnmatchedBlockError(stmt.Pos(), StmtFor)
	}
	if end.Kind != StmtEndFor {
		return nil, NewUnmatchedBlockError(end.Pos(), end.Kind)
	}

	return &ForBlock{
		nodeBase: stmt.nodeBase,
		Vars:     stmt.Vars,
		IterExpr: stmt.Expr,
		Body:     body,
	}, nil
}

func (p *parser) parseIf(stmt *StmtNode) (*IfBlock, error) {
	block := &IfBlock{nodeBase: stmt.nodeBase, Condition: stmt.Expr}

	body, end, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	block.Body = body

	seenElse := false
	for {
		if end == nil {
			return nil, NewUnmatchedBlockError(stmt.Pos(), StmtIf)
		}

		switch end.Kind {
		case StmtElif:
			if seenElse {
				return nil, NewParseError(end.Pos(), "'elif' after 'else'")
			}
			branch := Branch{Condition: end.Expr, pos: end.Pos()}
			branch.Body, end, err = p.parseBody()
			if err != nil {
				return nil, err
			}
			block.ElseIfs = append(block.ElseIfs, branch)

		case StmtElse:
			if seenElse {
				return nil, NewParseError(end.Pos(), "duplicate 'else'")
			}
			seenElse = true
			block.Else, end, err = p.parseBody()
			if err != nil {
				return nil, err
			}
			if block.Else == nil {
				block.Else = []Node{}
			}

		case StmtEndIf:
			return block, nil

		default:
			return nil, NewUnmatchedBlockError(end.Pos(), end.Kind)
		}
	}
}

// parseStmt classifies the content of a {* *} tag. A trailing colon is
// optional everywhere.
func parseStmt(tok Token) (*StmtNode, error) {
	text := strings.TrimSpace(strings.TrimSuffix(tok.Value, ":"))
	keyword, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	stmt := &StmtNode{nodeBase: nodeBase{pos: tok.Pos}}

	switch keyword {
	case "for":
		target, iter, ok := strings.Cut(rest, " in ")
		iter = strings.TrimSpace(iter)
		if !ok || iter == "" {
			return nil, NewParseErrorf(tok.Pos, "malformed for statement %q: want 'for x in items'", tok.Value)
		}
		for _, name := range strings.Split(target, ",") {
			name = strings.TrimSpace(name)
			if !isIdentifier(name) {
				return nil, NewParseErrorf(tok.Pos, "invalid loop variable %q", name)
			}
			stmt.Vars = append(stmt.Vars, name)
		}
		stmt.Kind = StmtFor
		stmt.Expr = iter

	case "if", "elif":
		if rest == "" {
			return nil, NewParseErrorf(tok.Pos, "'%s' needs a condition", keyword)
		}
		stmt.Kind = StmtIf
		if keyword == "elif" {
			stmt.Kind = StmtElif
		}
		stmt.Expr = rest

	case "else", "endif", "endfor":
		if rest != "" {
			return nil, NewParseErrorf(tok.Pos, "unexpected text after '%s': %q", keyword, rest)
		}
		switch keyword {
		case "else":
			stmt.Kind = StmtElse
		case "endif":
			stmt.Kind = StmtEndIf
		default:
			stmt.Kind = StmtEndFor
		}

	default:
		return nil, NewParseErrorf(tok.Pos, "unknown statement %q", keyword)
	}

	return stmt, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
