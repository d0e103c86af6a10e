package design

import (
	"math"
	"strconv"
	"strings"
)

// symPrefix marks an AFNI symbolic contrast ("SYM: +a -b"). It is optional.
const symPrefix = "SYM:"

// term is one "[sign] [coefficient *] name" element of an expression.
type term struct {
	weight float64
	name   string
	col    int
}

// CompileExpr turns a symbolic contrast such as "+2*taskA -taskB" into a
// weight vector aligned with evs. EVs the expression does not mention get
// weight 0. When an EV is named more than once the last term wins.
func CompileExpr(expr string, evs *EVSet) ([]float64, error) {
	body := strings.TrimSpace(expr)
	body = strings.TrimSpace(strings.TrimPrefix(body, symPrefix))
	if body == "" {
		return nil, exprError(ErrValidation, expr, 0, "contrast expression is empty")
	}

	tokens, err := newExprLexer(body).tokenize()
	if err != nil {
		return nil, err
	}

	p := &exprParser{expr: body, tokens: tokens}
	terms, err := p.parse()
	if err != nil {
		return nil, err
	}

	weights := make([]float64, evs.Len())
	for _, t := range terms {
		idx, ok := evs.Index(t.name)
		if !ok {
			return nil, exprError(ErrUnresolvedReference, body, t.col,
				"EV %q is not declared (known: %s)", t.name, strings.Join(evs.Titles(), ", "))
		}
		weights[idx] = t.weight
	}
	return weights, nil
}

// CheckWeights validates a literal weight vector against evs and returns a
// copy of it.
func CheckWeights(weights []float64, evs *EVSet) ([]float64, error) {
	if len(weights) != evs.Len() {
		return nil, newError(ErrValidation, "",
			"got %d weights for %d EVs", len(weights), evs.Len())
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, newError(ErrValidation, "", "weight %d is not a finite number", i+1)
		}
		out[i] = w
	}
	return out, nil
}

// exprParser is a recursive-descent parser over the token stream:
//
//	expr := term* EOF
//	term := [SIGN] [NUMBER STAR] IDENT
type exprParser struct {
	expr   string
	tokens []token
	pos    int
}

func (p *exprParser) peek() token { return p.tokens[p.pos] }

func (p *exprParser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) parse() ([]term, error) {
	var terms []term
	for p.peek().typ != tokEOF {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (p *exprParser) parseTerm() (term, error) {
	start := p.peek()
	sign := 1.0
	if start.typ == tokSign {
		p.advance()
		if start.val == "-" {
			sign = -1
		}
	}

	magnitude := 1.0
	if p.peek().typ == tokNumber {
		num := p.advance()
		v, err := strconv.ParseFloat(num.val, 64)
		if err != nil {
			return term{}, exprError(ErrValidation, p.expr, num.col, "invalid coefficient %q", num.val)
		}
		if star := p.peek(); star.typ != tokStar {
			return term{}, exprError(ErrValidation, p.expr, star.col,
				"expected '*' after coefficient %s, found %s", num.val, star.typ)
		}
		p.advance()
		magnitude = v
	}

	name := p.peek()
	if name.typ != tokIdent {
		return term{}, exprError(ErrUnknownEV, p.expr, name.col,
			"EV name not specified, found %s", name.typ)
	}
	p.advance()

	if lag := p.peek(); lag.typ == tokLag {
		return term{}, exprError(ErrUnsupportedFeature, p.expr, lag.col,
			"lag selection %s on %q is not supported", lag.val, name.val)
	}

	return term{weight: sign * magnitude, name: name.val, col: start.col}, nil
}
