// Package expr parses infix arithmetic expressions into autodiff graphs.
//
// Grammar:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | power
//	power   := primary (('^' | '**') unary)?      right associative
//	primary := number | ident | ident '(' expr ')' | '(' expr ')'
//
// Identifiers naming an operation (sin, cos, tan, cot, sinh, cosh, tanh,
// coth, exp, log) must be called. pi and e are constants. Every other
// identifier is a variable. A constant exponent becomes a Pow node; any other
// exponent becomes PowValue so that it is differentiated too.
package expr

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Expr is a parsed expression.
type Expr struct {
	src  string
	root Node
	vars []string
}

// Parse parses src.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", src)
	}

	p := &parser{toks: toks, vars: make(map[string]struct{})}
	root, err := p.expr()
	if err == nil && p.peek().kind != tokEOF {
		err = p.unexpected()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", src)
	}

	vars := make([]string, 0, len(p.vars))
	for v := range p.vars {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	return &Expr{src: src, root: root, vars: vars}, nil
}

// MustParse is Parse that panics on error. For tests and fixed expressions.
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Source returns the text the expression was parsed from.
func (e *Expr) Source() string { return e.src }

// Root returns the expression tree.
func (e *Expr) Root() Node { return e.root }

// Variables returns the free variables, sorted.
func (e *Expr) Variables() []string {
	return append([]string(nil), e.vars...)
}

// String returns the fully parenthesised form.
func (e *Expr) String() string { return e.root.String() }

type parser struct {
	toks []token
	pos  int
	vars map[string]struct{}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected() error {
	t := p.peek()
	if t.kind == tokEOF {
		return &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.kind.String() + " " + t.text}
}

func (p *parser) expect(k tokenKind) error {
	if p.peek().kind != k {
		return &SyntaxError{Pos: p.peek().pos, Msg: "expected " + k.String()}
	}
	p.next()
	return nil
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var k ops.Kind
		switch p.peek().kind {
		case tokPlus:
			k = ops.Add
		case tokMinus:
			k = ops.Sub
		default:
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Kind: k, L: left, R: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var k ops.Kind
		switch p.peek().kind {
		case tokStar:
			k = ops.Mul
		case tokSlash:
			k = ops.Div
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Kind: k, L: left, R: right}
	}
}

func (p *parser) unary() (Node, error) {
	if p.peek().kind != tokMinus {
		return p.power()
	}
	p.next()
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	// Fold negative literals so that x^-2 keeps a constant exponent.
	if n, ok := x.(*Num); ok {
		return &Num{Val: -n.Val}, nil
	}
	return &Call{Kind: ops.Neg, X: x}, nil
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	if n, ok := exp.(*Num); ok {
		return &Power{X: base, N: n.Val}, nil
	}
	return &Binary{Kind: ops.PowValue, L: base, R: exp}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return &Num{Val: t.num}, nil

	case tokLParen:
		p.next()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil

	case tokIdent:
		p.next()
		if k, ok := ops.ParseKind(t.text); ok && isFunction(k) {
			if err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			return &Call{Kind: k, X: x}, nil
		}
		if p.peek().kind == tokLParen {
			return nil, errors.Wrapf(ErrUnknownFunction, "%q at %d", t.text, t.pos)
		}
		if c, ok := constants[t.text]; ok {
			return &Num{Val: c}, nil
		}
		p.vars[t.text] = struct{}{}
		return &Var{Name: t.text}, nil

	default:
		return nil, p.unexpected()
	}
}

func isFunction(k ops.Kind) bool {
	return k >= ops.Sin && k <= ops.Log
}
