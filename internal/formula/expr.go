package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	maxExprLen   = 512
	maxExprDepth = 64
)

var ErrBadExpression = errors.New("bad expression")

// Expr is a parsed arithmetic expression. The grammar only knows numbers,
// identifiers, parentheses and the operators + - * / ^. There are no
// assignments and no function calls, so evaluation cannot do anything but
// arithmetic over the supplied parameters.
type Expr struct {
	src    string
	tokens []token
	root   node
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value float64
}

// ParseExpr parses s.
func ParseExpr(s string) (*Expr, error) {
	if len(s) > maxExprLen {
		return nil, fmt.Errorf("%w: longer than %d bytes", ErrBadExpression, maxExprLen)
	}
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrBadExpression, t.text, t.pos)
	}
	return &Expr{src: s, tokens: tokens, root: root}, nil
}

// Eval evaluates the expression with identifiers bound to params.
func (e *Expr) Eval(params Params) (float64, error) {
	return e.root.eval(params)
}

// Identifiers lists the distinct identifiers in order of appearance.
func (e *Expr) Identifiers() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range e.tokens {
		if t.kind == tokIdent && !seen[t.text] {
			seen[t.text] = true
			ids = append(ids, t.text)
		}
	}
	return ids
}

// Substitute returns the source text with every identifier replaced by its
// value in params.
func (e *Expr) Substitute(params Params) string {
	var b strings.Builder
	last := 0
	for _, t := range e.tokens {
		if t.kind != tokIdent {
			continue
		}
		b.WriteString(e.src[last:t.pos])
		b.WriteString(params.V(t.text))
		last = t.pos + len(t.text)
	}
	b.WriteString(e.src[last:])
	return strings.TrimSpace(b.String())
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
				i++
			}
			if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
				j := i + 1
				if j < len(s) && (s[j] == '+' || s[j] == '-') {
					j++
				}
				if j < len(s) && s[j] >= '0' && s[j] <= '9' {
					for j < len(s) && s[j] >= '0' && s[j] <= '9' {
						j++
					}
					i = j
				}
			}
			text := s[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number %q at %d", ErrBadExpression, text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, pos: start, value: v})
		case isIdentStart(c):
			start := i
			for i < len(s) && (isIdentStart(s[i]) || s[i] >= '0' && s[i] <= '9') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: s[start:i], pos: start})
		case strings.IndexByte("+-*/^", c) >= 0:
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrBadExpression, c, i)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(s)})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) bool {
	t := p.peek()
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

func (p *parser) parseExpr(depth int) (node, error) {
	if depth > maxExprDepth {
		return nil, fmt.Errorf("%w: nested deeper than %d", ErrBadExpression, maxExprDepth)
	}
	left, err := p.parseTerm(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next().text[0]
		right, err := p.parseTerm(depth)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseTerm(depth int) (node, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("*/") {
		op := p.next().text[0]
		right, err := p.parseUnary(depth)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary(depth int) (node, error) {
	if depth > maxExprDepth {
		return nil, fmt.Errorf("%w: nested deeper than %d", ErrBadExpression, maxExprDepth)
	}
	if p.isOp("+-") {
		op := p.next().text[0]
		x, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, x: x}, nil
	}
	return p.parsePower(depth)
}

// parsePower binds tighter than unary minus on its left and is right
// associative, so -2^2 is -4 and 2^3^2 is 2^9.
func (p *parser) parsePower(depth int) (node, error) {
	base, err := p.parsePrimary(depth)
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return binaryNode{op: '^', l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary(depth int) (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numNode(t.value), nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return nil, fmt.Errorf("%w: function calls are not allowed (%s at %d)", ErrBadExpression, t.text, t.pos)
		}
		return identNode(t.text), nil
	case tokLParen:
		inner, err := p.parseExpr(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at %d", ErrBadExpression, closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrBadExpression)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrBadExpression, t.text, t.pos)
	}
}

type node interface {
	eval(p Params) (float64, error)
}

type numNode float64

func (n numNode) eval(Params) (float64, error) { return float64(n), nil }

type identNode string

func (n identNode) eval(p Params) (float64, error) {
	v, ok := p[string(n)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown identifier %q", ErrBadExpression, string(n))
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: identifier %q is not a number", ErrBadExpression, string(n))
	}
	return f, nil
}

type unaryNode struct {
	op byte
	x  node
}

func (n unaryNode) eval(p Params) (float64, error) {
	v, err := n.x.eval(p)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

type binaryNode struct {
	op   byte
	l, r node
}

func (n binaryNode) eval(p Params) (float64, error) {
	l, err := n.l.eval(p)
	if err != nil {
		return 0, err
	}
	r, err := n.r.eval(p)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	case '^':
		return math.Pow(l, r), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrBadExpression, n.op)
}
