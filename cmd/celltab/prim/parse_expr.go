package prim

// DefaultMaxDepth bounds the nesting of parentheses and negations.
const DefaultMaxDepth = 16

// ParseExpr parses boolean expression text using DefaultMaxDepth.
func ParseExpr(text string) (Expr, error) {
	return ParseExprLimit(text, DefaultMaxDepth)
}

// ParseExprLimit parses boolean expression text, rejecting input nested
// deeper than maxDepth. Errors are *SyntaxError with Pos set; the caller
// fills in the primitive.
func ParseExprLimit(text string, maxDepth int) (Expr, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &exprParser{lex: &exprLexer{s: text}, maxDepth: maxDepth}
	if p.lex.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Err: ErrEmptyExpr}
	}
	e, err := p.parseOr(0)
	if err != nil {
		return nil, err
	}
	switch tok := p.lex.peek(); tok.kind {
	case tokEOF:
		return e, nil
	case tokRParen:
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrUnbalanced}
	case tokBad:
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrUnexpectedChar}
	default:
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrTrailing}
	}
}

// Lexer

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
	tokBad
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type exprLexer struct {
	s string
	i int
}

func (l *exprLexer) peek() token {
	pos := l.i
	tok := l.next()
	l.i = pos
	return tok
}

func (l *exprLexer) next() token {
	for l.i < len(l.s) && (l.s[l.i] == ' ' || l.s[l.i] == '\t') {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}
	}
	start := l.i
	switch ch := l.s[l.i]; ch {
	case '!':
		l.i++
		return token{kind: tokNot, text: "!", pos: start}
	case '&':
		l.i++
		return token{kind: tokAnd, text: "&", pos: start}
	case '|':
		l.i++
		return token{kind: tokOr, text: "|", pos: start}
	case '(':
		l.i++
		return token{kind: tokLParen, text: "(", pos: start}
	case ')':
		l.i++
		return token{kind: tokRParen, text: ")", pos: start}
	default:
		if isIdentStart(ch) {
			l.i++
			for l.i < len(l.s) && isIdentPart(l.s[l.i]) {
				l.i++
			}
			return token{kind: tokIdent, text: l.s[start:l.i], pos: start}
		}
		l.i++
		return token{kind: tokBad, text: string(ch), pos: start}
	}
}

func isIdentStart(b byte) bool { return b >= 'A' && b <= 'Z' }

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '_'
}

// IsIdent reports whether s is a well-formed pin identifier.
func IsIdent(s string) bool {
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

// Parser

type exprParser struct {
	lex      *exprLexer
	maxDepth int
}

func (p *exprParser) parseOr(depth int) (Expr, error) {
	first, err := p.parseAnd(depth)
	if err != nil {
		return nil, err
	}
	xs := []Expr{first}
	for p.lex.peek().kind == tokOr {
		p.lex.next()
		x, err := p.parseAnd(depth)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	if len(xs) == 1 {
		return first, nil
	}
	return Or{Xs: xs}, nil
}

func (p *exprParser) parseAnd(depth int) (Expr, error) {
	first, err := p.parseNot(depth)
	if err != nil {
		return nil, err
	}
	xs := []Expr{first}
	for p.lex.peek().kind == tokAnd {
		p.lex.next()
		x, err := p.parseNot(depth)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	if len(xs) == 1 {
		return first, nil
	}
	return And{Xs: xs}, nil
}

func (p *exprParser) parseNot(depth int) (Expr, error) {
	tok := p.lex.peek()
	if tok.kind != tokNot {
		return p.parseAtom(depth)
	}
	if depth+1 > p.maxDepth {
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrTooDeep}
	}
	p.lex.next()
	x, err := p.parseNot(depth + 1)
	if err != nil {
		return nil, err
	}
	if lit, ok := x.(Literal); ok && !lit.Negated {
		lit.Negated = true
		return lit, nil
	}
	return Not{X: x}, nil
}

func (p *exprParser) parseAtom(depth int) (Expr, error) {
	tok := p.lex.next()
	switch tok.kind {
	case tokIdent:
		return Literal{Name: tok.text}, nil
	case tokLParen:
		if depth+1 > p.maxDepth {
			return nil, &SyntaxError{Pos: tok.pos, Err: ErrTooDeep}
		}
		x, err := p.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		closing := p.lex.next()
		if closing.kind != tokRParen {
			if closing.kind == tokBad {
				return nil, &SyntaxError{Pos: closing.pos, Err: ErrUnexpectedChar}
			}
			if closing.kind == tokEOF {
				return nil, &SyntaxError{Pos: tok.pos, Err: ErrUnbalanced}
			}
			return nil, &SyntaxError{Pos: closing.pos, Err: ErrTrailing}
		}
		return x, nil
	case tokBad:
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrUnexpectedChar}
	default:
		// EOF, ')' or a binary operator where an operand belongs.
		return nil, &SyntaxError{Pos: tok.pos, Err: ErrMissingOperand}
	}
}
