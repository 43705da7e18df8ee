package prim

import "strings"

// Render returns the canonical text of e. Parentheses are emitted only where
// needed to reproduce the same tree, so ParseExpr(Render(e)) is structurally
// equal to e for every tree the parser produces. For hand-built trees it is
// equal to Canonical(e).
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch x := e.(type) {
	case Literal:
		if x.Negated {
			b.WriteByte('!')
		}
		b.WriteString(x.Name)
	case Not:
		b.WriteByte('!')
		renderOperand(b, x.X, isCompound)
	case And:
		for i, c := range x.Xs {
			if i > 0 {
				b.WriteByte('&')
			}
			renderOperand(b, c, isCompound)
		}
	case Or:
		for i, c := range x.Xs {
			if i > 0 {
				b.WriteByte('|')
			}
			renderOperand(b, c, isOr)
		}
	}
}

func renderOperand(b *strings.Builder, e Expr, wrap func(Expr) bool) {
	if !wrap(e) {
		render(b, e)
		return
	}
	b.WriteByte('(')
	render(b, e)
	b.WriteByte(')')
}

func isCompound(e Expr) bool {
	switch e.(type) {
	case And, Or:
		return true
	}
	return false
}

func isOr(e Expr) bool {
	_, ok := e.(Or)
	return ok
}

// Canonical rewrites e into the shape the parser produces: a Not of a plain
// literal becomes a negated Literal and single-operand And/Or collapse to
// their operand.
func Canonical(e Expr) Expr {
	switch x := e.(type) {
	case Not:
		inner := Canonical(x.X)
		if lit, ok := inner.(Literal); ok && !lit.Negated {
			lit.Negated = true
			return lit
		}
		return Not{X: inner}
	case And:
		if len(x.Xs) == 1 {
			return Canonical(x.Xs[0])
		}
		return And{Xs: canonicalAll(x.Xs)}
	case Or:
		if len(x.Xs) == 1 {
			return Canonical(x.Xs[0])
		}
		return Or{Xs: canonicalAll(x.Xs)}
	}
	return e
}

func canonicalAll(xs []Expr) []Expr {
	out := make([]Expr, len(xs))
	for i, x := range xs {
		out[i] = Canonical(x)
	}
	return out
}
