package prim

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Equivalent reports whether a and b agree under every assignment of the pins
// they reference. Pins are matched by name.
func Equivalent(a, b Expr) bool {
	c := logic.NewC()
	ins := map[string]z.Lit{}
	fa := encode(c, ins, a)
	fb := encode(c, ins, b)
	return !satisfiable(c, c.Xor(fa, fb))
}

// Constant reports whether e evaluates to the same value under every
// assignment, and if so which.
func Constant(e Expr) (value, ok bool) {
	c := logic.NewC()
	f := encode(c, map[string]z.Lit{}, e)
	if !satisfiable(c, f) {
		return false, true
	}
	if !satisfiable(c, f.Not()) {
		return true, true
	}
	return false, false
}

// encode builds e into c, allocating one circuit input per distinct pin.
func encode(c *logic.C, ins map[string]z.Lit, e Expr) z.Lit {
	switch x := e.(type) {
	case Literal:
		m, ok := ins[x.Name]
		if !ok {
			m = c.Lit()
			ins[x.Name] = m
		}
		if x.Negated {
			return m.Not()
		}
		return m
	case Not:
		return encode(c, ins, x.X).Not()
	case And:
		ms := make([]z.Lit, len(x.Xs))
		for i, sub := range x.Xs {
			ms[i] = encode(c, ins, sub)
		}
		return c.Ands(ms...)
	case Or:
		ms := make([]z.Lit, len(x.Xs))
		for i, sub := range x.Xs {
			ms[i] = encode(c, ins, sub)
		}
		return c.Ors(ms...)
	}
	return c.F
}

// satisfiable asks the solver whether root can be true.
func satisfiable(c *logic.C, root z.Lit) bool {
	g := gini.New()
	// Pin the circuit's constant so roots that fold to T or F are decided.
	g.Add(c.T)
	g.Add(z.LitNull)
	c.ToCnfFrom(g, root)
	g.Assume(root)
	return g.Solve() == 1
}
