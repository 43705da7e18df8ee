package prim

// Expr is a node of a boolean expression tree. The set of node types is
// closed: Literal, Not, And and Or.
type Expr interface{ isExpr() }

// Literal is a pin reference. Negated is set when '!' was applied directly
// to the identifier in the source text.
type Literal struct {
	Name    string
	Negated bool
}

// Not negates a compound operand, or a literal that is already negated.
type Not struct{ X Expr }

// And is the conjunction of a homogeneous run of operands, in source order.
type And struct{ Xs []Expr }

// Or is the disjunction of a homogeneous run of operands, in source order.
type Or struct{ Xs []Expr }

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Name
	}
	return l.Name
}

func (Literal) isExpr() {}
func (Not) isExpr()     {}
func (And) isExpr()     {}
func (Or) isExpr()      {}

// Idents returns the identifiers referenced by e, each once, in first-seen
// order.
func Idents(e Expr) []string {
	seen := map[string]struct{}{}
	var out []string
	Walk(e, func(l Literal) {
		if _, ok := seen[l.Name]; ok {
			return
		}
		seen[l.Name] = struct{}{}
		out = append(out, l.Name)
	})
	return out
}

// Walk calls fn for every literal of e, left to right.
func Walk(e Expr, fn func(Literal)) {
	switch x := e.(type) {
	case Literal:
		fn(x)
	case Not:
		Walk(x.X, fn)
	case And:
		for _, c := range x.Xs {
			Walk(c, fn)
		}
	case Or:
		for _, c := range x.Xs {
			Walk(c, fn)
		}
	}
}

// Clone returns a deep copy of e that shares no slices with it.
func Clone(e Expr) Expr {
	switch x := e.(type) {
	case Not:
		return Not{X: Clone(x.X)}
	case And:
		return And{Xs: cloneAll(x.Xs)}
	case Or:
		return Or{Xs: cloneAll(x.Xs)}
	}
	return e
}

func cloneAll(xs []Expr) []Expr {
	out := make([]Expr, len(xs))
	for i, x := range xs {
		out[i] = Clone(x)
	}
	return out
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Literal:
		y, ok := b.(Literal)
		return ok && x == y
	case Not:
		y, ok := b.(Not)
		return ok && Equal(x.X, y.X)
	case And:
		y, ok := b.(And)
		return ok && equalAll(x.Xs, y.Xs)
	case Or:
		y, ok := b.(Or)
		return ok && equalAll(x.Xs, y.Xs)
	}
	return false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
