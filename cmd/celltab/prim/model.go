package prim

import "fmt"

// Signal is a resolved bare pin reference such as "CLK" or "!RN".
type Signal struct {
	Pin       string
	ActiveLow bool
}

func (s Signal) String() string {
	if s.ActiveLow {
		return "!" + s.Pin
	}
	return s.Pin
}

// Attribute is one parsed attribute entry of a primitive.
//
// Target is set only for KeyFunction entries. Signal is set whenever the
// expression is a single (possibly negated) pin reference, which is always
// the case for well-formed control attributes.
type Attribute struct {
	Key    Key
	Target string
	Expr   Expr
	Signal *Signal
	Line   int
}

// Label names the attribute in messages, e.g. "function Q" or "clocked_on".
func (a Attribute) Label() string {
	if a.Key == KeyFunction {
		return fmt.Sprintf("%s %s", a.Key, a.Target)
	}
	return string(a.Key)
}

// clone returns a copy of a that shares no memory with it.
func (a Attribute) clone() Attribute {
	a.Expr = Clone(a.Expr)
	if a.Signal != nil {
		s := *a.Signal
		a.Signal = &s
	}
	return a
}

// Text renders the attribute value back to table syntax.
func (a Attribute) Text() string {
	if a.Key == KeyFunction {
		return a.Target + "=" + Render(a.Expr)
	}
	return Render(a.Expr)
}

// Record is a primitive whose attribute values have been parsed.
type Record struct {
	Name       string
	Line       int
	Attributes []Attribute
}

// Kind is the category of a primitive, inferred from its attribute keys.
type Kind int

const (
	Combinational Kind = iota
	Latch
	FlipFlop
)

func (k Kind) String() string {
	switch k {
	case Latch:
		return "latch"
	case FlipFlop:
		return "flip-flop"
	default:
		return "combinational"
	}
}

// Sequential reports whether the primitive stores state.
func (k Kind) Sequential() bool { return k != Combinational }

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "combinational", "comb":
		return Combinational, nil
	case "latch":
		return Latch, nil
	case "flip-flop", "flipflop", "ff":
		return FlipFlop, nil
	}
	return Combinational, fmt.Errorf("unknown kind %q (want combinational, latch or flip-flop)", s)
}

// InferKind derives the category from the attribute keys present: a clock
// makes a flip-flop, an enable makes a latch, anything else is combinational.
func InferKind(attrs []Attribute) Kind {
	kind := Combinational
	for _, a := range attrs {
		switch a.Key {
		case KeyClockedOn:
			return FlipFlop
		case KeyEnable:
			kind = Latch
		}
	}
	return kind
}

// Primitive is a validated, read-only primitive model. Accessors return
// deep copies so consumers cannot alter registry contents.
type Primitive struct {
	name     string
	line     int
	kind     Kind
	attrs    []Attribute
	outputs  []string
	inputs   []string
	warnings []Warning
}

func (p *Primitive) Name() string { return p.name }
func (p *Primitive) Line() int    { return p.line }
func (p *Primitive) Kind() Kind   { return p.kind }

// Attributes returns the attribute entries in table order.
func (p *Primitive) Attributes() []Attribute {
	out := make([]Attribute, len(p.attrs))
	for i, a := range p.attrs {
		out[i] = a.clone()
	}
	return out
}

// Outputs returns the function targets in table order.
func (p *Primitive) Outputs() []string { return append([]string(nil), p.outputs...) }

// Inputs returns the referenced input pins in first-seen order.
func (p *Primitive) Inputs() []string { return append([]string(nil), p.inputs...) }

// Warnings returns the non-fatal findings recorded for this primitive.
func (p *Primitive) Warnings() []Warning { return append([]Warning(nil), p.warnings...) }

// Function returns the expression driving output pin, if any.
func (p *Primitive) Function(pin string) (Expr, bool) {
	for _, a := range p.attrs {
		if a.Key == KeyFunction && a.Target == pin {
			return Clone(a.Expr), true
		}
	}
	return nil, false
}

// Control returns the first attribute with the given non-function key.
func (p *Primitive) Control(key Key) (Attribute, bool) {
	for _, a := range p.attrs {
		if a.Key == key {
			return a.clone(), true
		}
	}
	return Attribute{}, false
}
