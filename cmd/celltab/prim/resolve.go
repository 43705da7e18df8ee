package prim

import (
	"errors"
	"fmt"
	"strings"
)

// Resolve parses every attribute value of the raw records. The first
// malformed value aborts the whole table: a *FormatError for a function
// value without '=', a *SyntaxError for a bad expression.
func Resolve(raw []RawRecord, maxDepth int) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for _, rr := range raw {
		rec := Record{Name: rr.Name, Line: rr.Line, Attributes: make([]Attribute, 0, len(rr.Entries))}
		for _, e := range rr.Entries {
			attr, err := resolveEntry(e, maxDepth)
			if err != nil {
				return nil, attribute(err, rr.Name, e.Line)
			}
			rec.Attributes = append(rec.Attributes, attr)
		}
		out = append(out, rec)
	}
	return out, nil
}

func resolveEntry(e RawEntry, maxDepth int) (Attribute, error) {
	if _, ok := knownKeys[e.Key]; !ok {
		return Attribute{}, &FormatError{Line: e.Line, Err: fmt.Errorf("%w: %q", ErrUnknownKey, e.Key)}
	}
	attr := Attribute{Key: e.Key, Line: e.Line}
	text := e.Value
	if e.Key == KeyFunction {
		target, rhs, err := SplitAssign(e.Value)
		if err != nil {
			return Attribute{}, &FormatError{Line: e.Line, Err: err}
		}
		attr.Target = target
		text = rhs
	} else if strings.TrimSpace(text) == "" || len(strings.Fields(text)) != 1 {
		return Attribute{}, &FormatError{Line: e.Line, Err: fmt.Errorf("%w: %s takes exactly one signal", ErrArity, e.Key)}
	}

	expr, err := ParseExprLimit(text, maxDepth)
	if err != nil {
		return Attribute{}, err
	}
	attr.Expr = expr
	if lit, ok := expr.(Literal); ok {
		attr.Signal = &Signal{Pin: lit.Name, ActiveLow: lit.Negated}
	}
	return attr, nil
}

// SplitAssign splits a function value "PIN=EXPR" at its single '='.
func SplitAssign(value string) (target, expr string, err error) {
	switch strings.Count(value, "=") {
	case 0:
		return "", "", fmt.Errorf("%w: %q", ErrMissingAssign, value)
	case 1:
	default:
		return "", "", fmt.Errorf("%w: %q has more than one '='", ErrMissingAssign, value)
	}
	i := strings.Index(value, "=")
	target = strings.TrimSpace(value[:i])
	expr = value[i+1:]
	if !IsIdent(target) {
		return "", "", fmt.Errorf("%w: output %q", ErrBadPin, target)
	}
	if strings.TrimSpace(expr) == "" {
		return "", "", fmt.Errorf("%w: output %s has no expression", ErrMissingAssign, target)
	}
	return target, expr, nil
}

// attribute stamps the primitive name and line onto a load or parse error.
func attribute(err error, name string, line int) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Primitive = name
		fe.Line = line
		return fe
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		se.Primitive = name
		se.Line = line
		return se
	}
	return fmt.Errorf("primitive=%s line=%d: %w", name, line, err)
}
