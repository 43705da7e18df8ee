package prim

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Table structure.
	ErrUnknownKey         = errors.New("unrecognized attribute key")
	ErrArity              = errors.New("wrong number of value tokens")
	ErrMissingAssign      = errors.New("function value has no top-level '='")
	ErrEmptyRecord        = errors.New("record declares no attributes")
	ErrBadName            = errors.New("invalid primitive name")
	ErrBadPin             = errors.New("invalid pin name")
	ErrDuplicatePrimitive = errors.New("duplicate primitive name")
	ErrLineTooLong        = errors.New("line exceeds maximum length")
	ErrTooManyAttrs       = errors.New("too many attributes")

	// Expression syntax.
	ErrUnexpectedChar = errors.New("unexpected character")
	ErrMissingOperand = errors.New("missing operand")
	ErrUnbalanced     = errors.New("unbalanced parentheses")
	ErrTrailing       = errors.New("trailing text after expression")
	ErrTooDeep        = errors.New("expression nesting too deep")
	ErrEmptyExpr      = errors.New("empty expression")

	// Semantics.
	ErrDuplicateTarget        = errors.New("output pin driven by more than one function")
	ErrNoOutputs              = errors.New("primitive declares no function")
	ErrTriggerPairing         = errors.New("sequential trigger and state update do not pair")
	ErrControlOnCombinational = errors.New("control attribute on combinational primitive")
	ErrRepeatedControl        = errors.New("control attribute declared more than once")
	ErrPseudoSignal           = errors.New("misplaced state pseudo-signal")
	ErrStrictWarning          = errors.New("warning promoted to error")

	// Registry.
	ErrNotFound = errors.New("primitive not found")
	ErrNotReady = errors.New("registry not ready")
)

// FormatError reports a record that cannot be structurally understood.
type FormatError struct {
	Primitive string // empty when the name itself is unreadable
	Line      int
	Err       error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("phase=load %sline=%d: %v", primitiveField(e.Primitive), e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// SyntaxError reports a malformed boolean expression. Pos is the byte offset
// into the expression text.
type SyntaxError struct {
	Primitive string
	Line      int
	Pos       int
	Err       error
}

func (e *SyntaxError) Error() string {
	line := ""
	if e.Line > 0 {
		line = fmt.Sprintf("line=%d ", e.Line)
	}
	return fmt.Sprintf("phase=parse %s%spos=%d: %v", primitiveField(e.Primitive), line, e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ValidationError reports a semantic violation inside one primitive.
type ValidationError struct {
	Primitive string
	Attribute string // offending attribute, e.g. "function Q" or "clocked_on"
	Line      int
	Err       error
}

func (e *ValidationError) Error() string {
	attr := ""
	if e.Attribute != "" {
		attr = fmt.Sprintf("attribute=%q ", e.Attribute)
	}
	return fmt.Sprintf("phase=validate %s%sline=%d: %v", primitiveField(e.Primitive), attr, e.Line, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors aggregates every validation failure across a table.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(es))
	for _, e := range es {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

func primitiveField(name string) string {
	if name == "" {
		return ""
	}
	return "primitive=" + name + " "
}
