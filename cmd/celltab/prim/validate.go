package prim

import (
	"fmt"
	"strings"
)

// Pseudo-signals standing for the stored state of a sequential primitive.
const (
	StateSignal    = "IQ"
	StateSignalBar = "IQB"
	StateOutput    = "Q"
	StateOutputBar = "QB"
)

// Warning is a non-fatal finding surfaced to the caller.
type Warning struct {
	Primitive string
	Attribute string
	Line      int
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("primitive=%s attribute=%q line=%d: %s", w.Primitive, w.Attribute, w.Line, w.Message)
}

// Report collects the outcome of validating a whole table.
type Report struct {
	Errors   ValidationErrors
	Warnings []Warning
}

// OK reports whether the table is free of errors.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Err returns the aggregated errors, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return r.Errors
}

// ValidateOptions tunes the semantic checks.
type ValidateOptions struct {
	// KnownPins extends the built-in input pin conventions.
	KnownPins []string
	// Strict promotes every warning to a validation error.
	Strict bool
}

// Validate checks every record and returns the models only when the whole
// table is free of errors. All violations are collected; none aborts early.
func Validate(records []Record, opts ValidateOptions) ([]*Primitive, *Report) {
	pins := NewPinConventions(opts.KnownPins...)
	report := &Report{}
	models := make([]*Primitive, 0, len(records))
	firstLine := make(map[string]int, len(records))

	for _, rec := range records {
		if line, dup := firstLine[rec.Name]; dup {
			report.Errors = append(report.Errors, &ValidationError{
				Primitive: rec.Name,
				Line:      rec.Line,
				Err:       fmt.Errorf("%w: first defined at line %d", ErrDuplicatePrimitive, line),
			})
			continue
		}
		firstLine[rec.Name] = rec.Line

		v := &recordValidator{rec: rec, pins: pins}
		p := v.run()
		report.Errors = append(report.Errors, v.errs...)
		report.Warnings = append(report.Warnings, v.warnings...)
		if opts.Strict {
			for _, w := range v.warnings {
				report.Errors = append(report.Errors, &ValidationError{
					Primitive: w.Primitive,
					Attribute: w.Attribute,
					Line:      w.Line,
					Err:       fmt.Errorf("%w: %s", ErrStrictWarning, w.Message),
				})
			}
		}
		models = append(models, p)
	}

	if !report.OK() {
		return nil, report
	}
	return models, report
}

type recordValidator struct {
	rec      Record
	pins     *PinConventions
	errs     []*ValidationError
	warnings []Warning
}

func (v *recordValidator) fail(a *Attribute, err error) {
	ve := &ValidationError{Primitive: v.rec.Name, Line: v.rec.Line, Err: err}
	if a != nil {
		ve.Attribute = a.Label()
		ve.Line = a.Line
	}
	v.errs = append(v.errs, ve)
}

func (v *recordValidator) warn(a *Attribute, format string, args ...any) {
	w := Warning{Primitive: v.rec.Name, Line: v.rec.Line, Message: fmt.Sprintf(format, args...)}
	if a != nil {
		w.Attribute = a.Label()
		w.Line = a.Line
	}
	v.warnings = append(v.warnings, w)
}

func (v *recordValidator) run() *Primitive {
	kind := InferKind(v.rec.Attributes)
	outputs := v.checkOutputs()
	v.checkSequential()
	v.checkControls(kind)
	v.checkPseudoSignals(kind)
	inputs := v.checkPins(outputs)
	v.checkConstants()

	return &Primitive{
		name:     v.rec.Name,
		line:     v.rec.Line,
		kind:     kind,
		attrs:    append([]Attribute(nil), v.rec.Attributes...),
		outputs:  outputs,
		inputs:   inputs,
		warnings: append([]Warning(nil), v.warnings...),
	}
}

// checkOutputs enforces one function per output pin and returns the targets
// in table order.
func (v *recordValidator) checkOutputs() []string {
	seen := map[string]int{}
	var outputs []string
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		if a.Key != KeyFunction {
			continue
		}
		if line, dup := seen[a.Target]; dup {
			v.fail(a, fmt.Errorf("%w: %s already driven at line %d", ErrDuplicateTarget, a.Target, line))
			continue
		}
		seen[a.Target] = a.Line
		outputs = append(outputs, a.Target)
	}
	if len(outputs) == 0 {
		v.fail(nil, ErrNoOutputs)
	}
	return outputs
}

// checkSequential enforces exactly one trigger and one matching state update
// whenever either half is present: clocked_on pairs with next_state, enable
// with data_in.
func (v *recordValidator) checkSequential() {
	var triggers, updates []*Attribute
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		switch a.Key {
		case KeyClockedOn, KeyEnable:
			triggers = append(triggers, a)
		case KeyNextState, KeyDataIn:
			updates = append(updates, a)
		}
	}
	if len(triggers) == 0 && len(updates) == 0 {
		return
	}

	switch {
	case len(triggers) == 0:
		v.fail(updates[0], fmt.Errorf("%w: %s without clocked_on or enable", ErrTriggerPairing, updates[0].Key))
		return
	case len(triggers) > 1:
		v.fail(triggers[1], fmt.Errorf("%w: %d trigger attributes, want exactly one", ErrTriggerPairing, len(triggers)))
	}
	switch {
	case len(updates) == 0:
		v.fail(triggers[0], fmt.Errorf("%w: %s without next_state or data_in", ErrTriggerPairing, triggers[0].Key))
		return
	case len(updates) > 1:
		v.fail(updates[1], fmt.Errorf("%w: %d state update attributes, want exactly one", ErrTriggerPairing, len(updates)))
	}

	trigger, update := triggers[0], updates[0]
	want := KeyNextState
	if trigger.Key == KeyEnable {
		want = KeyDataIn
	}
	if update.Key != want {
		v.fail(update, fmt.Errorf("%w: %s pairs with %s, not %s", ErrTriggerPairing, trigger.Key, want, update.Key))
	}
}

// checkControls rejects set/reset on combinational primitives and repeated
// single-valued controls.
func (v *recordValidator) checkControls(kind Kind) {
	seen := map[Key]bool{}
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		switch a.Key {
		case KeyClear, KeyPreset:
			if !kind.Sequential() {
				v.fail(a, fmt.Errorf("%w: %s", ErrControlOnCombinational, a.Key))
				continue
			}
		case KeyThreeState:
		default:
			continue
		}
		if seen[a.Key] {
			v.fail(a, fmt.Errorf("%w: %s", ErrRepeatedControl, a.Key))
		}
		seen[a.Key] = true
	}
}

// checkPseudoSignals restricts IQ to the right-hand side of the Q function
// and IQB to that of QB, on sequential primitives only.
func (v *recordValidator) checkPseudoSignals(kind Kind) {
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		if a.Key == KeyFunction && isPseudo(a.Target) {
			v.fail(a, fmt.Errorf("%w: %s cannot be an output", ErrPseudoSignal, a.Target))
			continue
		}
		for _, name := range Idents(a.Expr) {
			if !isPseudo(name) {
				continue
			}
			switch {
			case !kind.Sequential():
				v.fail(a, fmt.Errorf("%w: %s on a combinational primitive", ErrPseudoSignal, name))
			case a.Key != KeyFunction:
				v.fail(a, fmt.Errorf("%w: %s outside a function entry", ErrPseudoSignal, name))
			case a.Target != pseudoOwner(name):
				v.fail(a, fmt.Errorf("%w: %s may only drive %s", ErrPseudoSignal, name, pseudoOwner(name)))
			}
		}
	}
}

// checkPins warns about identifiers that are neither a known input
// convention nor an output of the same primitive, and returns the inputs.
func (v *recordValidator) checkPins(outputs []string) []string {
	isOutput := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		isOutput[o] = true
	}
	seen := map[string]bool{}
	var inputs []string
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		for _, name := range Idents(a.Expr) {
			if seen[name] || isPseudo(name) || isOutput[name] {
				continue
			}
			seen[name] = true
			inputs = append(inputs, name)
			if !v.pins.Known(name) {
				v.warn(a, "undeclared pin %s", name)
			}
		}
	}
	return inputs
}

// checkConstants warns about functions that do not depend on their inputs.
func (v *recordValidator) checkConstants() {
	for i := range v.rec.Attributes {
		a := &v.rec.Attributes[i]
		if a.Key != KeyFunction {
			continue
		}
		if val, ok := Constant(a.Expr); ok {
			v.warn(a, "function %s is constant %s", a.Target, boolDigit(val))
		}
	}
}

func isPseudo(name string) bool { return name == StateSignal || name == StateSignalBar }

func pseudoOwner(name string) string {
	if name == StateSignalBar {
		return StateOutputBar
	}
	return StateOutput
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// PinConventions is the set of input pin names accepted without a warning.
type PinConventions struct {
	names map[string]struct{}
}

var defaultPins = []string{
	"S", "S0", "S1", "CI",
	"CLK", "D", "E", "EN", "G",
	"R", "RN", "SN", "SE", "SI", "OE",
}

// NewPinConventions returns the built-in conventions plus extra names.
func NewPinConventions(extra ...string) *PinConventions {
	pc := &PinConventions{names: make(map[string]struct{}, len(defaultPins)+len(extra))}
	for _, n := range defaultPins {
		pc.names[n] = struct{}{}
	}
	for _, n := range extra {
		pc.names[strings.TrimSpace(n)] = struct{}{}
	}
	return pc
}

// Known reports whether name is a conventional input pin. Data inputs A..D
// may carry a numeric index (A0, B1, ...).
func (pc *PinConventions) Known(name string) bool {
	if _, ok := pc.names[name]; ok {
		return true
	}
	if name == "" || name[0] < 'A' || name[0] > 'D' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}
