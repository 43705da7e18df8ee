// Package primtab reads the line-oriented primitive table format.
//
// Each data line is
//
//	NAME KEY VALUE [KEY VALUE ...]
//
// where KEY is one of the attribute keys known to package prim. The value of
// a function key is "PIN=EXPR" and may contain spaces; every other key takes
// exactly one signal token, optionally prefixed with '!'. Lines whose first
// non-blank character is '#' are comments; blank lines are ignored. The line
// length limit applies to data lines only.
package primtab

import (
	"fmt"
	"strings"

	"celltab/cmd/celltab/prim"
)

// Parse splits table text into raw records. It fails with a
// *prim.FormatError on the first structurally malformed line.
func Parse(data []byte, limits prim.Limits) ([]prim.RawRecord, error) {
	var out []prim.RawRecord
	firstLine := map[string]int{}

	for i, line := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if limits.MaxLineLen > 0 && len(line) > limits.MaxLineLen {
			return nil, &prim.FormatError{Line: lineNo, Err: fmt.Errorf("%w: %d > %d bytes", prim.ErrLineTooLong, len(line), limits.MaxLineLen)}
		}

		rec, err := parseRecord(trimmed, lineNo, limits.MaxAttrs)
		if err != nil {
			return nil, err
		}
		if first, dup := firstLine[rec.Name]; dup {
			return nil, &prim.FormatError{
				Primitive: rec.Name,
				Line:      lineNo,
				Err:       fmt.Errorf("%w: first defined at line %d", prim.ErrDuplicatePrimitive, first),
			}
		}
		firstLine[rec.Name] = lineNo
		out = append(out, rec)
	}
	return out, nil
}

func parseRecord(line string, lineNo, maxAttrs int) (prim.RawRecord, error) {
	fields := strings.Fields(line)
	name := fields[0]
	if !isName(name) {
		return prim.RawRecord{}, &prim.FormatError{Line: lineNo, Err: fmt.Errorf("%w: %q", prim.ErrBadName, name)}
	}
	fail := func(err error) (prim.RawRecord, error) {
		return prim.RawRecord{}, &prim.FormatError{Primitive: name, Line: lineNo, Err: err}
	}

	rest := fields[1:]
	if len(rest) == 0 {
		return fail(prim.ErrEmptyRecord)
	}

	rec := prim.RawRecord{Name: name, Line: lineNo}
	for i := 0; i < len(rest); {
		key, ok := prim.ParseKey(rest[i])
		if !ok {
			return fail(fmt.Errorf("%w: %q", prim.ErrUnknownKey, rest[i]))
		}
		j := i + 1
		for j < len(rest) && !keyPosition(rest[j]) {
			j++
		}
		values := rest[i+1 : j]

		var value string
		if key == prim.KeyFunction {
			value = strings.Join(values, " ")
			if !strings.Contains(value, "=") {
				return fail(fmt.Errorf("%w: %q", prim.ErrMissingAssign, value))
			}
		} else {
			if len(values) != 1 {
				return fail(fmt.Errorf("%w: %s takes one signal, got %d tokens", prim.ErrArity, key, len(values)))
			}
			value = values[0]
		}

		rec.Entries = append(rec.Entries, prim.RawEntry{Key: key, Value: value, Line: lineNo})
		if maxAttrs > 0 && len(rec.Entries) > maxAttrs {
			return fail(fmt.Errorf("%w: more than %d", prim.ErrTooManyAttrs, maxAttrs))
		}
		i = j
	}
	return rec, nil
}

// keyPosition reports whether tok ends the current value. Pins are
// uppercase, so a lowercase token is always a key, known or not.
func keyPosition(tok string) bool {
	if _, ok := prim.ParseKey(tok); ok {
		return true
	}
	return tok[0] >= 'a' && tok[0] <= 'z'
}

func isName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// Text is table source held in memory.
type Text []byte

// Records implements prim.Source.
func (t Text) Records(l prim.Limits) ([]prim.RawRecord, error) {
	return Parse(t, l)
}

// Build parses, validates and registers a table in one step.
func Build(data []byte, opts ...prim.Option) (*prim.Registry, *prim.Report, error) {
	return prim.NewEngine(opts...).Load(Text(data))
}
