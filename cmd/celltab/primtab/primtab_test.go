package primtab

import (
	"errors"
	"strings"
	"testing"

	"celltab/cmd/celltab/prim"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func requireParseOK(t *testing.T, text string) []prim.RawRecord {
	t.Helper()
	recs, err := Parse([]byte(text), prim.DefaultLimits())
	if err != nil {
		t.Fatalf("expected parse success, got: %v", err)
	}
	return recs
}

func requireFormatErr(t *testing.T, text string, target error, wantSubstrs ...string) *prim.FormatError {
	t.Helper()
	_, err := Parse([]byte(text), prim.DefaultLimits())
	if err == nil {
		t.Fatalf("expected parse error but got none")
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	var fe *prim.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *prim.FormatError, got %T", err)
	}
	for _, sub := range wantSubstrs {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("error %q does not contain %q", err.Error(), sub)
		}
	}
	return fe
}

func requireBuildOK(t *testing.T, text string) *prim.Registry {
	t.Helper()
	reg, _, err := Build([]byte(text))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	return reg
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

func TestParse_SkipsCommentsAndBlankLines(t *testing.T) {
	recs := requireParseOK(t, "# header\n\n   # indented comment\nBUF function Y=A\r\n\t\nINV\tfunction\tY=!A\n")
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Name != "BUF" || recs[0].Line != 4 {
		t.Fatalf("unexpected first record %+v", recs[0])
	}
	if recs[1].Name != "INV" || recs[1].Line != 6 {
		t.Fatalf("unexpected second record %+v", recs[1])
	}
	if got := recs[0].Entries[0].Value; got != "Y=A" {
		t.Fatalf("CR not stripped: %q", got)
	}
}

func TestParse_RepeatedKeysAndSpacedFunctions(t *testing.T) {
	recs := requireParseOK(t, "HA function S = (A & !B) | (!A & B)  function C = A & B\n")
	entries := recs[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != prim.KeyFunction || entries[0].Value != "S = (A & !B) | (!A & B)" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Value != "C = A & B" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestParse_ControlValues(t *testing.T) {
	recs := requireParseOK(t, "DFFR clocked_on CLK next_state D clear !RN function Q=IQ\n")
	var keys []string
	for _, e := range recs[0].Entries {
		keys = append(keys, string(e.Key)+"="+e.Value)
	}
	want := "clocked_on=CLK next_state=D clear=!RN function=Q=IQ"
	if got := strings.Join(keys, " "); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParse_FormatErrors(t *testing.T) {
	t.Run("missing assignment", func(t *testing.T) {
		fe := requireFormatErr(t, "BUF function Y\n", prim.ErrMissingAssign, "phase=load", "primitive=BUF", "line=1")
		if fe.Primitive != "BUF" || fe.Line != 1 {
			t.Fatalf("unexpected location %+v", fe)
		}
	})
	t.Run("empty function", func(t *testing.T) {
		requireFormatErr(t, "BUF function three_state EN\n", prim.ErrMissingAssign)
	})
	t.Run("unknown key", func(t *testing.T) {
		requireFormatErr(t, "BUF function Y=A drive X4\n", prim.ErrUnknownKey, `"drive"`)
	})
	t.Run("unknown key after function expression", func(t *testing.T) {
		requireFormatErr(t, "AND2 function Y=A&B bogus X\n", prim.ErrUnknownKey, "primitive=AND2", `"bogus"`)
	})
	t.Run("unknown key after control", func(t *testing.T) {
		requireFormatErr(t, "TBUF function Y=A three_state !EN drive X4\n", prim.ErrUnknownKey, `"drive"`)
	})
	t.Run("value before any key", func(t *testing.T) {
		requireFormatErr(t, "BUF Y=A\n", prim.ErrUnknownKey)
	})
	t.Run("no attributes", func(t *testing.T) {
		requireFormatErr(t, "\nBUF\n", prim.ErrEmptyRecord, "line=2")
	})
	t.Run("control with two tokens", func(t *testing.T) {
		requireFormatErr(t, "DFF clocked_on CLK D next_state D function Q=IQ\n", prim.ErrArity, "clocked_on")
	})
	t.Run("control without value", func(t *testing.T) {
		requireFormatErr(t, "DFF next_state D function Q=IQ clocked_on\n", prim.ErrArity)
	})
	t.Run("bad name", func(t *testing.T) {
		fe := requireFormatErr(t, "2AND function Y=A&B\n", prim.ErrBadName)
		if fe.Primitive != "" {
			t.Fatalf("unreadable name should not be attributed, got %q", fe.Primitive)
		}
	})
	t.Run("line too long", func(t *testing.T) {
		long := "BUF function Y=" + strings.Repeat("A&", 3000) + "A\n"
		requireFormatErr(t, long, prim.ErrLineTooLong)
	})
	t.Run("too many attributes", func(t *testing.T) {
		line := "X" + strings.Repeat(" function Y=A", 65) + "\n"
		requireFormatErr(t, line, prim.ErrTooManyAttrs)
	})
}

func TestParse_DuplicateNameIsFormatError(t *testing.T) {
	text := "AND2 function Y=A&B\nOR2 function Y=A|B\nAND2 function Y=!(A&B)\n"
	fe := requireFormatErr(t, text, prim.ErrDuplicatePrimitive, "primitive=AND2", "line=3", "first defined at line 1")
	if fe.Line != 3 {
		t.Fatalf("expected line 3, got %d", fe.Line)
	}

	reg, _, err := Build([]byte(text))
	if err == nil || reg != nil {
		t.Fatal("duplicate must not produce a registry")
	}
}

func TestParse_CustomLimits(t *testing.T) {
	_, err := Parse([]byte("BUF function Y=A\n"), prim.Limits{MaxLineLen: 8})
	if !errors.Is(err, prim.ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
	recs, err := Parse([]byte("# "+strings.Repeat("-", 64)+"\nBUF\tfunction Y\n"), prim.Limits{MaxLineLen: 16})
	if !errors.Is(err, prim.ErrMissingAssign) || recs != nil {
		t.Fatalf("long comment should be skipped before the length check, got %v", err)
	}
	recs = requireParseOK(t, "# "+strings.Repeat("x", 5000)+"\n\nBUF function Y=A\n")
	if len(recs) != 1 || recs[0].Line != 3 {
		t.Fatalf("unexpected records %+v", recs)
	}
	_, err = Parse([]byte("HA function S=A function C=B\n"), prim.Limits{MaxAttrs: 1})
	if !errors.Is(err, prim.ErrTooManyAttrs) {
		t.Fatalf("expected ErrTooManyAttrs, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuild_TrailingOperatorRejectsWholeTable(t *testing.T) {
	text := "BUF function Y=A\nAND2 function Y=A&\nOR2 function Y=A|B\n"
	reg, report, err := Build([]byte(text))
	if reg != nil || report != nil {
		t.Fatal("expected no registry and no report")
	}
	var se *prim.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *prim.SyntaxError, got %v", err)
	}
	if se.Primitive != "AND2" || se.Line != 2 {
		t.Fatalf("unexpected attribution %+v", se)
	}
}

func TestBuild_ParenthesisedNextState(t *testing.T) {
	reg := requireBuildOK(t, "SDFF clocked_on CLK next_state (D&!SE)|(SI&SE) function Q=IQ\n")
	p, err := reg.Lookup("SDFF")
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != prim.FlipFlop {
		t.Fatalf("expected flip-flop, got %v", p.Kind())
	}
	if got := strings.Join(p.Inputs(), ","); got != "CLK,D,SE,SI" {
		t.Fatalf("unexpected inputs %q", got)
	}
}

func TestBuild_ValidationErrorsAggregate(t *testing.T) {
	text := strings.Join([]string{
		"HA function S=A function S=B",
		"LATCH enable G function Q=IQ",
		"INV function Y=!A clear RN",
	}, "\n")
	_, report, err := Build([]byte(text))
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(report.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(report.Errors), err)
	}
	for _, target := range []error{prim.ErrDuplicateTarget, prim.ErrTriggerPairing, prim.ErrControlOnCombinational} {
		if !errors.Is(err, target) {
			t.Errorf("expected %v in %v", target, err)
		}
	}
}
