package prim

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBuildErr(t *testing.T, rs []RawRecord, target error) error {
	t.Helper()
	reg, _, err := NewEngine().Build(rs)
	if err == nil {
		t.Fatal("expected build error")
	}
	if reg != nil {
		t.Fatal("expected no registry on error")
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	return err
}

func TestEngine_SyntaxErrorAbortsWholeTable(t *testing.T) {
	err := requireBuildErr(t, []RawRecord{
		raw("BUF", 1, "function", "Y=A"),
		raw("AND2", 2, "function", "Y=A&"),
		raw("OR2", 3, "function", "Y=A|B"),
	}, ErrMissingOperand)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "AND2", se.Primitive)
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, 2, se.Pos)
	mustContain(t, err.Error(), "phase=parse", "primitive=AND2", "line=2")
}

func TestEngine_FunctionValueErrors(t *testing.T) {
	cases := []struct {
		value string
		want  error
	}{
		{"YA&B", ErrMissingAssign},
		{"Y=A=B", ErrMissingAssign},
		{"Y=", ErrMissingAssign},
		{"=A", ErrBadPin},
		{"y=A", ErrBadPin},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			err := requireBuildErr(t, []RawRecord{raw("X", 5, "function", tc.value)}, tc.want)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "X", fe.Primitive)
			assert.Equal(t, 5, fe.Line)
		})
	}
}

func TestEngine_ControlArityAndUnknownKey(t *testing.T) {
	requireBuildErr(t, []RawRecord{raw("X", 1, "function", "Q=IQ", "clocked_on", "CLK D")}, ErrArity)
	requireBuildErr(t, []RawRecord{raw("X", 1, "function", "Y=A", "three_state", " ")}, ErrArity)
	requireBuildErr(t, []RawRecord{raw("X", 1, "function", "Y=A", "drive", "X4")}, ErrUnknownKey)
}

func TestEngine_ControlSignalPolarity(t *testing.T) {
	reg, _, err := NewEngine().Build([]RawRecord{
		raw("DFFN", 1, "clocked_on", "!CLK", "next_state", "(D&!SE)|(SI&SE)", "function", "Q=IQ"),
	})
	require.NoError(t, err)

	p, err := reg.Lookup("DFFN")
	require.NoError(t, err)
	clk, ok := p.Control(KeyClockedOn)
	require.True(t, ok)
	require.NotNil(t, clk.Signal)
	assert.Equal(t, "!CLK", clk.Signal.String())
	assert.True(t, clk.Signal.ActiveLow)

	ns, ok := p.Control(KeyNextState)
	require.True(t, ok)
	assert.Nil(t, ns.Signal, "compound next_state has no bare signal")
	assert.Equal(t, "D&!SE|SI&SE", ns.Text())
}

func TestEngine_ValidationErrorsReturnReport(t *testing.T) {
	reg, report, err := NewEngine().Build([]RawRecord{
		raw("A1", 1, "function", "Y=A", "function", "Y=B"),
		raw("A2", 2, "enable", "G", "function", "Q=IQ"),
	})
	require.Error(t, err)
	assert.Nil(t, reg)
	require.NotNil(t, report)
	assert.Len(t, report.Errors, 2)

	var ves ValidationErrors
	require.ErrorAs(t, err, &ves)
	assert.Len(t, ves, 2)
}

func TestEngine_LimitsAndOptions(t *testing.T) {
	e := NewEngine(WithLimits(Limits{MaxDepth: 2}))
	assert.Equal(t, Limits{MaxDepth: 2, MaxLineLen: 4096, MaxAttrs: 64}, e.Limits())

	_, _, err := e.Build([]RawRecord{raw("X", 1, "function", "Y=((A))")})
	require.NoError(t, err)
	_, _, err = e.Build([]RawRecord{raw("X", 1, "function", "Y=(((A)))")})
	assert.ErrorIs(t, err, ErrTooDeep)

	strict := NewEngine(WithStrict(true))
	_, _, err = strict.Build([]RawRecord{raw("X", 1, "function", "Y=A&VDD")})
	assert.ErrorIs(t, err, ErrStrictWarning)

	known := NewEngine(WithStrict(true), WithKnownPins("VDD"))
	_, _, err = known.Build([]RawRecord{raw("X", 1, "function", "Y=A&VDD")})
	assert.NoError(t, err)
}

func TestEngine_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, report, err := NewEngine(WithLogger(logger)).Build([]RawRecord{raw("X", 3, "function", "Y=A&FOO")})
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)

	out := buf.String()
	mustContain(t, out, "level=WARN", "primitive=X", "undeclared pin FOO", "line=3")
	mustContain(t, out, "level=DEBUG", "registry built", "primitives=1")
}

func TestEngine_LoadSource(t *testing.T) {
	src := SourceFunc(func(l Limits) ([]RawRecord, error) {
		assert.Equal(t, DefaultLimits(), l)
		return []RawRecord{raw("BUF", 1, "function", "Y=A")}, nil
	})
	reg, _, err := NewEngine().Load(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"BUF"}, reg.Names())

	failing := SourceFunc(func(Limits) ([]RawRecord, error) {
		return nil, &FormatError{Primitive: "X", Line: 1, Err: ErrEmptyRecord}
	})
	_, report, err := NewEngine().Load(failing)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrEmptyRecord)
}

func TestEngine_Metrics(t *testing.T) {
	preg := prometheus.NewRegistry()
	m := NewMetrics(preg)
	e := NewEngine(WithMetrics(m))

	_, _, err := e.Build([]RawRecord{
		raw("BUF", 1, "function", "Y=A"),
		raw("ODD", 2, "function", "Y=FOO"),
	})
	require.NoError(t, err)
	_, _, err = e.Build([]RawRecord{raw("AND2", 1, "function", "Y=A&")})
	require.Error(t, err)
	_, _, err = e.Build([]RawRecord{raw("HA", 1, "function", "S=A", "function", "S=B")})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(ResultSyntax)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues(ResultValidation)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Primitives))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Violations))
	// three result series, gauge, two counters, histogram
	assert.Equal(t, 7, testutil.CollectAndCount(preg))
}
