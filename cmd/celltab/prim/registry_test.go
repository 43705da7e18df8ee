package prim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRegistry(t *testing.T, rs ...RawRecord) *Registry {
	t.Helper()
	reg, _, err := NewEngine().Build(rs)
	require.NoError(t, err)
	return reg
}

func TestRegistry_LookupAndOrder(t *testing.T) {
	reg := buildRegistry(t,
		raw("OR2", 1, "function", "Y=A|B"),
		raw("AND2", 2, "function", "Y=A&B"),
		raw("DFF", 3, "clocked_on", "CLK", "next_state", "D", "function", "Q=IQ"),
	)

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"OR2", "AND2", "DFF"}, reg.Names())

	p, err := reg.Lookup("AND2")
	require.NoError(t, err)
	assert.Equal(t, "AND2", p.Name())
	assert.Equal(t, 2, p.Line())
	fn, ok := p.Function("Y")
	require.True(t, ok)
	assert.Equal(t, "A&B", Render(fn))

	_, err = reg.Lookup("NAND9")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "NAND9")

	ffs := reg.ByKind(FlipFlop)
	require.Len(t, ffs, 1)
	assert.Equal(t, "DFF", ffs[0].Name())
	assert.Empty(t, reg.ByKind(Latch))
	assert.Len(t, reg.All(), 3)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg := buildRegistry(t, raw("HA", 1, "function", "S=(A&!B)|(!A&B)", "function", "C=A&B"))

	names := reg.Names()
	names[0] = "MUTATED"
	assert.Equal(t, []string{"HA"}, reg.Names())

	p, err := reg.Lookup("HA")
	require.NoError(t, err)
	outs := p.Outputs()
	outs[0] = "Z"
	attrs := p.Attributes()
	attrs[0].Target = "Z"
	assert.Equal(t, []string{"S", "C"}, p.Outputs())
	assert.Equal(t, "S", p.Attributes()[0].Target)
}

func TestRegistry_WritesThroughAccessorsDoNotLeak(t *testing.T) {
	reg := buildRegistry(t,
		raw("AND2", 1, "function", "Y=A&B"),
		raw("TBUFI", 2, "function", "Y=A", "three_state", "EN"),
		raw("DFFR", 3, "clocked_on", "CLK", "next_state", "D", "clear", "!RN", "function", "Q=IQ"),
	)

	and2, err := reg.Lookup("AND2")
	require.NoError(t, err)
	fn, ok := and2.Function("Y")
	require.True(t, ok)
	fn.(And).Xs[0] = Literal{Name: "Z"}
	and2.Attributes()[0].Expr.(And).Xs[1] = Literal{Name: "Z"}
	fn, _ = and2.Function("Y")
	assert.Equal(t, "A&B", Render(fn))

	tbufi, err := reg.Lookup("TBUFI")
	require.NoError(t, err)
	for _, a := range tbufi.Attributes() {
		if a.Signal != nil {
			a.Signal.ActiveLow = true
		}
	}
	ts, ok := tbufi.Control(KeyThreeState)
	require.True(t, ok)
	require.NotNil(t, ts.Signal)
	assert.Equal(t, "EN", ts.Signal.String())

	ts.Signal.Pin = "OE"
	ts, _ = tbufi.Control(KeyThreeState)
	assert.Equal(t, "EN", ts.Signal.Pin)

	dffr, err := reg.Lookup("DFFR")
	require.NoError(t, err)
	clr, ok := dffr.Control(KeyClear)
	require.True(t, ok)
	clr.Signal.ActiveLow = false
	clr, _ = dffr.Control(KeyClear)
	assert.Equal(t, "!RN", clr.Signal.String())
}

func TestClone(t *testing.T) {
	orig := mustParse(t, "(A&!B)|!(C|D)")
	cp := Clone(orig)
	require.True(t, Equal(orig, cp))
	cp.(Or).Xs[0].(And).Xs[0] = Literal{Name: "Z"}
	cp.(Or).Xs[1].(Not).X.(Or).Xs[1] = Literal{Name: "Z"}
	assert.Equal(t, "A&!B|!(C|D)", Render(orig))
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := buildRegistry(t,
		raw("BUF", 1, "function", "Y=A"),
		raw("INV", 2, "function", "Y=!A"),
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, n := range reg.Names() {
					if _, err := reg.Lookup(n); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestPending_NotReadyUntilBuilt(t *testing.T) {
	release := make(chan struct{})
	want := buildRegistry(t, raw("BUF", 1, "function", "Y=A"))

	p := Start(context.Background(), func(context.Context) (*Registry, error) {
		<-release
		return want, nil
	})

	_, err := p.Registry()
	assert.ErrorIs(t, err, ErrNotReady)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	got, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = p.Registry()
	require.NoError(t, err)
	assert.Same(t, want, got)

	select {
	case <-p.Done():
	default:
		t.Fatal("Done not closed after build")
	}
}

func TestPending_FailureAndPanic(t *testing.T) {
	boom := errors.New("boom")
	p := Start(context.Background(), func(context.Context) (*Registry, error) {
		return nil, boom
	})
	reg, err := p.Wait(context.Background())
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, boom)

	p = Start(context.Background(), func(context.Context) (*Registry, error) {
		panic("bad table")
	})
	reg, err = p.Wait(context.Background())
	assert.Nil(t, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad table")
}
