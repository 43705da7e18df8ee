package prim

import (
	"log/slog"
	"time"
)

// Limits bounds the input a build accepts.
type Limits struct {
	MaxDepth   int // expression nesting
	MaxLineLen int // bytes per table line
	MaxAttrs   int // attributes per record
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth, MaxLineLen: 4096, MaxAttrs: 64}
}

// Source produces raw records for an engine, honouring its limits.
type Source interface {
	Records(Limits) ([]RawRecord, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(Limits) ([]RawRecord, error)

func (f SourceFunc) Records(l Limits) ([]RawRecord, error) { return f(l) }

type Engine struct {
	logger   *slog.Logger
	metrics  *Metrics
	limits   Limits
	validate ValidateOptions
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLimits overrides the default limits; zero fields keep their default.
func WithLimits(l Limits) Option {
	return func(e *Engine) {
		if l.MaxDepth > 0 {
			e.limits.MaxDepth = l.MaxDepth
		}
		if l.MaxLineLen > 0 {
			e.limits.MaxLineLen = l.MaxLineLen
		}
		if l.MaxAttrs > 0 {
			e.limits.MaxAttrs = l.MaxAttrs
		}
	}
}

func WithKnownPins(pins ...string) Option {
	return func(e *Engine) { e.validate.KnownPins = append(e.validate.KnownPins, pins...) }
}

func WithStrict(strict bool) Option {
	return func(e *Engine) { e.validate.Strict = strict }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default(), limits: DefaultLimits()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Limits returns the effective limits.
func (e *Engine) Limits() Limits { return e.limits }

// Load reads records from src and builds a registry from them.
func (e *Engine) Load(src Source) (*Registry, *Report, error) {
	start := time.Now()
	raw, err := src.Records(e.limits)
	if err != nil {
		e.finish(start, nil, nil, err)
		return nil, nil, err
	}
	return e.build(start, raw)
}

// Build parses and validates raw records. Expression errors abort at once;
// validation errors are collected over the whole table and returned
// together, with the report. A registry is returned only when there are no
// errors at all.
func (e *Engine) Build(raw []RawRecord) (*Registry, *Report, error) {
	return e.build(time.Now(), raw)
}

func (e *Engine) build(start time.Time, raw []RawRecord) (*Registry, *Report, error) {
	records, err := Resolve(raw, e.limits.MaxDepth)
	if err != nil {
		e.finish(start, nil, nil, err)
		return nil, nil, err
	}
	e.logger.Debug("parsed table", slog.Int("records", len(records)))

	models, report := Validate(records, e.validate)
	for _, w := range report.Warnings {
		e.logger.Warn("primitive warning",
			slog.String("primitive", w.Primitive),
			slog.String("attribute", w.Attribute),
			slog.Int("line", w.Line),
			slog.String("message", w.Message))
	}
	if err := report.Err(); err != nil {
		e.finish(start, nil, report, err)
		return nil, report, err
	}

	reg := newRegistry(models)
	e.finish(start, reg, report, nil)
	return reg, report, nil
}

func (e *Engine) finish(start time.Time, reg *Registry, report *Report, err error) {
	result := resultOf(err)
	if err != nil {
		e.logger.Debug("registry build failed", slog.String("result", result), slog.String("error", err.Error()))
	} else {
		e.logger.Debug("registry built",
			slog.Int("primitives", reg.Len()),
			slog.Int("warnings", len(report.Warnings)),
			slog.Duration("elapsed", time.Since(start)))
	}
	if e.metrics == nil {
		return
	}
	e.metrics.Builds.WithLabelValues(result).Inc()
	e.metrics.BuildSeconds.Observe(time.Since(start).Seconds())
	if report != nil {
		e.metrics.Warnings.Add(float64(len(report.Warnings)))
		e.metrics.Violations.Add(float64(len(report.Errors)))
	}
	if reg != nil {
		e.metrics.Primitives.Set(float64(reg.Len()))
	}
}
