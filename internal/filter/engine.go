// Package filter applies threshold filters to freebayes variant calls and
// collects the accepted records for export.
package filter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sequana/fbfilter/internal/metrics"
	"github.com/sequana/fbfilter/internal/vcf"
)

// Reason names the threshold that rejected a record.
type Reason string

// Rejection reasons, in evaluation order.
const (
	Accepted             Reason = ""
	RejectFreebayesScore Reason = KeyFreebayesScore
	RejectMinDepth       Reason = KeyMinDepth
	RejectForwardDepth   Reason = KeyForwardDepth
	RejectReverseDepth   Reason = KeyReverseDepth
	RejectFrequency      Reason = KeyFrequency
	RejectStrandRatio    Reason = KeyStrandRatio
)

// Decision is the outcome of evaluating one record. Frequencies and
// StrandBalances are only set when every threshold passed.
type Decision struct {
	Reason         Reason
	Frequencies    []float64
	StrandBalances []float64
}

// Accepted reports whether the record passed all thresholds.
func (d Decision) Accepted() bool {
	return d.Reason == Accepted
}

// Evaluate applies the thresholds to v, stopping at the first failure.
// Only the first alternate allele's frequency and strand balance are tested.
// A required INFO field that is missing or malformed is returned as an error.
func (c Config) Evaluate(v *vcf.Variant) (Decision, error) {
	if v.Qual < c.FreebayesScore {
		return Decision{Reason: RejectFreebayesScore}, nil
	}

	dp, err := v.InfoInt("DP")
	if err != nil {
		return Decision{}, err
	}
	if dp <= c.MinDepth {
		return Decision{Reason: RejectMinDepth}, nil
	}

	fwd, err := metrics.ForwardDepth(v)
	if err != nil {
		return Decision{}, err
	}
	if fwd <= c.ForwardDepth {
		return Decision{Reason: RejectForwardDepth}, nil
	}

	rev, err := metrics.ReverseDepth(v)
	if err != nil {
		return Decision{}, err
	}
	if rev <= c.ReverseDepth {
		return Decision{Reason: RejectReverseDepth}, nil
	}

	freqs, err := metrics.AlleleFrequency(v)
	if err != nil {
		return Decision{}, err
	}
	if len(freqs) == 0 {
		return Decision{}, fmt.Errorf("%s:%d: no alternate allele observations", v.Chrom, v.Pos)
	}
	if freqs[0] < c.Frequency {
		return Decision{Reason: RejectFrequency}, nil
	}

	bal, err := metrics.StrandBalance(v)
	if err != nil {
		return Decision{}, err
	}
	if len(bal) == 0 {
		return Decision{}, fmt.Errorf("%s:%d: no alternate strand counts", v.Chrom, v.Pos)
	}
	if bal[0] < c.StrandRatio {
		return Decision{Reason: RejectStrandRatio}, nil
	}

	return Decision{Frequencies: freqs, StrandBalances: bal}, nil
}

// Admit reports whether v passes every threshold.
func (c Config) Admit(v *vcf.Variant) (bool, error) {
	d, err := c.Evaluate(v)
	if err != nil {
		return false, err
	}
	return d.Accepted(), nil
}

// Engine filters one restartable variant stream. It owns the stream and a
// mutable current configuration; each produced Result keeps its own snapshot.
// An Engine is not safe for concurrent use.
type Engine struct {
	parser vcf.VariantParser
	source string
	config Config
	logger *zap.Logger
	spent  bool // stream consumed and not rewindable
}

// Open opens the VCF at path and returns an engine over it. A missing or
// unreadable file fails here; errors.Is(err, fs.ErrNotExist) holds for
// missing files.
func Open(path string) (*Engine, error) {
	p, err := vcf.NewParser(path)
	if err != nil {
		return nil, fmt.Errorf("open variant source %s: %w", path, err)
	}
	e := NewEngine(p)
	e.source = path
	return e, nil
}

// NewEngine creates an engine with the default configuration over parser.
func NewEngine(parser vcf.VariantParser) *Engine {
	return &Engine{
		parser: parser,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for filter progress messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// SetSource records a name for the stream, used in result provenance.
func (e *Engine) SetSource(name string) {
	e.source = name
}

// Source returns the stream name ("" when unknown).
func (e *Engine) Source() string {
	return e.source
}

// Config returns the current configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Update merges m into the current configuration.
func (e *Engine) Update(m map[string]any) error {
	cfg, err := e.config.Merge(m)
	if err != nil {
		return err
	}
	e.config = cfg
	return nil
}

// Reset restores every threshold to zero.
func (e *Engine) Reset() {
	e.config = DefaultConfig()
}

// Header returns the source header lines.
func (e *Engine) Header() []string {
	return e.parser.Header()
}

// Close closes the underlying stream.
func (e *Engine) Close() error {
	return e.parser.Close()
}

// Filter merges override (which may be nil) into the current configuration
// and runs one pass with the result.
func (e *Engine) Filter(override map[string]any) (*Result, error) {
	if err := e.Update(override); err != nil {
		return nil, err
	}
	return e.FilterWith(e.config)
}

// FilterWith runs one pass over the stream with cfg, without touching the
// engine's current configuration. The stream is rewound afterwards so the
// engine can be filtered again. A malformed record aborts the pass.
func (e *Engine) FilterWith(cfg Config) (*Result, error) {
	if e.spent {
		return nil, fmt.Errorf("filter %s: %w", e.source, vcf.ErrNotRewindable)
	}

	variants, err := e.scan(cfg)

	if rerr := e.parser.Rewind(); rerr != nil {
		switch {
		case errors.Is(rerr, vcf.ErrNotRewindable):
			e.spent = true
		case err == nil:
			return nil, fmt.Errorf("rewind variant source: %w", rerr)
		default:
			e.logger.Warn("rewind after failed pass", zap.Error(rerr))
		}
	}
	if err != nil {
		return nil, err
	}

	return newResult(variants, cfg, e.parser.Header(), e.source), nil
}

// scan performs the single forward pass.
func (e *Engine) scan(cfg Config) ([]*Variant, error) {
	var (
		accepted []*Variant
		total    int
		rejected = make(map[Reason]int)
	)

	for {
		rec, err := e.parser.Next()
		if err != nil {
			return nil, fmt.Errorf("read variant: %w", err)
		}
		if rec == nil {
			break
		}
		total++

		d, err := cfg.Evaluate(rec)
		if err != nil {
			return nil, fmt.Errorf("filter variant at line %d: %w", e.parser.LineNumber(), err)
		}
		if !d.Accepted() {
			rejected[d.Reason]++
			e.logger.Debug("variant rejected",
				zap.String("chrom", rec.Chrom),
				zap.Int64("pos", rec.Pos),
				zap.String("threshold", string(d.Reason)))
			continue
		}

		v, err := newVariant(rec, d.Frequencies, d.StrandBalances)
		if err != nil {
			return nil, fmt.Errorf("summarize variant at line %d: %w", e.parser.LineNumber(), err)
		}
		accepted = append(accepted, v)
	}

	fields := []zap.Field{
		zap.String("source", e.source),
		zap.Int("variants", total),
		zap.Int("accepted", len(accepted)),
	}
	for _, key := range Keys {
		if n := rejected[Reason(key)]; n > 0 {
			fields = append(fields, zap.Int("rejected_"+key, n))
		}
	}
	e.logger.Info("filter pass complete", fields...)

	return accepted, nil
}
