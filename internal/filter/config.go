package filter

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Threshold keys accepted in configuration maps.
const (
	KeyFreebayesScore = "freebayes_score"
	KeyFrequency      = "frequency"
	KeyMinDepth       = "min_depth"
	KeyForwardDepth   = "forward_depth"
	KeyReverseDepth   = "reverse_depth"
	KeyStrandRatio    = "strand_ratio"
)

// Keys lists the threshold keys in canonical order.
var Keys = []string{
	KeyFreebayesScore,
	KeyFrequency,
	KeyMinDepth,
	KeyForwardDepth,
	KeyReverseDepth,
	KeyStrandRatio,
}

// Config is an immutable set of admission thresholds. The zero value admits
// every well-formed record with positive depths.
type Config struct {
	FreebayesScore float64 `mapstructure:"freebayes_score" json:"freebayes_score" yaml:"freebayes_score"` // QUAL >= t
	Frequency      float64 `mapstructure:"frequency" json:"frequency" yaml:"frequency"`                   // AO[0]/DP >= t
	MinDepth       int     `mapstructure:"min_depth" json:"min_depth" yaml:"min_depth"`                   // DP > t
	ForwardDepth   int     `mapstructure:"forward_depth" json:"forward_depth" yaml:"forward_depth"`       // SRF+sum(SAF) > t
	ReverseDepth   int     `mapstructure:"reverse_depth" json:"reverse_depth" yaml:"reverse_depth"`       // SRR+sum(SAR) > t
	StrandRatio    float64 `mapstructure:"strand_ratio" json:"strand_ratio" yaml:"strand_ratio"`          // strand balance[0] >= t
}

// DefaultConfig returns the permissive all-zero configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge returns a copy of c with the recognised keys of m applied.
// Unknown keys are ignored and absent keys keep their current value.
// Numeric strings are accepted.
func (c Config) Merge(m map[string]any) (Config, error) {
	if len(m) == 0 {
		return c, nil
	}

	out := c
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c, fmt.Errorf("create config decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return c, fmt.Errorf("decode filter config: %w", err)
	}
	return out, nil
}

// Map returns the thresholds keyed by their configuration names.
func (c Config) Map() map[string]any {
	return map[string]any{
		KeyFreebayesScore: c.FreebayesScore,
		KeyFrequency:      c.Frequency,
		KeyMinDepth:       c.MinDepth,
		KeyForwardDepth:   c.ForwardDepth,
		KeyReverseDepth:   c.ReverseDepth,
		KeyStrandRatio:    c.StrandRatio,
	}
}

// String renders the configuration as a JSON object in canonical key order.
func (c Config) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprint(c.Map())
	}
	return string(b)
}
