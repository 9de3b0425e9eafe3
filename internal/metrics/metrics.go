// Package metrics derives per-allele quality metrics from freebayes INFO
// fields: allele frequency, strand balance and directional read depth.
package metrics

import (
	"errors"
	"fmt"

	"github.com/sequana/fbfilter/internal/vcf"
)

// ErrZeroDepth is returned when a frequency is requested for a record with DP=0.
var ErrZeroDepth = errors.New("total depth is zero")

// Ratio returns a/(a+b) folded into [0, 0.5]: 0 is fully one-sided and 0.5
// is perfectly balanced. Ratio(0, 0) is 0.
func Ratio(a, b int) float64 {
	if a+b == 0 {
		return 0
	}
	r := float64(a) / float64(a+b)
	if r > 0.5 {
		r = 1 - r
	}
	return r
}

// AlleleFrequency returns AO[i]/DP for each alternate allele, in ALT order.
func AlleleFrequency(v *vcf.Variant) ([]float64, error) {
	dp, err := v.InfoInt("DP")
	if err != nil {
		return nil, err
	}
	ao, err := v.InfoInts("AO")
	if err != nil {
		return nil, err
	}
	if dp == 0 {
		return nil, fmt.Errorf("%s:%d: allele frequency: %w", v.Chrom, v.Pos, ErrZeroDepth)
	}

	freqs := make([]float64, len(ao))
	for i, count := range ao {
		freqs[i] = float64(count) / float64(dp)
	}
	return freqs, nil
}

// StrandBalance returns Ratio(SAF[i], SAR[i]) for each alternate allele.
func StrandBalance(v *vcf.Variant) ([]float64, error) {
	saf, err := v.InfoInts("SAF")
	if err != nil {
		return nil, err
	}
	sar, err := v.InfoInts("SAR")
	if err != nil {
		return nil, err
	}
	if len(sar) < len(saf) {
		return nil, fmt.Errorf("%s:%d: strand balance: SAR has %d values, SAF has %d",
			v.Chrom, v.Pos, len(sar), len(saf))
	}

	bal := make([]float64, len(saf))
	for i := range saf {
		bal[i] = Ratio(saf[i], sar[i])
	}
	return bal, nil
}

// ForwardDepth returns SRF + sum(SAF).
func ForwardDepth(v *vcf.Variant) (int, error) {
	return strandDepth(v, "SRF", "SAF")
}

// ReverseDepth returns SRR + sum(SAR).
func ReverseDepth(v *vcf.Variant) (int, error) {
	return strandDepth(v, "SRR", "SAR")
}

func strandDepth(v *vcf.Variant, refKey, altKey string) (int, error) {
	ref, err := v.InfoInt(refKey)
	if err != nil {
		return 0, err
	}
	alts, err := v.InfoInts(altKey)
	if err != nil {
		return 0, err
	}
	total := ref
	for _, n := range alts {
		total += n
	}
	return total, nil
}
