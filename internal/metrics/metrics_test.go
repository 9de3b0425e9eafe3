package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequana/fbfilter/internal/vcf"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want float64
	}{
		{"both zero", 0, 0, 0},
		{"balanced", 8, 8, 0.5},
		{"one sided forward", 4, 0, 0},
		{"one sided reverse", 0, 4, 0},
		{"below half", 1, 3, 0.25},
		{"above half reflected", 3, 1, 0.25},
		{"skewed", 45, 5, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-12)
		})
	}
}

func TestRatio_SymmetricAndBounded(t *testing.T) {
	for a := 0; a <= 30; a++ {
		for b := 0; b <= 30; b++ {
			r := Ratio(a, b)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 0.5)
			assert.InDelta(t, r, Ratio(b, a), 1e-12, "Ratio(%d,%d)", a, b)
		}
	}
}

func record(info map[string]string) *vcf.Variant {
	return &vcf.Variant{Chrom: "chr1", Pos: 100, Ref: "A", Alts: []string{"G", "T"}, Info: info}
}

func TestAlleleFrequency(t *testing.T) {
	v := record(map[string]string{"DP": "40", "AO": "12,6"})

	freqs, err := AlleleFrequency(v)
	require.NoError(t, err)
	require.Len(t, freqs, len(v.Alts))
	assert.InDelta(t, 0.3, freqs[0], 1e-12)
	assert.InDelta(t, 0.15, freqs[1], 1e-12)
}

func TestAlleleFrequency_ZeroDepth(t *testing.T) {
	_, err := AlleleFrequency(record(map[string]string{"DP": "0", "AO": "1"}))
	assert.ErrorIs(t, err, ErrZeroDepth)
}

func TestAlleleFrequency_MissingField(t *testing.T) {
	_, err := AlleleFrequency(record(map[string]string{"DP": "10"}))
	assert.ErrorIs(t, err, vcf.ErrInfoNotFound)
}

func TestStrandBalance(t *testing.T) {
	bal, err := StrandBalance(record(map[string]string{"SAF": "6,4", "SAR": "6,0"}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0}, bal)
}

func TestStrandBalance_ShortSAR(t *testing.T) {
	_, err := StrandBalance(record(map[string]string{"SAF": "6,4", "SAR": "6"}))
	assert.Error(t, err)
}

func TestDirectionalDepth(t *testing.T) {
	v := record(map[string]string{"SRF": "5", "SRR": "2", "SAF": "8,1", "SAR": "3,3"})

	fwd, err := ForwardDepth(v)
	require.NoError(t, err)
	assert.Equal(t, 14, fwd)

	rev, err := ReverseDepth(v)
	require.NoError(t, err)
	assert.Equal(t, 8, rev)

	_, err = ForwardDepth(record(map[string]string{"SAF": "1"}))
	assert.ErrorIs(t, err, vcf.ErrInfoNotFound)
}
