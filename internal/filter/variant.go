package filter

import (
	"strconv"
	"strings"

	"github.com/sequana/fbfilter/internal/annotate"
	"github.com/sequana/fbfilter/internal/metrics"
	"github.com/sequana/fbfilter/internal/vcf"
)

// Resume is the flattened summary of one accepted variant.
type Resume struct {
	Chrom         string
	Position      int64
	Depth         int
	Reference     string
	Alternative   string  // alternates joined with "; "
	Quality       float64 // freebayes QUAL
	StrandBalance string  // per-allele values, %.2f, joined with "; "
	Frequency     string  // per-allele values, %.2f, joined with "; "

	// Annotation is nil when the record carries no parsable EFF field.
	Annotation *annotate.Annotation
}

// Annotated reports whether the resume carries snpEff fields.
func (r Resume) Annotated() bool {
	return r.Annotation != nil
}

// Row returns the resume in table column order: the base columns, followed
// by the annotation columns when the resume is annotated.
func (r *Resume) Row() []string {
	row := make([]string, 0, len(Columns))
	row = append(row,
		r.Chrom,
		strconv.FormatInt(r.Position, 10),
		r.Reference,
		r.Alternative,
		strconv.Itoa(r.Depth),
		r.Frequency,
		r.StrandBalance,
		strconv.FormatFloat(r.Quality, 'f', -1, 64),
	)
	if a := r.Annotation; a != nil {
		row = append(row,
			a.EffectType,
			a.MutationType,
			a.EffectImpact,
			a.GeneName,
			a.CDSPosition,
			a.CodonChange,
			a.ProtEffect,
			a.ProtSize,
		)
	}
	return row
}

// Variant wraps an accepted source record with its derived metrics and resume.
// It is never modified after construction.
type Variant struct {
	record         *vcf.Variant
	frequencies    []float64
	strandBalances []float64
	resume         Resume
}

// NewVariant derives metrics for rec and builds its resume. DP, AO, SAF and
// SAR must be present; a missing field is returned as an error.
func NewVariant(rec *vcf.Variant) (*Variant, error) {
	freqs, err := metrics.AlleleFrequency(rec)
	if err != nil {
		return nil, err
	}
	bal, err := metrics.StrandBalance(rec)
	if err != nil {
		return nil, err
	}
	return newVariant(rec, freqs, bal)
}

func newVariant(rec *vcf.Variant, freqs, bal []float64) (*Variant, error) {
	dp, err := rec.InfoInt("DP")
	if err != nil {
		return nil, err
	}

	v := &Variant{
		record:         rec,
		frequencies:    freqs,
		strandBalances: bal,
		resume: Resume{
			Chrom:         rec.Chrom,
			Position:      rec.Pos,
			Depth:         dp,
			Reference:     rec.Ref,
			Alternative:   strings.Join(rec.Alts, "; "),
			Quality:       rec.Qual,
			StrandBalance: joinFixed(bal),
			Frequency:     joinFixed(freqs),
		},
	}
	if ann, ok := annotate.FromVariant(rec); ok {
		v.resume.Annotation = ann
	}
	return v, nil
}

// Record returns the underlying source record.
func (v *Variant) Record() *vcf.Variant { return v.record }

// Resume returns the variant summary.
func (v *Variant) Resume() Resume { return v.resume }

// Frequencies returns AO[i]/DP per alternate allele.
func (v *Variant) Frequencies() []float64 { return append([]float64(nil), v.frequencies...) }

// StrandBalances returns the strand balance per alternate allele.
func (v *Variant) StrandBalances() []float64 { return append([]float64(nil), v.strandBalances...) }

// String returns the source record in native VCF line form.
func (v *Variant) String() string {
	return v.record.String()
}

func joinFixed(vals []float64) string {
	parts := make([]string, len(vals))
	for i, x := range vals {
		parts[i] = strconv.FormatFloat(x, 'f', 2, 64)
	}
	return strings.Join(parts, "; ")
}
