// Package stats summarizes the variants accepted by a filter pass.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sequana/fbfilter/internal/annotate"
	"github.com/sequana/fbfilter/internal/filter"
)

// Distribution describes one metric over the accepted variants.
type Distribution struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// ImpactCount is the number of annotated variants with a given snpEff impact.
type ImpactCount struct {
	Impact string
	Count  int
}

// Summary aggregates a filter result. Frequency and StrandBalance use the
// first alternate allele only, the same allele the filter tests.
type Summary struct {
	Variants      int
	Annotated     int
	Depth         Distribution
	Frequency     Distribution
	StrandBalance Distribution
	Quality       Distribution
	Impacts       []ImpactCount // most severe first

	frequencies []float64
}

// Summarize computes the distributions of res.
func Summarize(res *filter.Result) Summary {
	variants := res.Variants()
	s := Summary{Variants: len(variants)}

	depth := make([]float64, 0, len(variants))
	freq := make([]float64, 0, len(variants))
	balance := make([]float64, 0, len(variants))
	qual := make([]float64, 0, len(variants))
	impacts := make(map[string]int)

	for _, v := range variants {
		r := v.Resume()
		depth = append(depth, float64(r.Depth))
		qual = append(qual, r.Quality)
		if f := v.Frequencies(); len(f) > 0 {
			freq = append(freq, f[0])
		}
		if b := v.StrandBalances(); len(b) > 0 {
			balance = append(balance, b[0])
		}
		if r.Annotation != nil {
			s.Annotated++
			impacts[r.Annotation.EffectImpact]++
		}
	}

	s.Depth = describe(depth)
	s.Frequency = describe(freq)
	s.StrandBalance = describe(balance)
	s.Quality = describe(qual)
	s.frequencies = freq

	for impact, n := range impacts {
		s.Impacts = append(s.Impacts, ImpactCount{Impact: impact, Count: n})
	}
	sort.Slice(s.Impacts, func(i, j int) bool {
		ri, rj := annotate.ImpactRank(s.Impacts[i].Impact), annotate.ImpactRank(s.Impacts[j].Impact)
		if ri != rj {
			return ri > rj
		}
		return s.Impacts[i].Impact < s.Impacts[j].Impact
	})

	return s
}

func describe(x []float64) Distribution {
	if len(x) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	d := Distribution{
		N:      len(x),
		Mean:   stat.Mean(x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
	}
	if len(x) > 1 {
		d.StdDev = stat.StdDev(x, nil)
	}
	return d
}

// Histogram counts values into bins equal-width bins over [lo, hi].
// Values equal to hi fall in the last bin; values outside the range are dropped.
func Histogram(values []float64, bins int, lo, hi float64) []float64 {
	if bins <= 0 || hi <= lo {
		return nil
	}
	counts := make([]float64, bins)
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		i := int((v - lo) / (hi - lo) * float64(bins))
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}

// FrequencyHistogram bins the first-allele frequencies over [0, 1].
func (s Summary) FrequencyHistogram(bins int) []float64 {
	return Histogram(s.frequencies, bins, 0, 1)
}

// Plot renders counts as an ASCII chart.
func Plot(counts []float64, caption string) string {
	if len(counts) == 0 {
		return ""
	}
	return asciigraph.Plot(counts,
		asciigraph.Height(8),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// Write prints a plain-text report of s.
func (s Summary) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "variants: %d (annotated: %d)\n", s.Variants, s.Annotated)
	if s.Variants == 0 {
		return bw.Flush()
	}

	fmt.Fprintf(bw, "%-15s %8s %8s %8s %8s %8s\n", "metric", "mean", "sd", "median", "min", "max")
	for _, row := range []struct {
		name string
		d    Distribution
	}{
		{"depth", s.Depth},
		{"frequency", s.Frequency},
		{"strand_balance", s.StrandBalance},
		{"freebayes_score", s.Quality},
	} {
		fmt.Fprintf(bw, "%-15s %8.2f %8.2f %8.2f %8.2f %8.2f\n",
			row.name, row.d.Mean, row.d.StdDev, row.d.Median, row.d.Min, row.d.Max)
	}

	if len(s.Impacts) > 0 {
		fmt.Fprintln(bw, "impacts:")
		for _, ic := range s.Impacts {
			fmt.Fprintf(bw, "  %-10s %d\n", ic.Impact, ic.Count)
		}
	}

	fmt.Fprintf(bw, "\n%s\n", Plot(s.FrequencyHistogram(10), "allele frequency (10 bins over [0, 1])"))
	return bw.Flush()
}
