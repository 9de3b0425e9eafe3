package vcf

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInfoNotFound is returned when a required INFO key is absent from a record.
var ErrInfoNotFound = errors.New("info field not found")

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom         string            // Chromosome name (e.g., "12", "chr12")
	Pos           int64             // 1-based genomic position
	ID            string            // Variant identifier (e.g., rs ID)
	Ref           string            // Reference allele
	Alts          []string          // Alternate alleles in file order
	Qual          float64           // Quality score, 0 when missing
	Filter        string            // Filter status (PASS or filter name)
	Info          map[string]string // INFO key-value pairs; flags map to ""
	SampleColumns string            // FORMAT + sample columns, tab-joined

	line string // source line, without the trailing newline
}

// String returns the record in its native VCF line form. Records read from
// a file render their exact source line.
func (v *Variant) String() string {
	if v.line != "" {
		return v.line
	}
	return v.format()
}

// format rebuilds a VCF data line from the record fields.
func (v *Variant) format() string {
	var b strings.Builder
	b.Grow(128)

	b.WriteString(v.Chrom)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatInt(v.Pos, 10))
	b.WriteByte('\t')
	b.WriteString(orMissing(v.ID))
	b.WriteByte('\t')
	b.WriteString(v.Ref)
	b.WriteByte('\t')
	if len(v.Alts) == 0 {
		b.WriteByte('.')
	} else {
		b.WriteString(strings.Join(v.Alts, ","))
	}
	b.WriteByte('\t')
	if v.Qual != 0 {
		b.WriteString(strconv.FormatFloat(v.Qual, 'g', -1, 64))
	} else {
		b.WriteByte('.')
	}
	b.WriteByte('\t')
	b.WriteString(orMissing(v.Filter))
	b.WriteByte('\t')
	b.WriteString(formatInfo(v.Info))
	if v.SampleColumns != "" {
		b.WriteByte('\t')
		b.WriteString(v.SampleColumns)
	}
	return b.String()
}

// InfoValue returns the raw INFO value for key.
func (v *Variant) InfoValue(key string) (string, bool) {
	val, ok := v.Info[key]
	return val, ok
}

// InfoStrings returns the comma-separated values of a multi-valued INFO key.
func (v *Variant) InfoStrings(key string) ([]string, bool) {
	val, ok := v.Info[key]
	if !ok {
		return nil, false
	}
	return strings.Split(val, ","), true
}

// InfoInt returns a single-valued integer INFO field.
func (v *Variant) InfoInt(key string) (int, error) {
	val, ok := v.Info[key]
	if !ok {
		return 0, v.infoError(key, ErrInfoNotFound)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, v.infoError(key, err)
	}
	return n, nil
}

// InfoInts returns a per-allele integer array INFO field (Number=A or R).
func (v *Variant) InfoInts(key string) ([]int, error) {
	vals, ok := v.InfoStrings(key)
	if !ok {
		return nil, v.infoError(key, ErrInfoNotFound)
	}
	out := make([]int, len(vals))
	for i, s := range vals {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, v.infoError(key, err)
		}
		out[i] = n
	}
	return out, nil
}

func (v *Variant) infoError(key string, err error) error {
	return &InfoError{Chrom: v.Chrom, Pos: v.Pos, Key: key, Err: err}
}

// InfoError reports a missing or malformed INFO field on a record.
type InfoError struct {
	Chrom string
	Pos   int64
	Key   string
	Err   error
}

func (e *InfoError) Error() string {
	return fmt.Sprintf("%s:%d: info %s: %v", e.Chrom, e.Pos, e.Key, e.Err)
}

func (e *InfoError) Unwrap() error {
	return e.Err
}

func orMissing(s string) string {
	if s == "" {
		return "."
	}
	return s
}

// formatInfo renders an INFO map with keys in sorted order.
func formatInfo(info map[string]string) string {
	if len(info) == 0 {
		return "."
	}
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if val := info[k]; val != "" {
			b.WriteByte('=')
			b.WriteString(val)
		}
	}
	return b.String()
}
