package output

import (
	"bufio"
	"io"

	"github.com/sequana/fbfilter/internal/vcf"
)

// VCFWriter writes records in their native VCF line form after the
// original header block.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines unchanged.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one record line.
func (vw *VCFWriter) Write(v *vcf.Variant) error {
	_, err := vw.w.WriteString(v.String() + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}
