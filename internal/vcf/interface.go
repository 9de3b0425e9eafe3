// Package vcf provides VCF file parsing functionality.
package vcf

// VariantParser is the interface for restartable record streams.
// The filter engine holds one and drives it; it never extends it.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Rewind repositions the stream on the first record after the header.
	Rewind() error

	// Header returns the header lines (## meta lines and the #CHROM line).
	Header() []string

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
