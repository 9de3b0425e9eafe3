package filter

import (
	"fmt"
	"io"
	"sync"

	"github.com/sequana/fbfilter/internal/output"
)

// Columns is the canonical table schema. The first BaseColumnCount columns
// are always present; the rest come from snpEff annotations.
var Columns = []string{
	"chr",
	"position",
	"reference",
	"alternative",
	"depth",
	"frequency",
	"strand_balance",
	"freebayes_score",
	"effect_type",
	"mutation_type",
	"effect_impact",
	"gene_name",
	"CDS_position",
	"codon_change",
	"prot_effect",
	"prot_size",
}

// BaseColumnCount is the number of columns present for unannotated variants.
const BaseColumnCount = 8

// TableComment prefixes the provenance line of tabular exports.
const TableComment = "variant_filter"

// Table is the tabular view of a Result.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Result holds the variants accepted by one filter pass together with the
// configuration that produced them.
type Result struct {
	variants []*Variant
	config   Config
	header   []string
	source   string

	tableOnce sync.Once
	table     *Table
}

func newResult(variants []*Variant, cfg Config, header []string, source string) *Result {
	return &Result{
		variants: variants,
		config:   cfg,
		header:   append([]string(nil), header...),
		source:   source,
	}
}

// Variants returns the accepted variants in acceptance order.
func (r *Result) Variants() []*Variant {
	return append([]*Variant(nil), r.variants...)
}

// Len returns the number of accepted variants.
func (r *Result) Len() int {
	return len(r.variants)
}

// Config returns the configuration snapshot used for this result.
func (r *Result) Config() Config {
	return r.config
}

// Header returns the source VCF header lines.
func (r *Result) Header() []string {
	return r.header
}

// Source returns the name of the filtered stream.
func (r *Result) Source() string {
	return r.source
}

// Table returns the tabular view, built on first use. The schema is
// schema-wide: all 16 columns when any variant is annotated (unannotated rows
// get empty annotation cells), the 8 base columns otherwise.
func (r *Result) Table() *Table {
	r.tableOnce.Do(func() {
		r.table = r.buildTable()
	})
	return r.table
}

func (r *Result) buildTable() *Table {
	width := BaseColumnCount
	for _, v := range r.variants {
		if v.resume.Annotated() {
			width = len(Columns)
			break
		}
	}

	t := &Table{
		Columns: append([]string(nil), Columns[:width]...),
		Rows:    make([][]string, 0, len(r.variants)),
	}
	for _, v := range r.variants {
		row := v.resume.Row()
		for len(row) < width {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ExportTable writes a provenance comment recording the configuration, the
// column header and one comma-delimited row per accepted variant. An empty
// result writes the full canonical header and no rows.
func (r *Result) ExportTable(w io.Writer) error {
	columns := Columns
	var rows [][]string
	if r.Len() > 0 {
		t := r.Table()
		columns, rows = t.Columns, t.Rows
	}

	tw := output.NewTableWriter(w, columns)
	if err := tw.WriteComment(TableComment + "; " + r.config.String()); err != nil {
		return fmt.Errorf("write table comment: %w", err)
	}
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, row := range rows {
		if err := tw.Write(row); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	return tw.Flush()
}

// ExportRecords writes the source header block followed by each accepted
// record in its native VCF line form.
func (r *Result) ExportRecords(w io.Writer) error {
	vw := output.NewVCFWriter(w, r.header)
	if err := vw.WriteHeader(); err != nil {
		return fmt.Errorf("write vcf header: %w", err)
	}
	for _, v := range r.variants {
		if err := vw.Write(v.record); err != nil {
			return fmt.Errorf("write vcf record: %w", err)
		}
	}
	return vw.Flush()
}

// WriteTableFile exports the table to path ("-" for stdout, ".gz" for BGZF).
func (r *Result) WriteTableFile(path string) error {
	return writeFile(path, r.ExportTable)
}

// WriteRecordsFile exports the records to path ("-" for stdout, ".gz" for BGZF).
func (r *Result) WriteRecordsFile(path string) error {
	return writeFile(path, r.ExportRecords)
}

func writeFile(path string, export func(io.Writer) error) error {
	f, err := output.Create(path)
	if err != nil {
		return err
	}
	if err := export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
