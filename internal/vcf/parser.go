package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// ErrNotRewindable is returned by Rewind when the underlying source cannot seek.
var ErrNotRewindable = errors.New("vcf source is not rewindable")

// Parser reads variants from a VCF file.
type Parser struct {
	src         io.Reader
	seeker      io.Seeker // nil when src cannot seek (pipes, plain readers)
	start       int64     // offset of the first header byte in src
	file        *os.File
	decoder     io.Closer // bgzf or gzip reader, nil for plain text
	reader      *bufio.Reader
	lineNumber  int
	header      []string
	sampleNames []string // sample names from #CHROM header line
}

// NewParser creates a new VCF parser for the given file.
// Plain VCF, BGZF-compressed VCF (bcftools/bgzip output) and ordinary
// gzip files are detected from their magic bytes.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{src: file, file: file}
	p.probeSeek()
	if err := p.open(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Rewind is only supported when r also implements io.Seeker and can seek;
// it returns to the position r had when the parser was created.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{src: r}
	p.probeSeek()

	if err := p.open(); err != nil {
		p.closeDecoder()
		return nil, err
	}

	return p, nil
}

// probeSeek keeps src as a seeker only if it can actually seek. An *os.File
// on a pipe or terminal implements io.Seeker but fails every Seek.
func (p *Parser) probeSeek() {
	s, ok := p.src.(io.Seeker)
	if !ok {
		return
	}
	off, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	p.seeker, p.start = s, off
}

// open sets up decompression on the current source position and reads the header.
func (p *Parser) open() error {
	br := bufio.NewReader(p.src)

	// Short inputs make Peek return fewer bytes; the checks below handle that.
	magic, _ := br.Peek(14)

	switch {
	case isBGZF(magic):
		bg, err := bgzf.NewReader(br, 1)
		if err != nil {
			return fmt.Errorf("create bgzf reader: %w", err)
		}
		p.decoder = bg
		p.reader = bufio.NewReader(bg)
	case isGzip(magic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		p.decoder = gz
		p.reader = bufio.NewReader(gz)
	default:
		p.reader = br
	}

	p.lineNumber = 0
	p.header = nil
	p.sampleNames = nil

	return p.parseHeader()
}

// isGzip reports whether b starts with the gzip magic number (0x1f, 0x8b).
func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// isBGZF reports whether b starts a gzip member carrying the BGZF "BC" extra subfield.
func isBGZF(b []byte) bool {
	return isGzip(b) && len(b) >= 14 && b[3]&0x04 != 0 && b[12] == 'B' && b[13] == 'C'
}

// parseHeader reads and stores VCF header lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			// Extract sample names from columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	qual := 0.0
	if fields[5] != "." {
		qual, err = strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("invalid quality: %s", fields[5]),
			}
		}
	}

	var alts []string
	if fields[4] != "." {
		alts = strings.Split(fields[4], ",")
	}

	v := &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alts:   alts,
		Qual:   qual,
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
		line:   line,
	}

	// Capture FORMAT + sample columns if present
	if len(fields) > 8 {
		v.SampleColumns = strings.Join(fields[8:], "\t")
	}

	return v, nil
}

// parseInfo parses the INFO field into a map.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		if kv == "" {
			continue
		}
		key, val, _ := strings.Cut(kv, "=")
		// Flag-type INFO fields keep an empty value
		result[key] = val
	}

	return result
}

// ParseLine parses a standalone VCF data line. Line numbers in errors are 0.
func ParseLine(line string) (*Variant, error) {
	p := &Parser{}
	return p.parseLine(strings.TrimRight(line, "\r\n"))
}

// Rewind repositions the parser on the first record. The header is re-read
// so that Header and LineNumber stay consistent.
func (p *Parser) Rewind() error {
	if p.seeker == nil {
		return ErrNotRewindable
	}

	p.closeDecoder()
	if _, err := p.seeker.Seek(p.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek vcf source: %w", err)
	}

	return p.open()
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	p.closeDecoder()
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

func (p *Parser) closeDecoder() {
	if p.decoder != nil {
		p.decoder.Close()
		p.decoder = nil
	}
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
