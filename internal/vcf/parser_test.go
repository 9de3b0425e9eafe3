package vcf

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"chr2\t10\t.\tA\tT\t99\t.\tDP=12;AO=6;SAF=3;SAR=3;SRF=3;SRR=3\n" +
	"chr2\t20\t.\tG\tC,T\t.\tPASS\tDP=9;AO=2,1;SAF=1,1;SAR=1,0;SRF=3;SRR=3"

func TestParser_FreebayesFile(t *testing.T) {
	testFile := findTestFile(t, "freebayes.vcf")

	parser, err := NewParser(testFile)
	require.NoError(t, err)
	defer parser.Close()

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "chr1", v.Chrom)
	assert.Equal(t, int64(100), v.Pos)
	assert.Equal(t, "A", v.Ref)
	assert.Equal(t, []string{"G"}, v.Alts)
	assert.Equal(t, 250.0, v.Qual)
	assert.Equal(t, "GT\t1/1", v.SampleColumns)

	dp, err := v.InfoInt("DP")
	require.NoError(t, err)
	assert.Equal(t, 20, dp)

	count := 1
	for {
		v, err := parser.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
	assert.Equal(t, []string{"sample1"}, parser.SampleNames())
}

func TestParser_MultiAllelic(t *testing.T) {
	parser, err := NewParserFromReader(strings.NewReader(smallVCF))
	require.NoError(t, err)

	_, err = parser.Next()
	require.NoError(t, err)
	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v, "final line without newline should still be read")

	assert.Equal(t, []string{"C", "T"}, v.Alts)
	assert.Equal(t, 0.0, v.Qual)

	ao, err := v.InfoInts("AO")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ao)
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "freebayes.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	header := parser.Header()
	require.NotEmpty(t, header)
	assert.Equal(t, "##fileformat=VCFv4.2", header[0])
	assert.True(t, strings.HasPrefix(header[len(header)-1], "#CHROM"))
}

func TestParser_Rewind(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "freebayes.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	first := readAll(t, parser)
	require.NoError(t, parser.Rewind())
	second := readAll(t, parser)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].String(), second[i].String())
	}
}

func TestParser_RewindNotSeekable(t *testing.T) {
	parser, err := NewParserFromReader(onlyReader{strings.NewReader(smallVCF)})
	require.NoError(t, err)

	assert.ErrorIs(t, parser.Rewind(), ErrNotRewindable)
}

func TestParser_RewindPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	go func() {
		w.WriteString(smallVCF)
		w.Close()
	}()

	parser, err := NewParserFromReader(r)
	require.NoError(t, err)

	assert.Len(t, readAll(t, parser), 2)
	assert.ErrorIs(t, parser.Rewind(), ErrNotRewindable)
}

func TestParser_RewindFromStartOffset(t *testing.T) {
	src := strings.NewReader("garbage\n" + smallVCF)
	_, err := src.Seek(int64(len("garbage\n")), io.SeekStart)
	require.NoError(t, err)

	parser, err := NewParserFromReader(src)
	require.NoError(t, err)

	assert.Len(t, readAll(t, parser), 2)
	require.NoError(t, parser.Rewind())
	assert.Len(t, readAll(t, parser), 2)
	assert.Len(t, parser.Header(), 2)
}

func TestParser_BGZF(t *testing.T) {
	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	_, err := w.Write([]byte(smallVCF))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	parser, err := NewParserFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer parser.Close()

	variants := readAll(t, parser)
	require.Len(t, variants, 2)
	assert.Equal(t, int64(10), variants[0].Pos)

	require.NoError(t, parser.Rewind())
	assert.Len(t, readAll(t, parser), 2)
}

func TestParser_Gzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(smallVCF))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	parser, err := NewParserFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer parser.Close()

	assert.Len(t, readAll(t, parser), 2)
}

func TestParser_GzipFile(t *testing.T) {
	raw, err := os.ReadFile(findTestFile(t, "freebayes.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "freebayes.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := bgzf.NewWriter(f, 1)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	assert.Len(t, readAll(t, parser), 5)
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.vcf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no chrom line", "##fileformat=VCFv4.2\n", "no #CHROM header line found"},
		{"data before chrom", "##fileformat=VCFv4.2\nchr1\t1\n", "expected #CHROM header line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParserFromReader(strings.NewReader(tt.input))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestParser_BadDataLines(t *testing.T) {
	head := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"
	tests := []struct {
		name string
		line string
		want string
	}{
		{"too few columns", "chr1\t1\t.\tA\n", "expected at least 8 columns, found 4"},
		{"bad position", "chr1\tx\t.\tA\tT\t1\t.\tDP=1\n", "invalid position: x"},
		{"bad quality", "chr1\t1\t.\tA\tT\thigh\t.\tDP=1\n", "invalid quality: high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(head + tt.line))
			require.NoError(t, err)

			_, err = parser.Next()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 3, perr.Line)
			assert.Equal(t, tt.want, perr.Message)
		})
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}

type onlyReader struct {
	r interface{ Read([]byte) (int, error) }
}

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func readAll(t *testing.T, p VariantParser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	// Try different relative paths
	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
