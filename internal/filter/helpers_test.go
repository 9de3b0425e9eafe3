package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sequana/fbfilter/internal/vcf"
)

const testHeader = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

// scenarioRecord has QUAL=250, DP=20, AO=16, SAF=SAR=8, SRF=SRR=5.
const scenarioRecord = "chr1\t100\t.\tA\tG\t250\t.\tDP=20;AO=16;SAF=8;SAR=8;SRF=5;SRR=5\n"

// scenarioConfig is accepted by scenarioRecord.
var scenarioConfig = map[string]any{
	"freebayes_score": 200,
	"frequency":       0.5,
	"min_depth":       10,
	"forward_depth":   3,
	"reverse_depth":   3,
	"strand_ratio":    0.3,
}

func newTestEngine(t *testing.T, body string) *Engine {
	t.Helper()
	p, err := vcf.NewParserFromReader(strings.NewReader(testHeader + body))
	require.NoError(t, err)
	e := NewEngine(p)
	t.Cleanup(func() { e.Close() })
	return e
}

func openFixture(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(findTestFile(t, "freebayes.vcf"))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func positions(r *Result) []int64 {
	var out []int64
	for _, v := range r.Variants() {
		out = append(out, v.Record().Pos)
	}
	return out
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

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
