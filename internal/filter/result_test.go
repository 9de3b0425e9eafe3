package filter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_TableAnnotated(t *testing.T) {
	res, err := openFixture(t).Filter(nil)
	require.NoError(t, err)

	table := res.Table()
	assert.Equal(t, Columns, table.Columns)
	require.Equal(t, res.Len(), table.Len())

	for _, row := range table.Rows {
		assert.Len(t, row, len(Columns))
	}

	// chr1:250 carries no EFF field.
	assert.Equal(t, []string{
		"chr1", "250", "C", "T", "30", "0.13", "0.00", "45.5",
		"", "", "", "", "", "", "", "",
	}, table.Rows[1])

	assert.Equal(t, []string{
		"chr1", "400", "G", "A; C", "40", "0.30; 0.15", "0.50; 0.50", "500",
		"SYNONYMOUS_CODING", "SILENT", "LOW", "GENE2", "0", "ctG/ctA", "", "200",
	}, table.Rows[2])

	assert.Same(t, table, res.Table(), "table is built once")
}

func TestResult_TableUnannotated(t *testing.T) {
	e := newTestEngine(t, scenarioRecord)
	res, err := e.Filter(nil)
	require.NoError(t, err)

	table := res.Table()
	assert.Equal(t, Columns[:BaseColumnCount], table.Columns)
	assert.Equal(t, [][]string{{"chr1", "100", "A", "G", "20", "0.80", "0.50", "250"}}, table.Rows)
}

func TestResult_ExportTable(t *testing.T) {
	e := newTestEngine(t, scenarioRecord)
	res, err := e.Filter(scenarioConfig)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.ExportTable(&buf))

	want := "# variant_filter; " +
		`{"freebayes_score":200,"frequency":0.5,"min_depth":10,"forward_depth":3,"reverse_depth":3,"strand_ratio":0.3}` + "\n" +
		"chr,position,reference,alternative,depth,frequency,strand_balance,freebayes_score\n" +
		"chr1,100,A,G,20,0.80,0.50,250\n"
	assert.Equal(t, want, buf.String())
}

func TestResult_ExportTableEmpty(t *testing.T) {
	e := newTestEngine(t, scenarioRecord)
	res, err := e.Filter(map[string]any{"freebayes_score": 300})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.ExportTable(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "# variant_filter; "))
	assert.Contains(t, lines[0], `"freebayes_score":300`)
	assert.Equal(t, strings.Join(Columns, ","), lines[1])
}

func TestResult_ExportRecordsPreservesSource(t *testing.T) {
	path := findTestFile(t, "freebayes.vcf")
	src, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := openFixture(t).Filter(nil)
	require.NoError(t, err)
	require.Equal(t, 5, res.Len())

	var buf bytes.Buffer
	require.NoError(t, res.ExportRecords(&buf))
	assert.Equal(t, string(src), buf.String())
}

func TestResult_ExportRecordsFiltered(t *testing.T) {
	res, err := openFixture(t).Filter(scenarioConfig)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.ExportRecords(&buf))

	var data []string
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "#") {
			data = append(data, line)
		}
	}
	require.Len(t, data, 1)
	assert.True(t, strings.HasPrefix(data[0], "chr1\t100\t"))
	assert.Equal(t, len(res.Header()), strings.Count(buf.String(), "\n")-1)
}

func TestResult_FilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	res, err := openFixture(t).Filter(map[string]any{"frequency": 0.25})
	require.NoError(t, err)

	vcfPath := filepath.Join(dir, "filtered.vcf.gz")
	csvPath := filepath.Join(dir, "filtered.csv")
	require.NoError(t, res.WriteRecordsFile(vcfPath))
	require.NoError(t, res.WriteTableFile(csvPath))

	again, err := Open(vcfPath)
	require.NoError(t, err)
	defer again.Close()

	res2, err := again.Filter(nil)
	require.NoError(t, err)
	assert.Equal(t, positions(res), positions(res2))

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, res.Len()+2, strings.Count(string(csv), "\n"))
}

func TestResult_VariantsIsCopy(t *testing.T) {
	res, err := openFixture(t).Filter(nil)
	require.NoError(t, err)

	vs := res.Variants()
	vs[0] = nil
	assert.NotNil(t, res.Variants()[0])
}
