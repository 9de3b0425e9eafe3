package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Create opens path for writing. "-" writes to stdout; a ".gz" suffix
// produces BGZF output readable by bgzip/tabix/bcftools.
func Create(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		return &bgzfFile{Writer: bgzf.NewWriter(f, 1), f: f}, nil
	}
	return f, nil
}

// bgzfFile closes the BGZF stream (writing the EOF block) and then the file.
type bgzfFile struct {
	*bgzf.Writer
	f *os.File
}

func (b *bgzfFile) Close() error {
	if err := b.Writer.Close(); err != nil {
		b.f.Close()
		return fmt.Errorf("close bgzf stream: %w", err)
	}
	return b.f.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
