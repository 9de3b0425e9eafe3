package duckdb

import (
	"os"
	"time"
)

// Source identifies the input a filter run read. Streams (stdin, pipes)
// have no size or modification time.
type Source struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// IsStream reports whether the run read from something other than a regular file.
func (s Source) IsStream() bool {
	return s.Size == 0 && s.ModTime.IsZero()
}

// describeSource records the size and mtime of path when it is a regular file.
func describeSource(path string) Source {
	src := Source{Path: path}
	if path == "" || path == "-" {
		return src
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return src
	}
	src.Size = info.Size()
	src.ModTime = info.ModTime()
	return src
}
