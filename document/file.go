package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// FileSource reads a document from the local filesystem.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource wraps a filesystem path as a Source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Name() string {
	return filepath.Base(f.path)
}

func (f *FileSource) Fetch(ctx context.Context) (*Document, error) {
	fp, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	info, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a document", f.path)
	}

	body, err := io.ReadAll(fp)
	if err != nil {
		return nil, err
	}
	return New(info.Name(), body, map[string]string{
		"path":    f.path,
		"modtime": strconv.FormatInt(info.ModTime().Unix(), 10),
	}), nil
}
