// Package storage archives report files pulled through the portal.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink names
const (
	SinkNone  = ""
	SinkLocal = "local"
	SinkS3    = "s3"
)

// Archive keeps a copy of a downloaded file
type Archive interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Options selects and configures an archive
type Options struct {
	Sink            string
	LocalDir        string
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// New builds the archive named by opts.Sink. It returns nil when archiving
// is disabled.
func New(ctx context.Context, opts Options) (Archive, error) {
	switch opts.Sink {
	case SinkNone:
		return nil, nil
	case SinkLocal:
		archive, err := NewLocalArchive(opts.LocalDir)
		if err != nil {
			return nil, err
		}
		return archive, nil
	case SinkS3:
		archive, err := NewS3Archive(ctx, opts)
		if err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, fmt.Errorf("unknown archive sink %q", opts.Sink)
	}
}

// LocalArchive stores files in a directory
type LocalArchive struct {
	dir string
}

var _ Archive = (*LocalArchive)(nil)

// NewLocalArchive creates the directory if needed
func NewLocalArchive(dir string) (*LocalArchive, error) {
	if dir == "" {
		return nil, fmt.Errorf("local archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &LocalArchive{dir: dir}, nil
}

// Put writes body to dir/key and returns the file path. Keys are rooted at
// dir, so ".." segments cannot escape it.
func (a *LocalArchive) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	dest := filepath.Join(a.dir, filepath.Clean("/"+key))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", dest, err)
	}
	return dest, nil
}
