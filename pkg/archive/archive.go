// Package archive produces the zip bundles delivered to digital-download
// buyers.
package archive

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mholt/archives"

	pkgerrors "github.com/glorpus-work/schoolyard/pkg/errors"
)

// Builder assembles zip archives from a directory of downloaded files.
type Builder struct{}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build streams the contents of sourceDir into a zip archive at archivePath
// and returns that path. Entries are flattened: the source directory itself
// does not appear as a prefix inside the archive. The archive is fully
// flushed to disk before Build returns.
func (b *Builder) Build(ctx context.Context, sourceDir, archivePath string) (string, error) {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrArchiveCreate, err.Error())
	}

	// Mapping the source root to "" strips the directory prefix from
	// every entry path.
	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrArchiveCreate, err.Error())
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return "", pkgerrors.Wrapf(pkgerrors.ErrArchiveCreate, "could not create output file %s: %v", archivePath, err)
	}

	format := archives.Zip{}
	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		_ = file.Close()
		_ = os.Remove(archivePath)
		return "", pkgerrors.Wrap(pkgerrors.ErrArchiveCreate, err.Error())
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		return "", pkgerrors.Wrap(pkgerrors.ErrArchiveCreate, err.Error())
	}
	if err := file.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrArchiveCreate, err.Error())
	}

	return archivePath, nil
}
