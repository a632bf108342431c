// Package scratch manages the per-request temporary directories used to
// assemble digital-download archives.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glorpus-work/schoolyard/pkg/fsutil"
)

// filesSubdir is where fetched lesson files land inside a scratch
// directory; the archive file itself sits next to it.
const filesSubdir = "files"

// tokenPrefixLen bounds how much of the download token appears in the
// directory name.
const tokenPrefixLen = 16

// Manager allocates scratch directories under a fixed root.
type Manager struct {
	root string
}

// NewManager creates a Manager rooted at the given directory.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the scratch root directory.
func (m *Manager) Root() string {
	return m.root
}

// Allocate names a new scratch directory for one download request. The name
// combines the site's domain, a token prefix, and a millisecond timestamp,
// so concurrent requests never share a directory, even for the same token.
// Nothing is created on disk until Ensure is called.
func (m *Manager) Allocate(domainName, token string, now time.Time) *Dir {
	prefix := token
	if len(prefix) > tokenPrefixLen {
		prefix = prefix[:tokenPrefixLen]
	}
	name := fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
	return &Dir{path: filepath.Join(m.root, domainName, name)}
}

// Dir is one request's scratch directory. It is owned exclusively by that
// request for its lifetime.
type Dir struct {
	path string

	destroyOnce sync.Once
	destroyErr  error
}

// Path returns the scratch directory path.
func (d *Dir) Path() string {
	return d.path
}

// FilesDir returns the subdirectory where fetched files are stored.
func (d *Dir) FilesDir() string {
	return filepath.Join(d.path, filesSubdir)
}

// Ensure creates the scratch directory and its files subdirectory.
// It is idempotent.
func (d *Dir) Ensure() error {
	return fsutil.EnsureDir(d.FilesDir())
}

// Destroy recursively removes the scratch directory, including the archive
// and the files subdirectory. Repeated calls are no-ops returning the first
// result.
func (d *Dir) Destroy() error {
	d.destroyOnce.Do(func() {
		d.destroyErr = os.RemoveAll(d.path)
	})
	return d.destroyErr
}
