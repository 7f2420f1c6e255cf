// Package export persists pipeline buffers to operator-supplied paths for
// offline inspection.
//
// Each write goes to a temporary sibling file that is synced, closed, and
// renamed over the target, so readers never observe a partial artifact. An
// advisory lock on "<path>.lock" serializes concurrent runs targeting the
// same path. The lock file is left in place after the write; unlinking it
// would let a later run lock a fresh inode while an earlier waiter holds the
// old one.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lattice-substrate/refdoc-parity/parityerr"
)

const lockSuffix = ".lock"

// Writer writes whole artifacts atomically.
type Writer struct {
	// Perm is the mode of newly written files; zero means 0o644.
	Perm os.FileMode
}

// Write replaces the file at path with data.
func (w Writer) Write(path string, data []byte) (err error) {
	if path == "" {
		return parityerr.New(parityerr.InternalIO, "export", "empty output path")
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("create directory %s", dir), err)
	}

	lockPath := path + lockSuffix
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("lock %s", lockPath), err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("unlock %s", lockPath), unlockErr)
		}
	}()

	return writeAtomic(path, data, perm)
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("create temp for %s", path), err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("write %s", path), err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("chmod %s", path), err)
	}
	if err := tmp.Sync(); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("sync %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("close %s", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		committed = true
		return parityerr.Wrap(parityerr.InternalIO, "export", fmt.Sprintf("rename into %s", path), err)
	}
	committed = true
	return nil
}
