package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes data to path on fsys by writing to a temp file in
// the same directory, syncing, and then renaming into place.
//
// On Unix, rename is atomic. On Windows, rename does not overwrite existing
// files; in that case we fall back to removing the destination first (not
// atomic, but best-effort).
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fsys, dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = fsys.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync %s: %w", tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := fsys.Chmod(tmpPath, perm); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	return renameInto(fsys, tmpPath, path)
}

// CopyFileAtomic copies src (read from srcFS) to dst on dstFS. The
// destination only appears once the copy is complete.
func CopyFileAtomic(srcFS afero.Fs, src string, dstFS afero.Fs, dst string, perm os.FileMode) error {
	in, err := srcFS.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if info, err := in.Stat(); err == nil && info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}

	dir := filepath.Dir(dst)
	if err := dstFS.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(dstFS, dir, filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = dstFS.Remove(tmpPath)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		_ = dstFS.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := dstFS.Chmod(tmpPath, perm); err != nil {
		_ = dstFS.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	return renameInto(dstFS, tmpPath, dst)
}

func renameInto(fsys afero.Fs, tmpPath, path string) error {
	if err := fsys.Rename(tmpPath, path); err != nil {
		// Windows cannot rename over an existing destination.
		if runtime.GOOS == "windows" {
			if _, statErr := fsys.Stat(path); statErr == nil {
				if rmErr := fsys.Remove(path); rmErr == nil {
					if renameErr := fsys.Rename(tmpPath, path); renameErr == nil {
						return nil
					}
				}
			}
		}
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, path, err)
	}
	return nil
}

// BestEffortBackup tries to write a `.bak` alongside path with the current
// contents, without failing the calling operation.
func BestEffortBackup(fsys afero.Fs, path string, perm os.FileMode) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return
	}
	_ = WriteFileAtomic(fsys, path+".bak", data, perm)
}

// Exists reports whether path exists on fsys. Errors other than "not
// exist" count as existing so callers do not clobber unreadable files.
func Exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// IsRegularFile reports whether path names a readable regular file.
func IsRegularFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
