package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const backupTimeLayout = "20060102T150405.000000000Z"

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// WriteAtomic replaces path with data so that readers only ever observe the
// previous or the new content. The new bytes are written and synced to a
// temp file in the same directory; when path already exists its content is
// copied to a timestamped backup first; the temp file is then renamed over
// path. keep bounds the number of backups retained (keep <= 0 retains all).
func WriteAtomic(path string, data []byte, keep int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		backup := BackupName(path, time.Now())
		if err := CopyFileVerified(path, backup); err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	if err := SyncDir(dir); err != nil {
		return err
	}

	if keep > 0 {
		if err := PruneBackups(path, keep); err != nil {
			return err
		}
	}
	return nil
}

// SyncDir flushes the directory entry table of dir so a completed rename
// survives a crash.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync directory %s: %w", dir, err)
	}
	return nil
}

// BackupName returns the backup path for path taken at ts. Names sort in
// chronological order.
func BackupName(path string, ts time.Time) string {
	return path + "." + ts.UTC().Format(backupTimeLayout) + ".bak"
}

// Backups lists existing backups of path, oldest first.
func Backups(path string) ([]string, error) {
	matches, err := filepath.Glob(escapeGlob(path) + ".*.bak")
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	slices.Sort(matches)
	return matches, nil
}

// PruneBackups removes the oldest backups of path until at most keep remain.
func PruneBackups(path string, keep int) error {
	backups, err := Backups(path)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}
	for _, old := range backups[:len(backups)-keep] {
		if err := os.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove backup %s: %w", old, err)
		}
	}
	return nil
}

var globEscaper = strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`)

func escapeGlob(path string) string {
	return globEscaper.Replace(path)
}
