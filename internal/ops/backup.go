// Package ops archives and restores the task data directory.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Summary describes one archive written or read.
type Summary struct {
	Archive string `json:"archive"`
	Files   int    `json:"files"`
	Bytes   int64  `json:"bytes"`
}

// ArchiveName is the default backup file name for a timestamp.
func ArchiveName(prefix string, now time.Time) string {
	return prefix + "-" + now.UTC().Format("20060102T150405Z") + ".tar.gz"
}

// transient reports files a live store may leave behind mid-write: file
// slot temp files and the SQLite write-ahead log.
func transient(rel string) bool {
	base := filepath.Base(rel)
	return strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, "-wal") ||
		strings.HasSuffix(base, "-shm") ||
		strings.HasSuffix(base, "-journal")
}

// Backup writes srcDir into a gzip tarball at archivePath. Symlinks and
// transient files are skipped.
func Backup(srcDir, archivePath string) (Summary, error) {
	if strings.TrimSpace(srcDir) == "" || strings.TrimSpace(archivePath) == "" {
		return Summary{}, fmt.Errorf("data dir and archive path are required")
	}
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	info, err := os.Stat(srcDir)
	if err != nil {
		return Summary{}, err
	}
	if !info.IsDir() {
		return Summary{}, fmt.Errorf("data dir is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Summary{}, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Archive: archivePath}
	if err := writeArchive(f, srcDir, &sum); err != nil {
		_ = f.Close()
		_ = os.Remove(archivePath)
		return Summary{}, err
	}
	if err := f.Close(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func writeArchive(w io.Writer, srcDir string, sum *Summary) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !d.IsDir() && transient(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		n, err := io.Copy(tw, src)
		if err != nil {
			return err
		}
		sum.Files++
		sum.Bytes += n
		return nil
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// Restore unpacks archivePath into targetDir. Entries escaping targetDir
// are rejected.
func Restore(archivePath, targetDir string) (Summary, error) {
	if strings.TrimSpace(archivePath) == "" || strings.TrimSpace(targetDir) == "" {
		return Summary{}, fmt.Errorf("archive path and target dir are required")
	}
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Summary{}, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return Summary{}, fmt.Errorf("open archive: %w", err)
	}
	defer gz.Close()

	sum := Summary{Archive: archivePath}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, err
		}

		rel, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return Summary{}, err
		}
		outPath := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return Summary{}, err
			}
		case tar.TypeReg:
			n, err := restoreFile(outPath, tr, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return Summary{}, err
			}
			sum.Files++
			sum.Bytes += n
		}
	}
	return sum, nil
}

func restoreFile(path string, r io.Reader, mode os.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, r)
	if err != nil {
		_ = dst.Close()
		return 0, err
	}
	return n, dst.Close()
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}
