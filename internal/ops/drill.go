package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DrillReport is the outcome of a backup then restore rehearsal.
type DrillReport struct {
	Archive    string `json:"archive"`
	RestoreDir string `json:"restoreDir"`
	Digest     string `json:"digest"`
	Files      int    `json:"files"`
}

// Drill backs dataDir up into workDir, restores it next to the archive and
// checks that both trees hash the same.
func Drill(dataDir, workDir string, now time.Time) (DrillReport, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillReport{}, err
	}
	archive := filepath.Join(workDir, ArchiveName("taskflow-drill", now))
	restoreDir := filepath.Join(workDir, "taskflow-drill-restore-"+now.UTC().Format("20060102T150405Z"))

	sum, err := Backup(dataDir, archive)
	if err != nil {
		return DrillReport{}, fmt.Errorf("backup: %w", err)
	}
	if _, err := Restore(archive, restoreDir); err != nil {
		return DrillReport{}, fmt.Errorf("restore: %w", err)
	}

	srcDigest, err := DirDigest(dataDir)
	if err != nil {
		return DrillReport{}, err
	}
	restoredDigest, err := DirDigest(restoreDir)
	if err != nil {
		return DrillReport{}, err
	}
	if srcDigest != restoredDigest {
		return DrillReport{}, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoredDigest)
	}
	return DrillReport{Archive: archive, RestoreDir: restoreDir, Digest: srcDigest, Files: sum.Files}, nil
}

// DirDigest hashes the relative paths and contents of every archived file
// under root, in path order.
func DirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	var entries []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if transient(rel) {
			return nil
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel+"\n")
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
