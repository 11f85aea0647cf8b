package ops

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	files := map[string]string{
		"tasks.json":       `[{"id":"a","title":"Laundry","description":"","dueDate":"2026-03-11T00:00:00.000Z","priority":"low","completed":false,"createdAt":"2026-03-01T00:00:00.000Z"}]`,
		"archive/old.json": `[]`,
	}
	writeTree(t, src, files)
	writeTree(t, src, map[string]string{
		"tasks.123.tmp":   "half written",
		"taskflow.db-wal": "wal",
		"taskflow.db-shm": "shm",
	})

	archive := filepath.Join(t.TempDir(), "backups", "backup.tar.gz")
	sum, err := Backup(src, archive)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Files)
	assert.FileExists(t, archive)

	restoreDir := filepath.Join(t.TempDir(), "restore")
	rsum, err := Restore(archive, restoreDir)
	require.NoError(t, err)
	assert.Equal(t, sum.Files, rsum.Files)
	assert.Equal(t, sum.Bytes, rsum.Bytes)
	assert.Equal(t, files, readTree(t, restoreDir))
}

func TestBackup_RequiresDirectory(t *testing.T) {
	_, err := Backup("", "out.tar.gz")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Backup(file, filepath.Join(t.TempDir(), "out.tar.gz"))
	assert.ErrorContains(t, err, "not a directory")
}

func TestRestore_RejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.tar.gz")
	f, err := os.Create(archive)
	require.NoError(t, err)

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len("bad")),
	}))
	_, err = tw.Write([]byte("bad"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	_, err = Restore(archive, filepath.Join(t.TempDir(), "out"))
	assert.ErrorContains(t, err, "traversal")
}

func TestRestore_RejectsNonArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "junk.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("not gzip"), 0o644))
	_, err := Restore(archive, t.TempDir())
	assert.ErrorContains(t, err, "open archive")
}

func TestDrill(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	writeTree(t, src, map[string]string{"tasks.json": `[]`})
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	rep, err := Drill(src, t.TempDir(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, "taskflow-drill-20260310T150000Z.tar.gz", filepath.Base(rep.Archive))

	want, err := DirDigest(src)
	require.NoError(t, err)
	assert.Equal(t, want, rep.Digest)
}

func TestDirDigest_ChangesWithContent(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTree(t, a, map[string]string{"tasks.json": `[]`})
	writeTree(t, b, map[string]string{"tasks.json": `[{}]`})

	da, err := DirDigest(a)
	require.NoError(t, err)
	db, err := DirDigest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}
