package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state", "maintkeeper.db")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Join(tmp, "state"))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}

	require.NoError(t, EnsureParentDir(path), "should be idempotent")
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	require.NoError(t, EnsureParentDir("maintkeeper.db"))
	require.NoError(t, EnsureParentDir(":memory:"))
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o660))

	require.Error(t, EnsureParentDir(filepath.Join(blocker, "maintkeeper.db")))
}

func TestReadUpload(t *testing.T) {
	tmp := t.TempDir()

	pdf := filepath.Join(tmp, "Manual.PDF")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7 ..."), 0o600))
	u, err := ReadUpload(pdf)
	require.NoError(t, err)
	require.Equal(t, "Manual.PDF", u.Name)
	require.Equal(t, "application/pdf", u.ContentType)
	require.Equal(t, []byte("%PDF-1.7 ..."), u.Data)

	noExt := filepath.Join(tmp, "photo")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(noExt, png, 0o600))
	u, err = ReadUpload(noExt)
	require.NoError(t, err)
	require.Equal(t, "image/png", u.ContentType)

	_, err = ReadUpload(filepath.Join(tmp, "missing.pdf"))
	require.Error(t, err)
}

func TestReadUpload_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxUploadSize+1))
	require.NoError(t, f.Close())

	_, err = ReadUpload(path)
	require.ErrorIs(t, err, ErrTooLarge)
}
