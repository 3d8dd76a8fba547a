package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, fpath, f.Name())

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	// O_EXCL refuses to reuse a name.
	_, err = lfs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	assert.True(t, errors.Is(err, os.ErrExist))

	newPath := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, newPath))
	require.NoError(t, lfs.SyncDir(dir))

	data, err := os.ReadFile(newPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(newPath))
	_, err = os.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("faulty", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(tmp, "faulty.txt"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(5), ffs.Written())
	require.NoError(t, f.Close())

	// Files without a matching rule are untouched.
	g, err := ffs.OpenFile(filepath.Join(tmp, "fine.txt"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = g.Write(make([]byte, 100))
	require.NoError(t, err)
	require.NoError(t, g.Close())

	assert.Len(t, ffs.Opened(), 2)
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	tmp := t.TempDir()
	boom := errors.New("boom")
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("rename", Fault{FailAfterBytes: -1, FailOnRename: true})

	f, err := ffs.OpenFile(filepath.Join(tmp, "sync.txt"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), boom)
	require.NoError(t, f.Close())

	g, err := ffs.OpenFile(filepath.Join(tmp, "close.txt"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Close(), ErrInjected)

	src := filepath.Join(tmp, "rename.txt")
	require.NoError(t, os.WriteFile(src, nil, 0o644))
	assert.ErrorIs(t, ffs.Rename(src, filepath.Join(tmp, "other.txt")), ErrInjected)
	require.NoError(t, ffs.Rename(filepath.Join(tmp, "sync.txt"), filepath.Join(tmp, "moved.txt")))

	require.NoError(t, ffs.MkdirAll(filepath.Join(tmp, "a", "b"), 0o755))
	require.NoError(t, ffs.SyncDir(tmp))
	require.NoError(t, ffs.Remove(filepath.Join(tmp, "moved.txt")))
}
