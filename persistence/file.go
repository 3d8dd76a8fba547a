package persistence

import (
	"bufio"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hupe1980/sdci/internal/fs"
)

// tempMarker appears in every temp file name. Blob listings skip such names.
const tempMarker = ".tmp-"

// SaveToFile writes a file atomically: the data goes to a temp file in the
// same directory which is fsynced and then renamed over filename.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	return SaveToFileFS(fs.Default, filename, writeFunc)
}

// SaveToFileFS is SaveToFile on an explicit file system. A failure at any
// step removes the temp file and leaves an existing filename untouched.
func SaveToFileFS(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) (err error) {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := createTemp(fsys, dir, base)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err = writeFunc(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}

	if err = fsys.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	_ = fsys.SyncDir(dir)
	return nil
}

func createTemp(fsys fs.FileSystem, dir, base string) (fs.File, error) {
	for range 10000 {
		name := filepath.Join(dir, base+tempMarker+strconv.FormatUint(rand.Uint64(), 36))
		f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, &os.PathError{Op: "createtemp", Path: filepath.Join(dir, base+tempMarker+"*"), Err: os.ErrExist}
}
