// Package fs provides the filesystem abstraction used for atomic snapshot
// writes, plus a fault-injecting wrapper for tests.
//
// # Implementations
//
//   - [LocalFS]: Production implementation using the os package
//   - [FaultyFS]: Test utility that fails writes, syncs, closes or renames
//
// # Usage
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	f, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
//
// Tests inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 1024})
//	err := persistence.SaveToFileFS(ffs, path, write)
//
// Filesystem calls take no context.Context. Local syscalls are not
// interruptible; remote storage goes through package blobstore instead.
package fs
