// Package mmap maps snapshot files read-only into memory.
//
// Mappings are opened with a sequential-read hint, since a snapshot is
// decoded front to back exactly once. Unix uses mmap(2); Windows uses
// CreateFileMapping and MapViewOfFile.
package mmap
