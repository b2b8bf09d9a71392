// Package fs provides the filesystem seam the arena opens its backing
// file through, so it can be pointed at anything satisfying [FS] instead
// of always hitting [os] directly. The index storage layer uses [os]
// directly and does not go through this package.
package fs

import (
	"io"
	"os"
)

// File represents an open, OS-backed file descriptor.
//
// The surface is exactly what the arena needs: random-access reads and
// writes, Sync before reporting a write durable, and Stat to recover the
// file's current size when opening. It is satisfied by [os.File].
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Stat returns the file's current [os.FileInfo], used to recover the
	// arena's on-disk size when an existing file is opened.
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// FS defines the filesystem operations the arena layer needs: opening an
// existing file read-only, and opening or creating one for read-write
// access. The only implementation is [Real], which wraps [os.Open] and
// [os.OpenFile] directly.
type FS interface {
	// Open opens path for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens path with the given flags and permissions. See
	// [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)
}

var _ File = (*os.File)(nil)
