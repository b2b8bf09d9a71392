package dust

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// stdioIndexStorage loads the header and every bucket into heap memory on
// open, and writes the whole file back -- atomically, via
// github.com/natefinch/atomic -- on close, but only if something changed.
// This guarantees a crash between Insert calls never corrupts the
// previously-persisted index: either the old file or the fully-written new
// one is observed, never a half-written one.
type stdioIndexStorage struct {
	path       string
	perm       Permission
	numBuckets uint64
	buckets    [][]byte // one indexBucketSize buffer per bucket
	dirty      bool
}

func openStdioIndex(path string, perm Permission, create bool, numBuckets uint64) (*Index, error) {
	info, statErr := os.Stat(path)

	switch {
	case statErr != nil && !os.IsNotExist(statErr):
		return nil, fmt.Errorf("%w: stat index %q: %v", ErrIO, path, statErr)

	case statErr != nil || info.Size() == 0:
		if !create || perm != PermRW {
			return nil, fmt.Errorf("%w: index %q does not exist", ErrOpen, path)
		}

		s := &stdioIndexStorage{
			path:       path,
			perm:       perm,
			numBuckets: numBuckets,
			buckets:    make([][]byte, numBuckets),
			dirty:      true,
		}

		for i := range s.buckets {
			s.buckets[i] = make([]byte, indexBucketSize)
		}

		return &Index{storage: s, numBuckets: numBuckets}, nil

	default:
		return loadStdioIndex(path, perm)
	}
}

func loadStdioIndex(path string, perm Permission) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open index %q: %v", ErrOpen, path, err)
	}
	defer f.Close()

	header := make([]byte, indexHeaderSize)
	if err := readExact(f, header); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}

	numBuckets := getUint64(header[0:8])
	version := getUint64(header[8:16])

	if version != indexFormatVersion {
		return nil, fmt.Errorf("%w: index %q has version %d, want %d", ErrFormat, path, version, indexFormatVersion)
	}

	buckets := make([][]byte, numBuckets)

	for i := range buckets {
		buf := make([]byte, indexBucketSize)
		if err := readExact(f, buf); err != nil {
			return nil, fmt.Errorf("read index bucket %d: %w", i, err)
		}

		buckets[i] = buf
	}

	s := &stdioIndexStorage{path: path, perm: perm, numBuckets: numBuckets, buckets: buckets}

	return &Index{storage: s, numBuckets: numBuckets}, nil
}

func (s *stdioIndexStorage) bucket(n uint64) ([]byte, error) {
	if n >= uint64(len(s.buckets)) {
		return nil, fmt.Errorf("%w: bucket %d out of range (have %d)", ErrLogic, n, len(s.buckets))
	}

	return s.buckets[n], nil
}

func (s *stdioIndexStorage) writeBucket(n uint64, buf []byte) error {
	if s.perm != PermRW {
		return fmt.Errorf("%w: index is read-only", ErrLogic)
	}

	s.buckets[n] = buf
	s.dirty = true

	return nil
}

func (s *stdioIndexStorage) close() error {
	if !s.dirty {
		return nil
	}

	var buf bytes.Buffer

	header := make([]byte, indexHeaderSize)
	putUint64(header[0:8], s.numBuckets)
	putUint64(header[8:16], indexFormatVersion)
	buf.Write(header)

	for _, b := range s.buckets {
		buf.Write(b)
	}

	if err := atomic.WriteFile(s.path, io.NopCloser(&buf)); err != nil {
		return fmt.Errorf("%w: write index %q: %v", ErrIO, s.path, err)
	}

	return nil
}
