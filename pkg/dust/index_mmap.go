package dust

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapIndexStorage memory-maps the whole index file. Reads and writes
// against the mapping go straight to the page cache; close syncs the
// mapping back to disk and unmaps it.
type mmapIndexStorage struct {
	file *os.File
	data []byte // mmap of the full file: header followed by buckets
	perm Permission
}

func openMmapIndex(path string, perm Permission, create bool, numBuckets uint64) (*Index, error) {
	flags := os.O_RDONLY
	if perm == PermRW {
		flags = os.O_RDWR
	}

	info, statErr := os.Stat(path)
	needsInit := statErr != nil && os.IsNotExist(statErr)
	if statErr == nil && info.Size() == 0 {
		needsInit = true
	}

	if needsInit {
		if !create || perm != PermRW {
			return nil, fmt.Errorf("%w: index %q does not exist", ErrOpen, path)
		}

		flags |= os.O_CREATE
	} else if statErr != nil {
		return nil, fmt.Errorf("%w: stat index %q: %v", ErrIO, path, statErr)
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open index %q: %v", ErrOpen, path, err)
	}

	if needsInit {
		size := int64(indexHeaderSize) + int64(numBuckets)*int64(indexBucketSize)

		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: truncate index %q: %v", ErrIO, path, err)
		}
	} else {
		info, err = f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: stat index %q: %v", ErrIO, path, err)
		}
	}

	prot := unix.PROT_READ
	if perm == PermRW {
		prot |= unix.PROT_WRITE
	}

	size := info.Size()
	if needsInit {
		size = int64(indexHeaderSize) + int64(numBuckets)*int64(indexBucketSize)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap index %q: %v", ErrIO, path, err)
	}

	s := &mmapIndexStorage{file: f, data: data, perm: perm}

	if needsInit {
		putUint64(s.data[0:8], numBuckets)
		putUint64(s.data[8:16], indexFormatVersion)

		return &Index{storage: s, numBuckets: numBuckets}, nil
	}

	fileNumBuckets := getUint64(s.data[0:8])
	version := getUint64(s.data[8:16])

	if version != indexFormatVersion {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: index %q has version %d, want %d", ErrFormat, path, version, indexFormatVersion)
	}

	return &Index{storage: s, numBuckets: fileNumBuckets}, nil
}

func (s *mmapIndexStorage) bucket(n uint64) ([]byte, error) {
	start := indexHeaderSize + int(n)*indexBucketSize
	end := start + indexBucketSize

	if end > len(s.data) {
		return nil, fmt.Errorf("%w: bucket %d out of range", ErrLogic, n)
	}

	// Return a copy so callers can mutate freely without touching the
	// mapping until writeBucket is called.
	buf := make([]byte, indexBucketSize)
	copy(buf, s.data[start:end])

	return buf, nil
}

func (s *mmapIndexStorage) writeBucket(n uint64, buf []byte) error {
	if s.perm != PermRW {
		return fmt.Errorf("%w: index is read-only", ErrLogic)
	}

	start := indexHeaderSize + int(n)*indexBucketSize
	copy(s.data[start:start+indexBucketSize], buf)

	return nil
}

func (s *mmapIndexStorage) close() error {
	if s.perm == PermRW {
		if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
			return fmt.Errorf("%w: msync index: %v", ErrIO, err)
		}
	}

	if err := unix.Munmap(s.data); err != nil {
		return fmt.Errorf("%w: munmap index: %v", ErrIO, err)
	}

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("%w: close index file: %v", ErrIO, err)
	}

	return nil
}
