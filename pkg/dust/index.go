package dust

import "fmt"

// IndexStrategy selects how an index's buckets are held and persisted.
type IndexStrategy int

const (
	// IndexStdio loads the whole index into heap memory on open and
	// writes it back atomically on close if it was modified.
	IndexStdio IndexStrategy = iota

	// IndexMmap memory-maps the index file directly, syncing on close.
	IndexMmap
)

// IndexOptions configures how an index is opened.
type IndexOptions struct {
	// Create causes a missing index file to be created. Requires PermRW.
	Create bool

	// Strategy selects the storage backend. Only consulted when
	// opening; an already-created index file is read with whichever
	// strategy the caller requests regardless of how it was created.
	Strategy IndexStrategy

	// NumBuckets is the bucket count for a newly created index. Only
	// meaningful when Create is set and the file does not already
	// exist; ignored otherwise. Defaults to defaultNumBuckets if zero.
	NumBuckets uint64
}

// indexEntry is one (fingerprint, arena-offset) pair inside a bucket.
type indexEntry struct {
	Fingerprint Fingerprint
	Offset      uint64
}

// Index maps block fingerprints to arena offsets, backed by one of two
// on-disk storage strategies (see IndexStrategy).
type Index struct {
	storage    indexStorage
	numBuckets uint64
}

// indexStorage is the capability set shared by the stdio and mmap backends.
// Modeling the two strategies as implementations of one small interface,
// rather than a single type with an internal tag, keeps the mmap-specific
// file-descriptor and mapping state from leaking into the stdio path.
type indexStorage interface {
	bucket(n uint64) ([]byte, error)
	writeBucket(n uint64, buf []byte) error
	close() error
}

// OpenIndex opens or creates the index file at path using the requested
// strategy.
func OpenIndex(path string, perm Permission, opts IndexOptions) (*Index, error) {
	if opts.Create && perm != PermRW {
		return nil, fmt.Errorf("%w: index create requires read-write permission", ErrOpen)
	}

	numBuckets := opts.NumBuckets
	if numBuckets == 0 {
		numBuckets = defaultNumBuckets
	}

	switch opts.Strategy {
	case IndexStdio:
		return openStdioIndex(path, perm, opts.Create, numBuckets)
	case IndexMmap:
		return openMmapIndex(path, perm, opts.Create, numBuckets)
	default:
		return nil, fmt.Errorf("%w: unknown index strategy %d", ErrLogic, opts.Strategy)
	}
}

// BucketFor returns the bucket index a fingerprint would hash to under a
// numBuckets-bucket index, for the inspect REPL's "bucket" command.
func BucketFor(fp Fingerprint, numBuckets uint64) uint64 {
	return bucketFor(fp, numBuckets)
}

// bucketFor returns the bucket index a fingerprint hashes to, by
// XOR-folding its 32 bytes into a uint64 (byte i shifted left by (i mod 8)
// * 8 bits) and reducing modulo the bucket count.
func bucketFor(fp Fingerprint, numBuckets uint64) uint64 {
	var h uint64

	for i, b := range fp {
		h ^= uint64(b) << uint((i%8)*8)
	}

	return h % numBuckets
}

// decodeBucket parses up to maxEntriesPerBucket entries from a
// indexBucketSize-length buffer.
func decodeBucket(buf []byte) []indexEntry {
	count := getUint32(buf[maxEntriesPerBucket*indexEntrySize : maxEntriesPerBucket*indexEntrySize+4])

	entries := make([]indexEntry, 0, count)

	for i := uint32(0); i < count; i++ {
		off := int(i) * indexEntrySize

		var e indexEntry
		copy(e.Fingerprint[:], buf[off:off+FingerprintSize])
		e.Offset = getUint64(buf[off+FingerprintSize : off+indexEntrySize])

		entries = append(entries, e)
	}

	return entries
}

// encodeBucket serializes entries into a fresh indexBucketSize-length
// buffer.
func encodeBucket(entries []indexEntry) []byte {
	buf := make([]byte, indexBucketSize)

	for i, e := range entries {
		off := i * indexEntrySize
		copy(buf[off:off+FingerprintSize], e.Fingerprint[:])
		putUint64(buf[off+FingerprintSize:off+indexEntrySize], e.Offset)
	}

	putUint32(buf[maxEntriesPerBucket*indexEntrySize:maxEntriesPerBucket*indexEntrySize+4], uint32(len(entries)))

	return buf
}

// Contains reports whether fp has an entry in the index.
func (idx *Index) Contains(fp Fingerprint) (bool, error) {
	_, ok, err := idx.Lookup(fp)
	return ok, err
}

// Lookup returns the arena offset for fp, if present.
func (idx *Index) Lookup(fp Fingerprint) (uint64, bool, error) {
	bucketNum := bucketFor(fp, idx.numBuckets)

	buf, err := idx.storage.bucket(bucketNum)
	if err != nil {
		return 0, false, err
	}

	for _, e := range decodeBucket(buf) {
		if e.Fingerprint == fp {
			return e.Offset, true, nil
		}
	}

	return 0, false, nil
}

// Insert records that fp lives at offset. It is an error to insert a
// fingerprint into a bucket that already holds maxEntriesPerBucket
// entries: the index cannot grow on the fly, and the operator must
// rebuild with a larger bucket count.
func (idx *Index) Insert(fp Fingerprint, offset uint64) error {
	bucketNum := bucketFor(fp, idx.numBuckets)

	buf, err := idx.storage.bucket(bucketNum)
	if err != nil {
		return err
	}

	entries := decodeBucket(buf)

	for _, e := range entries {
		if e.Fingerprint == fp {
			return nil // already present
		}
	}

	if len(entries) >= maxEntriesPerBucket {
		return fmt.Errorf("%w: bucket %d is full (%d entries)", ErrCapacity, bucketNum, maxEntriesPerBucket)
	}

	entries = append(entries, indexEntry{Fingerprint: fp, Offset: offset})

	return idx.storage.writeBucket(bucketNum, encodeBucket(entries))
}

// Close releases the index's storage, persisting any modifications.
func (idx *Index) Close() error {
	return idx.storage.close()
}
