package dust

// Wire-format constants. These sizes are mandatory: the arena and index
// files are parsed byte-for-byte, so none of them may change without
// breaking every store written under the old values.
const (
	// FingerprintSize is the length in bytes of a block fingerprint
	// (SHA-256 digest).
	FingerprintSize = 32

	// DataBlockSize is the maximum number of meaningful payload bytes in
	// a single block, and the fixed size of the on-disk payload slot.
	DataBlockSize = 64 * 1024

	// arenaHeaderSize is the size in bytes of a block's on-disk header:
	// 32-byte fingerprint, u32 type, u32 size, u64 wtime.
	arenaHeaderSize = FingerprintSize + 4 + 4 + 8

	// arenaSlotSize is the full on-disk size of one block: header plus
	// the fixed-size payload region.
	arenaSlotSize = arenaHeaderSize + DataBlockSize

	// arenaHunkSize is the size in bytes of one arena hunk. No block may
	// straddle a multiple of this value.
	arenaHunkSize = 100_000_000

	// indexHeaderSize is the size in bytes of the index file header.
	indexHeaderSize = 4096

	// indexBucketSize is the size in bytes of one index bucket.
	indexBucketSize = 4096

	// indexEntrySize is the size in bytes of one (fingerprint, offset)
	// entry within a bucket: 32-byte fingerprint plus an 8-byte
	// big-endian offset.
	indexEntrySize = FingerprintSize + 8

	// maxEntriesPerBucket is the maximum number of entries a single
	// index bucket can hold: (bucket size - count field - padding) /
	// entry size = (4096 - 4 - 12) / 40 = 102.
	maxEntriesPerBucket = (indexBucketSize - 4 - 12) / indexEntrySize

	// indexFormatVersion is the only value dust accepts in the index
	// header's version field. Distinct from listingFormatVersion; the
	// two must never be conflated.
	indexFormatVersion = 0

	// defaultNumBuckets gives a ~4GiB index by default (1,048,576 * 4096
	// bytes), with capacity for roughly 100M fingerprints before
	// overflow.
	defaultNumBuckets = 1024 * 1024

	// DefaultNumBuckets is defaultNumBuckets, exported for callers (such as
	// the inspect REPL's "bucket" command) that need to resolve a Config's
	// zero-means-default NumBuckets field the same way OpenIndex does.
	DefaultNumBuckets = defaultNumBuckets

	// listingMagic identifies both the outer archive file and the inner
	// listing stream.
	listingMagic = 0xA7842A73

	// listingFormatVersion is the version field of the inner listing
	// stream. Distinct from indexFormatVersion.
	listingFormatVersion = 1
)

// Block type tags.
const (
	// TypeFileData marks a block whose payload is opaque file bytes.
	TypeFileData uint32 = 0

	// TypeFingerprints marks a block whose payload is a concatenation of
	// further fingerprints.
	TypeFingerprints uint32 = 1
)

// Listing record type tags.
const (
	recordTypeFile      uint32 = 0
	recordTypeDirectory uint32 = 1
	recordTypeSymlink   uint32 = 2
)
