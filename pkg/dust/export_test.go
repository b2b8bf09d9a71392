package dust

import (
	"os"
	"testing"
)

// NewBlockForTest exposes newBlock to dust_test.
func NewBlockForTest(data []byte, blockType uint32, wtime uint64) (*Block, error) {
	return newBlock(data, blockType, wtime)
}

// FingerprintOfForTest exposes fingerprintOf to dust_test.
func FingerprintOfForTest(data []byte) Fingerprint {
	return fingerprintOf(data)
}

// MaxEntriesPerBucketForTest exposes maxEntriesPerBucket to dust_test.
const MaxEntriesPerBucketForTest = maxEntriesPerBucket

// CorruptArenaPayloadForTest flips a byte inside the first block's payload
// region of the arena file at path, for exercising fingerprint-mismatch
// detection from the external test package.
func CorruptArenaPayloadForTest(t *testing.T, path string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open arena for corruption: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteAt([]byte{0xff}, int64(arenaHeaderSize)); err != nil {
		t.Fatalf("corrupt arena payload: %v", err)
	}
}
