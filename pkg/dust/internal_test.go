package dust

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BigEndian_Helpers_Roundtrip(t *testing.T) {
	t.Parallel()

	buf32 := make([]byte, 4)
	putUint32(buf32, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), getUint32(buf32))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf32)

	buf64 := make([]byte, 8)
	putUint64(buf64, 0x0102030405060708)
	require.Equal(t, uint64(0x0102030405060708), getUint64(buf64))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, buf64)
}

func Test_FingerprintOf_Is_Deterministic_And_Sensitive_To_Content(t *testing.T) {
	t.Parallel()

	a := fingerprintOf([]byte("hello"))
	b := fingerprintOf([]byte("hello"))
	c := fingerprintOf([]byte("world"))

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func Test_Fingerprint_IsZero(t *testing.T) {
	t.Parallel()

	var zero Fingerprint
	require.True(t, zero.IsZero())

	nonzero := fingerprintOf([]byte("x"))
	require.False(t, nonzero.IsZero())
}

func Test_NewBlock_Rejects_Oversized_Payload(t *testing.T) {
	t.Parallel()

	_, err := newBlock(make([]byte, DataBlockSize+1), TypeFileData, 0)
	require.ErrorIs(t, err, ErrLogic)
}

func Test_NewBlock_Pads_Payload_To_DataBlockSize(t *testing.T) {
	t.Parallel()

	block, err := newBlock([]byte("abc"), TypeFileData, 42)
	require.NoError(t, err)

	require.Len(t, block.Payload, DataBlockSize)
	require.Equal(t, []byte("abc"), block.Data())
	require.Equal(t, uint32(3), block.Size)
	require.Equal(t, uint64(42), block.WTime)
	require.Equal(t, fingerprintOf([]byte("abc")), block.Fingerprint)
}

func Test_Block_Header_Roundtrips_Through_Encode_Decode(t *testing.T) {
	t.Parallel()

	block, err := newBlock([]byte("payload"), TypeFingerprints, 7)
	require.NoError(t, err)

	header := make([]byte, arenaHeaderSize)
	block.encodeHeader(header)

	fp, blockType, size, wtime := decodeHeader(header)
	require.Equal(t, block.Fingerprint, fp)
	require.Equal(t, block.Type, blockType)
	require.Equal(t, block.Size, size)
	require.Equal(t, block.WTime, wtime)
}

func Test_HeaderIsZero(t *testing.T) {
	t.Parallel()

	require.True(t, headerIsZero(make([]byte, arenaHeaderSize)))

	nonzero := make([]byte, arenaHeaderSize)
	nonzero[len(nonzero)-1] = 1
	require.False(t, headerIsZero(nonzero))
}

func Test_BucketFor_Is_Deterministic_And_Bounded(t *testing.T) {
	t.Parallel()

	fp := fingerprintOf([]byte("some content"))

	n1 := bucketFor(fp, 17)
	n2 := bucketFor(fp, 17)
	require.Equal(t, n1, n2)
	require.Less(t, n1, uint64(17))
}

func Test_EncodeBucket_DecodeBucket_Roundtrip(t *testing.T) {
	t.Parallel()

	entries := []indexEntry{
		{Fingerprint: fingerprintOf([]byte("a")), Offset: 100},
		{Fingerprint: fingerprintOf([]byte("b")), Offset: 200},
	}

	buf := encodeBucket(entries)
	require.Len(t, buf, indexBucketSize)

	decoded := decodeBucket(buf)
	require.Equal(t, entries, decoded)
}

func Test_EncodeBucket_Empty(t *testing.T) {
	t.Parallel()

	buf := encodeBucket(nil)
	decoded := decodeBucket(buf)
	require.Empty(t, decoded)
}

func Test_ReadExact_WriteExact_Roundtrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeExact(&buf, []byte("abcdef")))

	out := make([]byte, 6)
	require.NoError(t, readExact(&buf, out))
	require.Equal(t, []byte("abcdef"), out)
}

func Test_ReadExact_Returns_ErrIO_On_Short_Read(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBufferString("ab")
	out := make([]byte, 4)

	err := readExact(buf, out)
	require.ErrorIs(t, err, ErrIO)
}
