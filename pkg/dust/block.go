package dust

import "fmt"

// Block is a single unit of storage in the arena: a self-describing,
// self-verifying chunk of up to DataBlockSize bytes.
type Block struct {
	Fingerprint Fingerprint
	Type        uint32
	Size        uint32
	WTime       uint64
	Payload     []byte // always len DataBlockSize; only Payload[:Size] is meaningful
}

// Data returns the meaningful portion of the block's payload.
func (b *Block) Data() []byte {
	return b.Payload[:b.Size]
}

// newBlock composes a Block from data, zero-padding the payload to
// DataBlockSize. data must not exceed DataBlockSize bytes.
func newBlock(data []byte, blockType uint32, wtime uint64) (*Block, error) {
	if len(data) > DataBlockSize {
		return nil, fmt.Errorf("%w: block payload %d exceeds %d bytes", ErrLogic, len(data), DataBlockSize)
	}

	payload := make([]byte, DataBlockSize)
	copy(payload, data)

	return &Block{
		Fingerprint: fingerprintOf(data),
		Type:        blockType,
		Size:        uint32(len(data)),
		WTime:       wtime,
		Payload:     payload,
	}, nil
}

// encodeHeader writes the block's 48-byte on-disk header into buf, which
// must be at least arenaHeaderSize bytes long.
func (b *Block) encodeHeader(buf []byte) {
	copy(buf[0:FingerprintSize], b.Fingerprint[:])
	putUint32(buf[FingerprintSize:FingerprintSize+4], b.Type)
	putUint32(buf[FingerprintSize+4:FingerprintSize+8], b.Size)
	putUint64(buf[FingerprintSize+8:FingerprintSize+16], b.WTime)
}

// decodeHeader parses a 48-byte on-disk header from buf.
func decodeHeader(buf []byte) (fp Fingerprint, blockType, size uint32, wtime uint64) {
	copy(fp[:], buf[0:FingerprintSize])
	blockType = getUint32(buf[FingerprintSize : FingerprintSize+4])
	size = getUint32(buf[FingerprintSize+4 : FingerprintSize+8])
	wtime = getUint64(buf[FingerprintSize+8 : FingerprintSize+16])

	return fp, blockType, size, wtime
}

// headerIsZero reports whether buf (an arenaHeaderSize-length header
// buffer) is entirely zero bytes, the hunk-trailer sentinel.
func headerIsZero(buf []byte) bool {
	for _, c := range buf {
		if c != 0 {
			return false
		}
	}

	return true
}
