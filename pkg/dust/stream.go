package dust

import (
	"fmt"
	"hash"
	"io"
	"os"
)

// Split chunks src into DataBlockSize-byte pieces, storing each through
// Put, and returns the fingerprint naming the whole stream.
//
// If src is exhausted after exactly one chunk (including the empty
// stream), the chunk's own fingerprint is returned directly: no wrapping
// block is created. Otherwise every chunk's fingerprint is collected into
// a temporary fingerprint listing, which is itself split recursively with
// blockType FINGERPRINTS -- necessary because a fingerprint listing can
// itself exceed one block once a stream has more than 2,048 chunks.
//
// If hasher is non-nil, it is fed the original bytes of src as they are
// read, before any chunking. This computes the per-file end-to-end hash
// independently of the recursive fingerprint-listing wrapping, so it is
// never polluted by fingerprint-listing bytes regardless of how many
// recursion levels the stream needs.
func Split(store *Store, src io.Reader, blockType uint32, hasher hash.Hash) (Fingerprint, error) {
	if hasher != nil {
		src = io.TeeReader(src, hasher)
	}

	listing, err := os.CreateTemp("", "dust-fplisting-*")
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: create fingerprint listing: %v", ErrIO, err)
	}
	defer os.Remove(listing.Name())
	defer listing.Close()

	var (
		buf       = make([]byte, DataBlockSize)
		chunkFP   Fingerprint
		chunkN    int
	)

	for {
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			fp, err := store.Put(buf[:n], blockType)
			if err != nil {
				return Fingerprint{}, err
			}

			chunkFP = fp
			chunkN++

			if _, err := listing.Write(fp[:]); err != nil {
				return Fingerprint{}, fmt.Errorf("%w: write fingerprint listing: %v", ErrIO, err)
			}
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}

		if readErr != nil {
			return Fingerprint{}, fmt.Errorf("%w: read source stream: %v", ErrIO, readErr)
		}
	}

	if chunkN == 0 {
		// Empty stream: one zero-length FILEDATA block.
		return store.Put(nil, blockType)
	}

	if chunkN == 1 {
		return chunkFP, nil
	}

	if _, err := listing.Seek(0, io.SeekStart); err != nil {
		return Fingerprint{}, fmt.Errorf("%w: rewind fingerprint listing: %v", ErrIO, err)
	}

	return Split(store, listing, TypeFingerprints, nil)
}

// Extract reassembles the stream named by fp, writing FILEDATA payloads to
// sink (if non-nil) and feeding them to hasher (if non-nil) in order.
// FINGERPRINTS blocks are recursed into left-to-right so bytes reach sink
// in their original order. Any other block type is corruption.
func Extract(store *Store, fp Fingerprint, sink io.Writer, hasher hash.Hash) error {
	block, err := store.Get(fp)
	if err != nil {
		return err
	}

	switch block.Type {
	case TypeFileData:
		data := block.Data()

		if hasher != nil {
			hasher.Write(data)
		}

		if sink != nil {
			if _, err := sink.Write(data); err != nil {
				return fmt.Errorf("%w: write extracted data: %v", ErrIO, err)
			}
		}

		return nil

	case TypeFingerprints:
		data := block.Data()

		if len(data) == 0 || len(data)%FingerprintSize != 0 {
			return fmt.Errorf("%w: fingerprint-list block has size %d, not a nonzero multiple of %d", ErrFormat, len(data), FingerprintSize)
		}

		for i := 0; i < len(data); i += FingerprintSize {
			var child Fingerprint
			copy(child[:], data[i:i+FingerprintSize])

			if err := Extract(store, child, sink, hasher); err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("%w: block %s has unknown type %d", ErrFormat, fp, block.Type)
	}
}
