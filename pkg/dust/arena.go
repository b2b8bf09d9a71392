package dust

import (
	"fmt"
	"io"
	"os"

	"github.com/ungetc/dust/pkg/fs"
)

// Permission selects whether a handle is opened read-only or read-write.
type Permission int

const (
	PermRead Permission = iota
	PermRW
)

// ArenaOptions configures how an arena is opened.
type ArenaOptions struct {
	// Create causes a missing arena file to be created. Requires PermRW.
	Create bool
}

// Arena is an append-only file of fixed-size, self-describing blocks,
// partitioned into fixed-size hunks whose tails are zero-padded so no
// block straddles a hunk boundary.
type Arena struct {
	fsys fs.FS
	file fs.File
	perm Permission
	size int64
}

// OpenArena opens or creates the arena file at path. A read-only open of a
// missing file fails. A read-write open without Create fails if the file
// is missing; with Create, the file is created if absent.
//
// On open, a fast sanity check walks forward from the start of the
// current (last, possibly partial) hunk to end-of-file, verifying every
// block's declared fingerprint against its payload. This bounds recovery
// work to the last hunk rather than rescanning the whole arena.
func OpenArena(fsys fs.FS, path string, perm Permission, opts ArenaOptions) (*Arena, error) {
	if opts.Create && perm != PermRW {
		return nil, fmt.Errorf("%w: arena create requires read-write permission", ErrOpen)
	}

	var (
		f   fs.File
		err error
	)

	switch perm {
	case PermRead:
		f, err = fsys.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open arena %q: %v", ErrOpen, path, err)
		}
	case PermRW:
		flags := os.O_RDWR
		if opts.Create {
			flags |= os.O_CREATE
		}

		f, err = fsys.OpenFile(path, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("%w: open arena %q: %v", ErrOpen, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown permission %d", ErrLogic, perm)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat arena %q: %v", ErrIO, path, err)
	}

	a := &Arena{fsys: fsys, file: f, perm: perm, size: info.Size()}

	if err := a.sanityCheck(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return a, nil
}

// sanityCheck verifies every block in the current, possibly partial, hunk.
func (a *Arena) sanityCheck() error {
	if a.size == 0 {
		return nil
	}

	hunkStart := (a.size / arenaHunkSize) * arenaHunkSize

	if _, err := a.file.Seek(hunkStart, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek arena to hunk start: %v", ErrIO, err)
	}

	offset := hunkStart
	header := make([]byte, arenaHeaderSize)

	for offset < a.size {
		if err := readExact(a.file, header); err != nil {
			return fmt.Errorf("sanity check at offset %d: %w", offset, err)
		}

		fp, _, size, _ := decodeHeader(header)

		payload := make([]byte, size)
		if err := readExact(a.file, payload); err != nil {
			return fmt.Errorf("sanity check payload at offset %d: %w", offset, err)
		}

		// The full payload slot is always DataBlockSize on disk; skip
		// the unread tail to stay aligned with the next block.
		if remaining := int64(DataBlockSize) - int64(size); remaining > 0 {
			if _, err := a.file.Seek(remaining, io.SeekCurrent); err != nil {
				return fmt.Errorf("%w: seek past payload padding: %v", ErrIO, err)
			}
		}

		if got := fingerprintOf(payload); got != fp {
			return fmt.Errorf("%w: tail block at offset %d: fingerprint mismatch", ErrIntegrity, offset)
		}

		offset += arenaSlotSize
	}

	if _, err := a.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("%w: seek arena to end: %v", ErrIO, err)
	}

	return nil
}

// Append writes block to the end of the arena, zero-padding the current
// hunk's tail first if the block would otherwise straddle a hunk
// boundary, and returns the byte offset of the block's header.
func (a *Arena) Append(block *Block) (uint64, error) {
	if a.perm != PermRW {
		return 0, fmt.Errorf("%w: arena is read-only", ErrLogic)
	}

	cur := a.size % arenaHunkSize
	next := cur + int64(arenaSlotSize)

	if next > arenaHunkSize {
		padding := make([]byte, arenaHunkSize-cur)

		if _, err := a.file.Seek(0, io.SeekEnd); err != nil {
			return 0, fmt.Errorf("%w: seek to end for hunk padding: %v", ErrIO, err)
		}

		if err := writeExact(a.file, padding); err != nil {
			return 0, fmt.Errorf("pad hunk tail: %w", err)
		}

		a.size += int64(len(padding))
	}

	offset := a.size

	header := make([]byte, arenaHeaderSize)
	block.encodeHeader(header)

	if _, err := a.file.Seek(0, io.SeekEnd); err != nil {
		return 0, fmt.Errorf("%w: seek to end for append: %v", ErrIO, err)
	}

	if err := writeExact(a.file, header); err != nil {
		return 0, fmt.Errorf("write block header: %w", err)
	}

	if err := writeExact(a.file, block.Payload); err != nil {
		return 0, fmt.Errorf("write block payload: %w", err)
	}

	if err := a.file.Sync(); err != nil {
		return 0, fmt.Errorf("%w: flush arena: %v", ErrIO, err)
	}

	a.size += int64(arenaSlotSize)

	return uint64(offset), nil
}

// ReadAt reads the block whose header starts at offset.
func (a *Arena) ReadAt(offset uint64) (*Block, error) {
	if _, err := a.file.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to block at %d: %v", ErrIO, offset, err)
	}

	header := make([]byte, arenaHeaderSize)
	if err := readExact(a.file, header); err != nil {
		return nil, fmt.Errorf("read block header at %d: %w", offset, err)
	}

	fp, blockType, size, wtime := decodeHeader(header)

	payload := make([]byte, DataBlockSize)
	if err := readExact(a.file, payload); err != nil {
		return nil, fmt.Errorf("read block payload at %d: %w", offset, err)
	}

	return &Block{Fingerprint: fp, Type: blockType, Size: size, WTime: wtime, Payload: payload}, nil
}

// BlockVisitor is called once per block discovered by ForEachBlock.
type BlockVisitor func(block *Block, offset uint64) error

// ForEachBlock walks every block in the arena in order, from the
// beginning, invoking visit for each. A zero header is treated as a hunk
// trailer if fewer than one block's worth of space remains in the current
// hunk; otherwise it is reported as an error (but the scan resumes at the
// next hunk boundary). Any nonzero trailer byte is reported as an error
// without stopping the scan. The aggregate error, if any, wraps
// ErrIntegrity.
func (a *Arena) ForEachBlock(visit BlockVisitor) error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek arena to start: %v", ErrIO, err)
	}

	var problems []error

	offset := int64(0)
	header := make([]byte, arenaHeaderSize)

	checkTrailerZero := func(trailer []byte, base int64) {
		for i, b := range trailer {
			if b != 0 {
				problems = append(problems, fmt.Errorf("%w: nonzero hunk trailer byte at offset %d", ErrIntegrity, base+int64(i)))
			}
		}
	}

	for offset < a.size {
		hunkOffset := offset % arenaHunkSize
		remainingInHunk := arenaHunkSize - hunkOffset

		if remainingInHunk < int64(arenaHeaderSize) {
			trailer := make([]byte, remainingInHunk)
			if err := readExact(a.file, trailer); err != nil {
				return fmt.Errorf("read hunk trailer at %d: %w", offset, err)
			}

			checkTrailerZero(trailer, offset)
			offset += remainingInHunk

			continue
		}

		if err := readExact(a.file, header); err != nil {
			return fmt.Errorf("read header at %d: %w", offset, err)
		}

		if headerIsZero(header) {
			if remainingInHunk >= int64(arenaSlotSize) {
				problems = append(problems, fmt.Errorf("%w: hunk end encountered too soon at offset %d", ErrIntegrity, offset))
			}

			trailer := make([]byte, remainingInHunk-int64(arenaHeaderSize))
			if len(trailer) > 0 {
				if err := readExact(a.file, trailer); err != nil {
					return fmt.Errorf("read hunk trailer at %d: %w", offset, err)
				}

				checkTrailerZero(trailer, offset+int64(arenaHeaderSize))
			}

			offset += remainingInHunk

			continue
		}

		fp, blockType, size, wtime := decodeHeader(header)

		payload := make([]byte, DataBlockSize)
		if err := readExact(a.file, payload); err != nil {
			return fmt.Errorf("read payload at %d: %w", offset, err)
		}

		block := &Block{Fingerprint: fp, Type: blockType, Size: size, WTime: wtime, Payload: payload}

		if err := visit(block, uint64(offset)); err != nil {
			problems = append(problems, err)
		}

		offset += int64(arenaSlotSize)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %d problem(s) found, first: %v", ErrIntegrity, len(problems), problems[0])
	}

	return nil
}

// Close flushes and closes the underlying file.
func (a *Arena) Close() error {
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("%w: close arena: %v", ErrIO, err)
	}

	return nil
}
