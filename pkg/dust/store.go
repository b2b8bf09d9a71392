package dust

import (
	"errors"
	"fmt"
	"time"

	"github.com/ungetc/dust/pkg/fs"
)

// Store is the programmatic façade combining an open arena and index
// handle behind Put/Get/Check. Index rebuilding is the package-level
// RebuildIndex function, not a Store method.
type Store struct {
	arena  *Arena
	index  *Index
	fake   *uint64
	logger Logger
}

// Open opens (creating if necessary) the arena and index named by cfg,
// returning a ready-to-use Store. Both handles are opened read-write.
func Open(fsys fs.FS, cfg Config) (*Store, error) {
	arena, err := OpenArena(fsys, cfg.ArenaPath, PermRW, ArenaOptions{Create: true})
	if err != nil {
		return nil, err
	}

	index, err := OpenIndex(cfg.IndexPath, PermRW, IndexOptions{
		Create:     true,
		Strategy:   cfg.IndexStrategy,
		NumBuckets: cfg.NumBuckets,
	})
	if err != nil {
		_ = arena.Close()
		return nil, err
	}

	return &Store{
		arena:  arena,
		index:  index,
		fake:   cfg.FakeTimestamp,
		logger: loggerOrDiscard(cfg.Logger),
	}, nil
}

// OpenReadOnly opens the arena and index named by cfg for reading only,
// suitable for extract, list, and check.
func OpenReadOnly(fsys fs.FS, cfg Config) (*Store, error) {
	arena, err := OpenArena(fsys, cfg.ArenaPath, PermRead, ArenaOptions{})
	if err != nil {
		return nil, err
	}

	index, err := OpenIndex(cfg.IndexPath, PermRead, IndexOptions{Strategy: cfg.IndexStrategy})
	if err != nil {
		_ = arena.Close()
		return nil, err
	}

	return &Store{
		arena:  arena,
		index:  index,
		fake:   cfg.FakeTimestamp,
		logger: loggerOrDiscard(cfg.Logger),
	}, nil
}

// OpenArenaOnly opens just the arena, read-only, for use by Check, which
// does not require the index per its contract.
func OpenArenaOnly(fsys fs.FS, cfg Config) (*Store, error) {
	arena, err := OpenArena(fsys, cfg.ArenaPath, PermRead, ArenaOptions{})
	if err != nil {
		return nil, err
	}

	return &Store{arena: arena, logger: loggerOrDiscard(cfg.Logger)}, nil
}

func (s *Store) wtime() uint64 {
	if s.fake != nil {
		return *s.fake
	}

	return uint64(time.Now().Unix())
}

// Put stores data under the given block type, returning its fingerprint.
// If an identical fingerprint is already present, the arena is not
// touched and the existing fingerprint is returned: put is idempotent.
func (s *Store) Put(data []byte, blockType uint32) (Fingerprint, error) {
	if s.index == nil {
		return Fingerprint{}, fmt.Errorf("%w: store was opened without an index", ErrLogic)
	}

	fp := fingerprintOf(data)

	exists, err := s.index.Contains(fp)
	if err != nil {
		return Fingerprint{}, err
	}

	if exists {
		return fp, nil
	}

	block, err := newBlock(data, blockType, s.wtime())
	if err != nil {
		return Fingerprint{}, err
	}

	offset, err := s.arena.Append(block)
	if err != nil {
		return Fingerprint{}, err
	}

	if err := s.index.Insert(fp, offset); err != nil {
		return Fingerprint{}, err
	}

	s.logger.Verbosef("put %s (%d bytes, type %d) at offset %d", fp, block.Size, blockType, offset)

	return fp, nil
}

// Get retrieves the block named by fp, verifying both the stored header
// fingerprint and a freshly computed hash of the payload against fp.
// Either mismatch means the store is corrupt and is fatal.
func (s *Store) Get(fp Fingerprint) (*Block, error) {
	if s.index == nil {
		return nil, fmt.Errorf("%w: store was opened without an index", ErrLogic)
	}

	offset, ok, err := s.index.Lookup(fp)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: fingerprint %s: %w", ErrIntegrity, fp, ErrNotFound)
	}

	block, err := s.arena.ReadAt(offset)
	if err != nil {
		return nil, err
	}

	if block.Fingerprint != fp {
		return nil, fmt.Errorf("%w: block at offset %d declares fingerprint %s, index says %s", ErrIntegrity, offset, block.Fingerprint, fp)
	}

	if got := fingerprintOf(block.Data()); got != fp {
		return nil, fmt.Errorf("%w: block at offset %d hashes to %s, want %s", ErrIntegrity, offset, got, fp)
	}

	return block, nil
}

// Check scans every block in the arena, recomputing and comparing its
// fingerprint, and verifies every hunk trailer is zero. It does not
// require an index. ForEachBlock aggregates per-block and trailer
// problems into one error and keeps scanning past the first one.
func (s *Store) Check() error {
	return s.arena.ForEachBlock(func(block *Block, offset uint64) error {
		if got := fingerprintOf(block.Data()); got != block.Fingerprint {
			return fmt.Errorf("%w: block at offset %d declares %s, contents hash to %s", ErrIntegrity, offset, block.Fingerprint, got)
		}

		return nil
	})
}

// Close releases the store's arena and index handles.
func (s *Store) Close() error {
	var errs []error

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.arena.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
