package dust

import (
	"fmt"

	"github.com/ungetc/dust/pkg/fs"
)

// RebuildIndex scans every block in the arena at arenaPath and writes a
// fresh index to newIndexPath, using strategy and numBuckets (zero meaning
// the default). The caller is responsible for ensuring newIndexPath
// differs from any currently-configured index; RebuildIndex itself does
// not know what "currently configured" means, since that is a property of
// the caller's environment, not of the arena or index files.
func RebuildIndex(fsys fs.FS, arenaPath, newIndexPath string, strategy IndexStrategy, numBuckets uint64) error {
	arena, err := OpenArena(fsys, arenaPath, PermRead, ArenaOptions{})
	if err != nil {
		return err
	}
	defer arena.Close()

	index, err := OpenIndex(newIndexPath, PermRW, IndexOptions{
		Create:     true,
		Strategy:   strategy,
		NumBuckets: numBuckets,
	})
	if err != nil {
		return err
	}

	err = arena.ForEachBlock(func(block *Block, offset uint64) error {
		return index.Insert(block.Fingerprint, offset)
	})
	if err != nil {
		_ = index.Close()
		return fmt.Errorf("rebuild index from %q: %w", arenaPath, err)
	}

	return index.Close()
}
