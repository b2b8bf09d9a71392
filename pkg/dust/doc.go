// Package dust implements a content-addressed, deduplicating archival
// store for filesystem trees.
//
// A [Store] combines two on-disk structures: an append-only arena of
// fixed-size, self-verifying data blocks, and an index mapping block
// fingerprints (SHA-256 of the block payload) to arena offsets. Identical
// byte blocks are stored exactly once regardless of how many files or
// archives reference them.
//
// On top of the block store, [Split] and [Extract] chunk arbitrary byte
// streams into blocks and reassemble them, and the listing codec
// ([EncodeListing], [DecodeListing]) records a set of filesystem entries
// (regular files, directories, symlinks) as just another content-addressed
// stream.
//
// Usage:
//
//	store, err := dust.Open(fs.NewReal(), dust.Config{IndexPath: "index", ArenaPath: "arena"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	fp, err := store.Put([]byte("hello"), dust.TypeFileData)
//
// The store is single-threaded and synchronous: no method is safe for
// concurrent use by multiple goroutines, and there is no support for
// multiple processes sharing an arena or index.
package dust
