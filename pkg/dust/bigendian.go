package dust

import "encoding/binary"

// Every multibyte integer in the arena, index, and listing wire formats is
// big-endian. These helpers centralize that choice so none of the codec
// files need to import encoding/binary directly or risk mixing byte orders.

func putUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func putUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

func getUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func getUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
