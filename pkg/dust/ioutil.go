package dust

import (
	"errors"
	"fmt"
	"io"
)

// readExact reads len(buf) bytes from r, or returns an error wrapping
// ErrIO. A short read for any reason -- including a clean EOF -- is
// treated as fatal, mirroring the reference implementation's dfread, which
// terminates the process rather than returning a partial result.
func readExact(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: short read: %v", ErrIO, err)
		}

		return fmt.Errorf("%w: read: %v", ErrIO, err)
	}

	return nil
}

// writeExact writes all of buf to w, or returns an error wrapping ErrIO.
func writeExact(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}

	if n != len(buf) {
		return fmt.Errorf("%w: short write: wrote %d of %d bytes", ErrIO, n, len(buf))
	}

	return nil
}
