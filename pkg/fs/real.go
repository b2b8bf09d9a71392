package fs

import (
	"os"
)

// Real implements [FS] against the real filesystem. Both methods are
// pure passthroughs to the [os] package.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

func (r *Real) Open(path string) (File, error) {
	return os.Open(path)
}

func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

var _ FS = (*Real)(nil)
