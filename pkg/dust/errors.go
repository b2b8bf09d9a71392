package dust

import "errors"

// Sentinel errors identifying the abstract failure kinds a Store operation
// can produce. Callers should use [errors.Is] rather than comparing errors
// directly, since every error returned by this package is wrapped with
// additional context via fmt.Errorf's %w verb.
var (
	// ErrOpen covers a target file missing when not creating, creation
	// attempted without write permission, or an invalid permission/flag
	// combination.
	ErrOpen = errors.New("dust: open error")

	// ErrIO covers a short read/write, a seek failure, or a flush/sync
	// failure.
	ErrIO = errors.New("dust: io error")

	// ErrFormat covers a bad magic number, an unsupported version, a
	// fingerprint-list payload whose size is not a multiple of 32, or an
	// unknown listing record type.
	ErrFormat = errors.New("dust: format error")

	// ErrIntegrity covers a declared fingerprint that disagrees with the
	// SHA-256 of its payload, a per-file end-to-end hash mismatch on
	// extract, or a nonzero hunk trailer byte.
	ErrIntegrity = errors.New("dust: integrity error")

	// ErrCapacity covers an index bucket that has reached its maximum
	// entry count.
	ErrCapacity = errors.New("dust: capacity error")

	// ErrLogic covers caller misuse, such as writing through a read-only
	// handle or passing an unknown permission or index strategy.
	ErrLogic = errors.New("dust: logic error")

	// ErrNotFound marks a fingerprint that has no index entry. Index.Lookup
	// reports absence through its bool result; Store.Get returns an error
	// wrapping both ErrIntegrity and ErrNotFound in that case.
	ErrNotFound = errors.New("dust: fingerprint not found")
)
