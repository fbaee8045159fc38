package verkle

import "errors"

// Sentinel errors returned by the trie's public operations. Mirrors
// ethereum-go-verkle's package-level error values (errInsertIntoHash,
// errDeleteNonExistent, errSerializeUnknownNodeType), tested by callers
// with errors.Is rather than string comparison.
var (
	// ErrKeyNotFound is returned by Lookup, Delete and Prove when the key
	// is absent from the trie. Update never returns it: an absent key is
	// inserted.
	ErrKeyNotFound = errors.New("verkle: key not found")

	// ErrStoreFailure wraps an error returned by the underlying store.KV,
	// via fmt.Errorf("%w: %v", ErrStoreFailure, err): errors.Is matches
	// ErrStoreFailure, and the original error survives only as text.
	ErrStoreFailure = errors.New("verkle: node store failure")

	// ErrProofMalformed is returned when a proof's structure (lengths,
	// index ranges) cannot possibly be valid, before any cryptographic
	// check is attempted.
	ErrProofMalformed = errors.New("verkle: malformed proof")

	// ErrProofInvalid names a structurally well-formed proof that fails
	// its cryptographic verification. Verify does not return it: it
	// reports that outcome as false with a nil error.
	ErrProofInvalid = errors.New("verkle: proof failed verification")

	// ErrCorruption is returned when the stored trie is structurally
	// inconsistent: CheckValidTree finds a commitment/hash mismatch, a
	// missing child or an uncollapsed single-leaf inner, or a walk finds
	// a referenced node missing or of the wrong kind. A payload that
	// fails to decode yields ErrInvalidEncoding instead.
	ErrCorruption = errors.New("verkle: corrupted node")

	// ErrInvalidEncoding is returned by the RLP-style node codec when a
	// payload does not parse, or its tag or fields do not match a known
	// node shape.
	ErrInvalidEncoding = errors.New("verkle: invalid node encoding")

	// ErrUnsupportedWidth is returned by NewConfig for a width_bits value
	// that is not one of the supported values (2, 4, 6, 8, 10, 12).
	ErrUnsupportedWidth = errors.New("verkle: unsupported width")
)
