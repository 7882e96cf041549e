// Package errs holds the discriminated error kinds the decoder can
// return, one sentinel per failure mode. Decode functions wrap a
// sentinel with fmt.Errorf("%w: ...") so callers can still match with
// errors.Is while getting a human-readable detail in the message.
package errs

import "errors"

var (
	// ErrIo is returned when the host mapping or read fails.
	ErrIo = errors.New("evio: io error")

	// ErrBadMagic is returned when the file or record magic constant
	// does not match either byte order at the expected offset.
	ErrBadMagic = errors.New("evio: bad magic number")

	// ErrUnsupportedVersion is returned when the format version field is
	// not the one value (6) the v1 core supports.
	ErrUnsupportedVersion = errors.New("evio: unsupported format version")

	// ErrBadHeader is returned when a header-length-words field or
	// header-kind code is outside the accepted range.
	ErrBadHeader = errors.New("evio: bad header")

	// ErrTruncated is returned when a computed byte span exceeds the
	// mapped length.
	ErrTruncated = errors.New("evio: truncated data")

	// ErrCorruption is returned for internal inconsistencies: a child
	// cursor overshooting its container, an event-index sum disagreeing
	// with the record length, a record-header magic mismatch, or
	// disagreeing file/trailer record indexes.
	ErrCorruption = errors.New("evio: corrupt data")

	// ErrUnsupportedCompression is returned when event or bank access is
	// requested on a record whose compression-type is non-zero; the v1
	// core parses and reports the compression type but does not
	// decompress.
	ErrUnsupportedCompression = errors.New("evio: unsupported compression")

	// ErrBadComposite is returned for a malformed composite format
	// descriptor: an illegal character, an out-of-range multiplier, an
	// unmatched parenthesis, or data exhausted mid-token with no
	// repeatable tail to resume from.
	ErrBadComposite = errors.New("evio: bad composite format descriptor")

	// ErrOutOfRange is returned when a caller-supplied record or event
	// index falls outside [0, count).
	ErrOutOfRange = errors.New("evio: index out of range")
)
