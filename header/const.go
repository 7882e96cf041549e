// Package header decodes the file header and record header: the two
// fixed 14-word structures that bracket every byte range the container
// package walks. Bit-packed fields are exposed through accessor methods
// on FileFlags/RecordFlags built from shift/mask arithmetic on a single
// already-host-ordered word.
package header

const (
	// WordSize is the size, in bytes, of the 32-bit words the header
	// layouts are specified in.
	WordSize = 4

	// NominalHeaderWords is the expected header-length-words value for
	// a non-extended file or record header (word index 2).
	NominalHeaderWords = 14

	// FileHeaderBytes is the byte size of a nominal (non-extended) file
	// header.
	FileHeaderBytes = NominalHeaderWords * WordSize

	// RecordHeaderBytes is the byte size of a nominal (non-extended)
	// record header.
	RecordHeaderBytes = NominalHeaderWords * WordSize

	// FormatVersion is the only format version this decoder supports.
	// Earlier versions use a different block framing.
	FormatVersion = 6

	// FileMagic is the file-header magic constant, read from word 7.
	// The byte order is elected by reading it under both orders and
	// keeping whichever matches.
	FileMagic uint32 = 0xc0da0100

	// RecordMagic is the record-header magic constant, read from word
	// 7 of every record header and validated against the elected order.
	RecordMagic uint32 = 0xc0da0100

	// FileTypeID is the expected value of file-header word 0,
	// identifying this container format ("EVIO" in ASCII).
	FileTypeID uint32 = 0x4556494F
)

// File header bit-info-and-version word (word 5) layout.
const (
	fileVersionLo     = 0
	fileVersionHi     = 8
	fileDictBit       = 8
	fileFirstEvtBit   = 9
	fileTrailerIdxBit = 10
	fileUserHdrPadLo  = 20
	fileUserHdrPadHi  = 22
	fileHdrKindLo     = 28
	fileHdrKindHi     = 32
)

// Record header bit-info-and-version word (word 5) layout.
const (
	recVersionLo   = 0
	recVersionHi   = 8
	recDictBit     = 8
	recLastRecBit  = 9
	recEvtTypeLo   = 10
	recEvtTypeHi   = 14
	recFirstEvtBit = 14
	recPad1Lo      = 20
	recPad1Hi      = 22
	recPad2Lo      = 22
	recPad2Hi      = 24
	recPad3Lo      = 24
	recPad3Hi      = 26
	recHdrKindLo   = 28
	recHdrKindHi   = 32
)

// Record header word 9 layout: compression-type code in the high 4
// bits, compressed-data length (in 32-bit words) in the low 28 bits.
const (
	recCompTypeLo = 28
	recCompTypeHi = 32
	recCompLenLo  = 0
	recCompLenHi  = 28
)
