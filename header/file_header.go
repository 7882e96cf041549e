package header

import (
	"fmt"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
)

// FileFlags is the packed bit-info-and-version word (word 5) of the
// file header. Bit layout:
//
//	bits 0-7:   format version
//	bit  8:     dictionary present
//	bit  9:     first-event present
//	bit  10:    trailer has index
//	bits 20-21: user-header pad count
//	bits 28-31: header-kind
type FileFlags struct {
	raw uint32
}

func (f FileFlags) Version() uint8 {
	return uint8(endian.ReadBitfield(f.raw, fileVersionLo, fileVersionHi))
}

func (f FileFlags) HasDictionary() bool {
	return endian.ReadBitfield(f.raw, fileDictBit, fileDictBit+1) != 0
}

func (f FileFlags) HasFirstEvent() bool {
	return endian.ReadBitfield(f.raw, fileFirstEvtBit, fileFirstEvtBit+1) != 0
}

func (f FileFlags) TrailerHasIndex() bool {
	return endian.ReadBitfield(f.raw, fileTrailerIdxBit, fileTrailerIdxBit+1) != 0
}

func (f FileFlags) UserHeaderPad() uint8 {
	return uint8(endian.ReadBitfield(f.raw, fileUserHdrPadLo, fileUserHdrPadHi))
}

func (f FileFlags) HeaderKind() format.HeaderKind {
	return format.HeaderKind(endian.ReadBitfield(f.raw, fileHdrKindLo, fileHdrKindHi))
}

// FileHeader is the 14-word (56-byte nominal) global file header.
// HeaderLengthWords drives every downstream offset computation rather
// than assuming the nominal 14, so an extended header (header-kind 2 or
// 6) is handled structurally: words beyond index 13 are skipped, not
// parsed, and surfaced as ExtraBytes.
type FileHeader struct {
	FileTypeID        uint32
	FileNumber        uint32
	HeaderLengthWords uint32
	RecordCount       uint32
	IndexArrayBytes   uint32
	Flags             FileFlags
	UserHeaderBytes   uint32
	UserRegister      uint64
	TrailerPosition   uint64
	UserInt1          uint32
	UserInt2          uint32

	// ExtraBytes is the raw span of an extended header beyond word 13,
	// nil for a nominal 14-word header.
	ExtraBytes []byte

	// Engine is the byte order elected from the magic word at word 7.
	Engine endian.EndianEngine
}

// ParseFileHeader decodes the file header starting at the beginning of
// data. data must be at least FileHeaderBytes long; if the elected
// header-length-words is larger, data must cover the extended span
// too.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < FileHeaderBytes {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, have %d", errs.ErrTruncated, FileHeaderBytes, len(data))
	}

	engine, err := endian.Detect(data[7*WordSize:8*WordSize], FileMagic)
	if err != nil {
		return FileHeader{}, err
	}

	h := FileHeader{Engine: engine}
	h.FileTypeID = engine.Uint32(data[0*WordSize:])
	h.FileNumber = engine.Uint32(data[1*WordSize:])
	h.HeaderLengthWords = engine.Uint32(data[2*WordSize:])
	h.RecordCount = engine.Uint32(data[3*WordSize:])
	h.IndexArrayBytes = engine.Uint32(data[4*WordSize:])
	h.Flags = FileFlags{raw: engine.Uint32(data[5*WordSize:])}
	h.UserHeaderBytes = engine.Uint32(data[6*WordSize:])
	h.UserRegister = engine.Uint64(data[8*WordSize:])
	h.TrailerPosition = engine.Uint64(data[10*WordSize:])
	h.UserInt1 = engine.Uint32(data[12*WordSize:])
	h.UserInt2 = engine.Uint32(data[13*WordSize:])

	if h.FileTypeID != FileTypeID {
		return FileHeader{}, fmt.Errorf("%w: file-type-id %#x != %#x", errs.ErrBadMagic, h.FileTypeID, FileTypeID)
	}

	if h.Flags.Version() != FormatVersion {
		return FileHeader{}, fmt.Errorf("%w: version %d, want %d", errs.ErrUnsupportedVersion, h.Flags.Version(), FormatVersion)
	}

	if !format.IsValidFileHeaderKind(h.Flags.HeaderKind()) {
		return FileHeader{}, fmt.Errorf("%w: unrecognized header-kind %d", errs.ErrBadHeader, h.Flags.HeaderKind())
	}

	if h.HeaderLengthWords < NominalHeaderWords {
		return FileHeader{}, fmt.Errorf("%w: header-length-words %d below minimum %d", errs.ErrBadHeader, h.HeaderLengthWords, NominalHeaderWords)
	}

	if format.IsExtendedFileHeaderKind(h.Flags.HeaderKind()) && h.HeaderLengthWords > NominalHeaderWords {
		extraBytes := int(h.HeaderLengthWords-NominalHeaderWords) * WordSize
		end := FileHeaderBytes + extraBytes
		if len(data) < end {
			return FileHeader{}, fmt.Errorf("%w: extended file header needs %d bytes, have %d", errs.ErrTruncated, end, len(data))
		}
		h.ExtraBytes = data[FileHeaderBytes:end]
	}

	return h, nil
}

// ByteLength returns the total byte length of the parsed header,
// including any extended-header tail.
func (h FileHeader) ByteLength() int {
	return int(h.HeaderLengthWords) * WordSize
}
