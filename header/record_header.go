package header

import (
	"fmt"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
)

// RecordFlags is the packed bit-info-and-version word (word 5) of a
// record header. Bit layout:
//
//	bits 0-7:   format version
//	bit  8:     dictionary present
//	bit  9:     last-record flag
//	bits 10-13: event-type tag (CODA category, 0-15)
//	bit  14:    first-event present
//	bits 20-21: pad1
//	bits 22-23: pad2
//	bits 24-25: pad3
//	bits 28-31: header-kind
type RecordFlags struct {
	raw uint32
}

func (f RecordFlags) Version() uint8 {
	return uint8(endian.ReadBitfield(f.raw, recVersionLo, recVersionHi))
}

func (f RecordFlags) HasDictionary() bool {
	return endian.ReadBitfield(f.raw, recDictBit, recDictBit+1) != 0
}

func (f RecordFlags) IsLastRecord() bool {
	return endian.ReadBitfield(f.raw, recLastRecBit, recLastRecBit+1) != 0
}

func (f RecordFlags) EventType() uint8 {
	return uint8(endian.ReadBitfield(f.raw, recEvtTypeLo, recEvtTypeHi))
}

func (f RecordFlags) HasFirstEvent() bool {
	return endian.ReadBitfield(f.raw, recFirstEvtBit, recFirstEvtBit+1) != 0
}

func (f RecordFlags) Pad1() uint8 { return uint8(endian.ReadBitfield(f.raw, recPad1Lo, recPad1Hi)) }
func (f RecordFlags) Pad2() uint8 { return uint8(endian.ReadBitfield(f.raw, recPad2Lo, recPad2Hi)) }
func (f RecordFlags) Pad3() uint8 { return uint8(endian.ReadBitfield(f.raw, recPad3Lo, recPad3Hi)) }

func (f RecordFlags) HeaderKind() format.HeaderKind {
	return format.HeaderKind(endian.ReadBitfield(f.raw, recHdrKindLo, recHdrKindHi))
}

func (f RecordFlags) IsTrailer() bool {
	return format.IsTrailerKind(f.HeaderKind())
}

// RecordHeader is the 14-word header framing one record: its total
// length, event count and index size, user-header size, compression
// code, and the packed flag word.
type RecordHeader struct {
	RecordLengthWords uint32
	RecordNumber      uint32
	HeaderLengthWords uint32
	EventCount        uint32
	IndexArrayBytes   uint32
	Flags             RecordFlags
	UserHeaderBytes   uint32
	UncompressedBytes uint32
	CompressionType   format.CompressionType
	CompressedWords   uint32
	UserRegister1     uint64
	UserRegister2     uint64
}

// ParseRecordHeader decodes a record header starting at the beginning
// of data. data must be at least RecordHeaderBytes long.
func ParseRecordHeader(data []byte, engine endian.EndianEngine) (RecordHeader, error) {
	if len(data) < RecordHeaderBytes {
		return RecordHeader{}, fmt.Errorf("%w: record header needs %d bytes, have %d", errs.ErrTruncated, RecordHeaderBytes, len(data))
	}

	magic := engine.Uint32(data[7*WordSize:])
	if magic != RecordMagic {
		return RecordHeader{}, fmt.Errorf("%w: record magic %#x != %#x", errs.ErrCorruption, magic, RecordMagic)
	}

	h := RecordHeader{}
	h.RecordLengthWords = engine.Uint32(data[0*WordSize:])
	h.RecordNumber = engine.Uint32(data[1*WordSize:])
	h.HeaderLengthWords = engine.Uint32(data[2*WordSize:])
	h.EventCount = engine.Uint32(data[3*WordSize:])
	h.IndexArrayBytes = engine.Uint32(data[4*WordSize:])
	h.Flags = RecordFlags{raw: engine.Uint32(data[5*WordSize:])}
	h.UserHeaderBytes = engine.Uint32(data[6*WordSize:])
	h.UncompressedBytes = engine.Uint32(data[8*WordSize:])

	word9 := engine.Uint32(data[9*WordSize:])
	h.CompressionType = format.CompressionType(endian.ReadBitfield(word9, recCompTypeLo, recCompTypeHi))
	h.CompressedWords = endian.ReadBitfield(word9, recCompLenLo, recCompLenHi)

	h.UserRegister1 = engine.Uint64(data[10*WordSize:])
	h.UserRegister2 = engine.Uint64(data[12*WordSize:])

	if h.Flags.Version() != FormatVersion {
		return RecordHeader{}, fmt.Errorf("%w: record version %d, want %d", errs.ErrUnsupportedVersion, h.Flags.Version(), FormatVersion)
	}

	if h.HeaderLengthWords < NominalHeaderWords {
		return RecordHeader{}, fmt.Errorf("%w: record header-length-words %d below minimum %d", errs.ErrBadHeader, h.HeaderLengthWords, NominalHeaderWords)
	}

	return h, nil
}

// ByteLength returns the header's own byte span (HeaderLengthWords*4).
func (h RecordHeader) ByteLength() int {
	return int(h.HeaderLengthWords) * WordSize
}

// IsTrailer reports whether this record header marks a trailer record
// (header-kind 3 or 7).
func (h RecordHeader) IsTrailer() bool {
	return h.Flags.IsTrailer()
}
