package container

import (
	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/format"
)

// bankHeader is the result of unpacking a 2-word BANK header: word0 is
// length (words, exclusive of word0 itself); word1 packs
// tag:16 | pad:2 | type:6 | num:8 from MSB to LSB.
type bankHeader struct {
	LengthWords uint32 // word0, the bank's own length field
	Tag         uint32
	Pad         uint8
	ContentType format.ContentType
	Num         uint8
}

// parseBankHeader unpacks an 8-byte BANK header. data must be at least
// 8 bytes.
func parseBankHeader(data []byte, engine endian.EndianEngine) bankHeader {
	word0 := engine.Uint32(data[0:4])
	word1 := engine.Uint32(data[4:8])

	return bankHeader{
		LengthWords: word0,
		Tag:         endian.ReadBitfield(word1, 16, 32),
		Pad:         uint8(endian.ReadBitfield(word1, 14, 16)),
		ContentType: format.ContentType(endian.ReadBitfield(word1, 8, 14)),
		Num:         uint8(endian.ReadBitfield(word1, 0, 8)),
	}
}

// segmentHeader is the result of unpacking a 1-word SEGMENT header:
// tag:8 | pad:2 | type:6 | length:16 from MSB to LSB.
type segmentHeader struct {
	Tag         uint32
	Pad         uint8
	ContentType format.ContentType
	LengthWords uint32
}

// parseSegmentHeader unpacks a 4-byte SEGMENT header.
func parseSegmentHeader(data []byte, engine endian.EndianEngine) segmentHeader {
	word := engine.Uint32(data[0:4])

	return segmentHeader{
		Tag:         endian.ReadBitfield(word, 24, 32),
		Pad:         uint8(endian.ReadBitfield(word, 22, 24)),
		ContentType: format.ContentType(endian.ReadBitfield(word, 16, 22)),
		LengthWords: endian.ReadBitfield(word, 0, 16),
	}
}

// tagSegmentHeader is the result of unpacking a 1-word TAGSEGMENT
// header: tag:12 | type:4 | length:16 from MSB to LSB.
type tagSegmentHeader struct {
	Tag         uint32
	ContentType format.ContentType
	LengthWords uint32
}

// parseTagSegmentHeader unpacks a 4-byte TAGSEGMENT header.
func parseTagSegmentHeader(data []byte, engine endian.EndianEngine) tagSegmentHeader {
	word := engine.Uint32(data[0:4])

	return tagSegmentHeader{
		Tag:         endian.ReadBitfield(word, 20, 32),
		ContentType: format.ContentType(endian.ReadBitfield(word, 16, 20)),
		LengthWords: endian.ReadBitfield(word, 0, 16),
	}
}

// childShape reports which header shape a container's children use,
// determined by the container's own declared content type: a
// BANK-of-banks contains BANKs, a BANK-of-segments contains SEGMENTs,
// and so on.
func childShape(contentType format.ContentType) format.Kind {
	switch contentType {
	case format.TypeBank, format.TypeBankAlias:
		return format.KindBank
	case format.TypeSegment, format.TypeSegAlias:
		return format.KindSegment
	case format.TypeTagSegment:
		return format.KindTagSegment
	default:
		return format.KindLeaf
	}
}
