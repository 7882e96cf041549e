// Package format defines the small, dispatch-driving enums shared by the
// header and container packages: leaf/container content-type codes,
// container shapes, header-kind codes, and record compression types.
//
// None of these types hold any behavior beyond String() and the
// classification helpers (IsContainer, ElementSize, Signed) that the
// bank decoder's dispatch tables are built from.
package format

// ContentType is the 6-bit (BANK/COMPOSITE) or 4-bit (TAGSEGMENT) code
// that identifies a bank's payload shape: a container, a primitive
// array, the string-array convention, or the composite type.
type ContentType uint8

const (
	TypeUnknown32  ContentType = 0x0 // 32-bit unknown, not swapped
	TypeUint32     ContentType = 0x1
	TypeFloat32    ContentType = 0x2
	TypeStringArr  ContentType = 0x3
	TypeInt16      ContentType = 0x4
	TypeUint16     ContentType = 0x5
	TypeInt8       ContentType = 0x6
	TypeUint8      ContentType = 0x7
	TypeFloat64    ContentType = 0x8
	TypeInt64      ContentType = 0x9
	TypeUint64     ContentType = 0xa
	TypeInt32      ContentType = 0xb
	TypeTagSegment ContentType = 0xc
	TypeSegment    ContentType = 0xd
	TypeBank       ContentType = 0xe
	TypeComposite  ContentType = 0xf
	TypeBankAlias  ContentType = 0x10
	TypeSegAlias   ContentType = 0x20

	// Composite-descriptor-only codes; never legal as a top-level bank
	// content type.
	TypeHollerit ContentType = 0x21
	TypeCountN   ContentType = 0x22
	TypeCountn   ContentType = 0x23
	TypeCountm   ContentType = 0x24
)

// IsContainer reports whether a content-type code identifies a nested
// container (BANK, SEGMENT, TAGSEGMENT, under either alias).
func (c ContentType) IsContainer() bool {
	switch c {
	case TypeTagSegment, TypeSegment, TypeBank, TypeBankAlias, TypeSegAlias:
		return true
	default:
		return false
	}
}

// IsComposite reports whether the content type is the composite leaf.
func (c ContentType) IsComposite() bool { return c == TypeComposite }

// ElementSize returns the byte width of one element for primitive leaf
// types, 1 for the string-array type (one ASCII byte per element), or 0
// for container/composite types (which do not have a fixed element
// size).
func (c ContentType) ElementSize() int {
	switch c {
	case TypeUnknown32, TypeUint32, TypeFloat32, TypeInt32:
		return 4
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt8, TypeUint8, TypeStringArr:
		return 1
	case TypeFloat64, TypeInt64, TypeUint64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether a primitive integer content type is signed.
// Meaningless (returns false) for float, container, string, and
// composite types.
func (c ContentType) Signed() bool {
	switch c {
	case TypeInt16, TypeInt8, TypeInt64, TypeInt32:
		return true
	default:
		return false
	}
}

func (c ContentType) String() string {
	switch c {
	case TypeUnknown32:
		return "Unknown32"
	case TypeUint32:
		return "Uint32"
	case TypeFloat32:
		return "Float32"
	case TypeStringArr:
		return "StringArray"
	case TypeInt16:
		return "Int16"
	case TypeUint16:
		return "Uint16"
	case TypeInt8:
		return "Int8"
	case TypeUint8:
		return "Uint8"
	case TypeFloat64:
		return "Float64"
	case TypeInt64:
		return "Int64"
	case TypeUint64:
		return "Uint64"
	case TypeInt32:
		return "Int32"
	case TypeTagSegment:
		return "TagSegment"
	case TypeSegment, TypeSegAlias:
		return "Segment"
	case TypeBank, TypeBankAlias:
		return "Bank"
	case TypeComposite:
		return "Composite"
	case TypeHollerit:
		return "Hollerit"
	case TypeCountN, TypeCountn, TypeCountm:
		return "Count"
	default:
		return "Unknown"
	}
}

// Kind is the shape of a container node in the bank tree.
type Kind uint8

const (
	KindBank Kind = iota
	KindSegment
	KindTagSegment
	KindLeaf
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindBank:
		return "BANK"
	case KindSegment:
		return "SEGMENT"
	case KindTagSegment:
		return "TAGSEGMENT"
	case KindLeaf:
		return "LEAF"
	case KindComposite:
		return "COMPOSITE"
	default:
		return "UNKNOWN"
	}
}

// HeaderKind is the 4-bit code in bits 28-31 of the file/record
// bit-info-and-version word, identifying the container format family
// and whether the record/header is an ordinary one or a trailer.
type HeaderKind uint8

const (
	FileHeaderEvio          HeaderKind = 1
	FileHeaderEvioExt       HeaderKind = 2
	FileHeaderHipo          HeaderKind = 5
	FileHeaderHipoExt       HeaderKind = 6
	RecordHeaderEvio        HeaderKind = 0
	RecordHeaderEvioTrailer HeaderKind = 3
	RecordHeaderHipo        HeaderKind = 4
	RecordHeaderHipoTrailer HeaderKind = 7
)

// IsValidFileHeaderKind reports whether k is one of the four legal file
// header-kind codes.
func IsValidFileHeaderKind(k HeaderKind) bool {
	switch k {
	case FileHeaderEvio, FileHeaderEvioExt, FileHeaderHipo, FileHeaderHipoExt:
		return true
	default:
		return false
	}
}

// IsExtendedFileHeaderKind reports whether k is an extended (header-kind
// 2 or 6) file header, whose header-length-words may exceed the nominal
// 14.
func IsExtendedFileHeaderKind(k HeaderKind) bool {
	return k == FileHeaderEvioExt || k == FileHeaderHipoExt
}

// IsTrailerKind reports whether a record's header-kind marks it as a
// trailer record (header-kind 3 or 7).
func IsTrailerKind(k HeaderKind) bool {
	return k == RecordHeaderEvioTrailer || k == RecordHeaderHipoTrailer
}

// CompressionType is the record-header compression-type code, packed
// into the high 4 bits of record-header word 9.
type CompressionType uint8

const (
	CompressionNone    CompressionType = 0
	CompressionLZ4Fast CompressionType = 1
	CompressionLZ4Best CompressionType = 2
	CompressionGzip    CompressionType = 3
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4Fast:
		return "LZ4Fast"
	case CompressionLZ4Best:
		return "LZ4Best"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

// IsCompressed reports whether c names an actual compression scheme
// (anything other than CompressionNone).
func (c CompressionType) IsCompressed() bool { return c != CompressionNone }
