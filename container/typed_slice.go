package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
)

// TypedView is the low-level, zero-copy descriptor handed to a
// numeric-array caller: a content-type code, the raw byte range in the
// file's own byte order, and whether that order matches the host's
// native order. The decoder stops here; the caller owns array
// construction, producing data_bytes/element_size elements and
// byte-swapping when SameOrder is false.
type TypedView struct {
	DType      format.ContentType
	Bytes      []byte
	LittleFile bool // whether the file's byte order is little-endian
	SameOrder  bool // whether the file's byte order matches the host's
}

// AsTypedSlice returns the zero-copy typed-slice descriptor for a
// primitive leaf node. Returns an error for container, composite, or
// string-array nodes — those have their own accessors (Children,
// AsComposite, AsStrings).
func (n BankNode) AsTypedSlice() (TypedView, error) {
	if n.Kind() != format.KindLeaf {
		return TypedView{}, fmt.Errorf("%w: node kind %v has no typed slice", errs.ErrBadHeader, n.Kind())
	}
	if n.contentType == format.TypeStringArr {
		return TypedView{}, fmt.Errorf("%w: use AsStrings for string-array leaves", errs.ErrBadHeader)
	}

	return TypedView{
		DType:      n.contentType,
		Bytes:      n.data[n.dataOffset : n.dataOffset+n.dataLen],
		LittleFile: n.engine == binary.LittleEndian,
		SameOrder:  endian.CompareNativeEndian(n.engine),
	}, nil
}

func elementCount(dataLen, elemSize int) (int, error) {
	if elemSize <= 0 || dataLen%elemSize != 0 {
		return 0, fmt.Errorf("%w: data length %d not a multiple of element size %d", errs.ErrCorruption, dataLen, elemSize)
	}

	return dataLen / elemSize, nil
}

// Int32Slice materializes an int32 leaf (content type 0xb).
func (n BankNode) Int32Slice() ([]int32, error) {
	if n.contentType != format.TypeInt32 {
		return nil, wrongType(n.contentType, format.TypeInt32)
	}
	count, err := elementCount(n.dataLen, 4)
	if err != nil {
		return nil, err
	}

	out := make([]int32, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = int32(n.engine.Uint32(b[i*4:]))
	}

	return out, nil
}

// Uint32Slice materializes a uint32 leaf (content type 0x1).
func (n BankNode) Uint32Slice() ([]uint32, error) {
	if n.contentType != format.TypeUint32 {
		return nil, wrongType(n.contentType, format.TypeUint32)
	}
	count, err := elementCount(n.dataLen, 4)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = n.engine.Uint32(b[i*4:])
	}

	return out, nil
}

// RawUnknown32 returns the raw 4-byte groups of an unknown-32 (content
// type 0x0) leaf, byte-for-byte as stored. Unlike every other primitive
// type, unknown-32 content is never byte-swapped.
func (n BankNode) RawUnknown32() ([]byte, error) {
	if n.contentType != format.TypeUnknown32 {
		return nil, wrongType(n.contentType, format.TypeUnknown32)
	}

	return n.data[n.dataOffset : n.dataOffset+n.dataLen], nil
}

// Float32Slice materializes a float32 leaf (content type 0x2).
func (n BankNode) Float32Slice() ([]float32, error) {
	if n.contentType != format.TypeFloat32 {
		return nil, wrongType(n.contentType, format.TypeFloat32)
	}
	count, err := elementCount(n.dataLen, 4)
	if err != nil {
		return nil, err
	}

	out := make([]float32, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = math.Float32frombits(n.engine.Uint32(b[i*4:]))
	}

	return out, nil
}

// Int16Slice materializes an int16 leaf (content type 0x4).
func (n BankNode) Int16Slice() ([]int16, error) {
	if n.contentType != format.TypeInt16 {
		return nil, wrongType(n.contentType, format.TypeInt16)
	}
	count, err := elementCount(n.dataLen, 2)
	if err != nil {
		return nil, err
	}

	out := make([]int16, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = int16(n.engine.Uint16(b[i*2:]))
	}

	return out, nil
}

// Uint16Slice materializes a uint16 leaf (content type 0x5).
func (n BankNode) Uint16Slice() ([]uint16, error) {
	if n.contentType != format.TypeUint16 {
		return nil, wrongType(n.contentType, format.TypeUint16)
	}
	count, err := elementCount(n.dataLen, 2)
	if err != nil {
		return nil, err
	}

	out := make([]uint16, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = n.engine.Uint16(b[i*2:])
	}

	return out, nil
}

// Int8Slice materializes an int8 leaf (content type 0x6).
func (n BankNode) Int8Slice() ([]int8, error) {
	if n.contentType != format.TypeInt8 {
		return nil, wrongType(n.contentType, format.TypeInt8)
	}
	b := n.data[n.dataOffset : n.dataOffset+n.dataLen]
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}

	return out, nil
}

// Uint8Slice materializes a uint8 leaf (content type 0x7).
func (n BankNode) Uint8Slice() ([]uint8, error) {
	if n.contentType != format.TypeUint8 {
		return nil, wrongType(n.contentType, format.TypeUint8)
	}
	out := make([]uint8, n.dataLen)
	copy(out, n.data[n.dataOffset:n.dataOffset+n.dataLen])

	return out, nil
}

// Float64Slice materializes a float64 leaf (content type 0x8).
func (n BankNode) Float64Slice() ([]float64, error) {
	if n.contentType != format.TypeFloat64 {
		return nil, wrongType(n.contentType, format.TypeFloat64)
	}
	count, err := elementCount(n.dataLen, 8)
	if err != nil {
		return nil, err
	}

	out := make([]float64, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = math.Float64frombits(n.engine.Uint64(b[i*8:]))
	}

	return out, nil
}

// Int64Slice materializes an int64 leaf (content type 0x9).
func (n BankNode) Int64Slice() ([]int64, error) {
	if n.contentType != format.TypeInt64 {
		return nil, wrongType(n.contentType, format.TypeInt64)
	}
	count, err := elementCount(n.dataLen, 8)
	if err != nil {
		return nil, err
	}

	out := make([]int64, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = int64(n.engine.Uint64(b[i*8:]))
	}

	return out, nil
}

// Uint64Slice materializes a uint64 leaf (content type 0xa).
func (n BankNode) Uint64Slice() ([]uint64, error) {
	if n.contentType != format.TypeUint64 {
		return nil, wrongType(n.contentType, format.TypeUint64)
	}
	count, err := elementCount(n.dataLen, 8)
	if err != nil {
		return nil, err
	}

	out := make([]uint64, count)
	b := n.data[n.dataOffset:]
	for i := range out {
		out[i] = n.engine.Uint64(b[i*8:])
	}

	return out, nil
}

func wrongType(got, want format.ContentType) error {
	return fmt.Errorf("%w: content type %v, want %v", errs.ErrBadHeader, got, want)
}
