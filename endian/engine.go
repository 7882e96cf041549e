// Package endian provides byte order utilities for decoding the
// container format.
//
// This package extends Go's standard encoding/binary package by
// combining ByteOrder and AppendByteOrder interfaces into a unified
// EndianEngine interface, and adds the dual-order magic-number probe
// the file decoder uses to elect a byte order: the format carries no
// out-of-band byte-order flag, so the file header's magic word is read
// under both orders and whichever matches is kept. Record headers are
// then checked against that elected order.
//
// # Basic Usage
//
//	engine, err := endian.Detect(data[28:32], 0xc0da0100)
//	if err != nil {
//	    return err
//	}
//	recordLen := engine.Uint32(data[0:4])
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The
// returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/hanjie1/evio/errs"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations. Satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's
// byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is
	// first. For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host's native
// byte order. Typed-slice materialization byte-swaps elements only when
// this is false.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Detect reads a 4-byte magic field under both byte orders and returns
// whichever engine makes it equal to want. word must be exactly 4
// bytes. Returns errs.ErrBadMagic if neither order matches.
func Detect(word []byte, want uint32) (EndianEngine, error) {
	if len(word) != 4 {
		return nil, errs.ErrTruncated
	}

	if binary.LittleEndian.Uint32(word) == want {
		return GetLittleEndianEngine(), nil
	}
	if binary.BigEndian.Uint32(word) == want {
		return GetBigEndianEngine(), nil
	}

	return nil, errs.ErrBadMagic
}

// ReadBitfield extracts bits [lo, hi) (lo inclusive, hi exclusive, 0 is
// the least-significant bit) from an already-host-ordered word. Every
// packed header field in header/ and container/ is read through this
// function so a bit-width change is a one-line edit.
func ReadBitfield(word uint32, lo, hi uint) uint32 {
	width := hi - lo
	mask := uint32(1)<<width - 1

	return (word >> lo) & mask
}
