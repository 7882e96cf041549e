// Package container decodes the three tagged-container bank shapes
// (BANK, SEGMENT, TAGSEGMENT) and the leaf payloads they bottom out in:
// primitive arrays, the string-array convention, and the composite
// type. BankNode is the uniform tree node: every traversal operation is
// a pure function of (byte range, byte order, offset) with no parent
// pointers and no implicit global state.
package container

import (
	"errors"
	"fmt"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
)

// BankNode is the uniform node of the bank tree. It holds a borrow of
// the underlying byte range (never copied) plus its own byte span and
// the file's elected byte order; children are recomputed on demand
// unless the caller opted into the per-node children cache.
type BankNode struct {
	data   []byte
	engine endian.EndianEngine

	headerOffset int // offset of this node's header within data
	headerShape  format.Kind
	headerBytes  int

	tag         uint32
	contentType format.ContentType
	num         uint8
	pad         uint8

	payloadWords uint32
	dataOffset   int
	dataLen      int
	fullBytes    int

	cacheEnabled   bool
	childrenParsed bool
	children       []BankNode

	compiled *compiledFormat // memoized composite bytecode, nil until first access
}

// ParseEventRoot parses the two-word BANK header at the start of an
// event's byte range. The first container in an event is always a BANK,
// never a SEGMENT or TAGSEGMENT.
func ParseEventRoot(data []byte, offset int, engine endian.EndianEngine, cacheChildren bool) (BankNode, error) {
	return parseNode(data, offset, engine, format.KindBank, cacheChildren)
}

func kindHeaderBytes(shape format.Kind) int {
	switch shape {
	case format.KindBank:
		return 8
	default:
		return 4
	}
}

// parseNode parses a single node of the given header shape at offset
// within data.
func parseNode(data []byte, offset int, engine endian.EndianEngine, shape format.Kind, cacheChildren bool) (BankNode, error) {
	headerBytes := kindHeaderBytes(shape)
	if offset < 0 || offset+headerBytes > len(data) {
		return BankNode{}, fmt.Errorf("%w: node header at %d needs %d bytes, have %d", errs.ErrTruncated, offset, headerBytes, len(data)-offset)
	}

	n := BankNode{
		data:         data,
		engine:       engine,
		headerOffset: offset,
		headerShape:  shape,
		headerBytes:  headerBytes,
		cacheEnabled: cacheChildren,
	}

	switch shape {
	case format.KindBank:
		h := parseBankHeader(data[offset:offset+8], engine)
		if h.LengthWords < 1 {
			return BankNode{}, fmt.Errorf("%w: bank length-words %d below minimum 1", errs.ErrCorruption, h.LengthWords)
		}
		n.tag = h.Tag
		n.contentType = h.ContentType
		n.num = h.Num
		n.pad = h.Pad
		n.payloadWords = h.LengthWords - 1
		n.fullBytes = int(h.LengthWords+1) * 4
	case format.KindSegment:
		h := parseSegmentHeader(data[offset:offset+4], engine)
		n.tag = h.Tag
		n.contentType = h.ContentType
		n.pad = h.Pad
		n.payloadWords = h.LengthWords
		n.fullBytes = int(h.LengthWords+1) * 4
	case format.KindTagSegment:
		h := parseTagSegmentHeader(data[offset:offset+4], engine)
		n.tag = h.Tag
		n.contentType = h.ContentType
		n.payloadWords = h.LengthWords
		n.fullBytes = int(h.LengthWords+1) * 4
	default:
		return BankNode{}, fmt.Errorf("%w: unsupported node header shape %v", errs.ErrBadHeader, shape)
	}

	if offset+n.fullBytes > len(data) {
		return BankNode{}, fmt.Errorf("%w: node at %d spans %d bytes, have %d", errs.ErrTruncated, offset, n.fullBytes, len(data)-offset)
	}

	n.dataOffset = offset + headerBytes
	n.dataLen = n.computeDataLen()

	if err := n.validatePad(); err != nil {
		return BankNode{}, err
	}

	return n, nil
}

func (n BankNode) isPrimitiveSized() (elemSize int, ok bool) {
	size := n.contentType.ElementSize()
	if size == 1 || size == 2 {
		return size, true
	}

	return 0, false
}

// padApplies reports whether this node's header shape carries a real
// pad field (BANK and SEGMENT only; TAGSEGMENT has no pad bits).
func (n BankNode) padApplies() bool {
	return n.headerShape == format.KindBank || n.headerShape == format.KindSegment
}

func (n BankNode) computeDataLen() int {
	total := int(n.payloadWords) * 4
	if size, ok := n.isPrimitiveSized(); ok && n.padApplies() {
		_ = size

		return total - int(n.pad)
	}

	return total
}

func (n BankNode) validatePad() error {
	if !n.padApplies() {
		return nil
	}

	size, ok := n.isPrimitiveSized()
	if !ok {
		if n.pad != 0 {
			return fmt.Errorf("%w: pad %d set on non-primitive content type %v", errs.ErrCorruption, n.pad, n.contentType)
		}

		return nil
	}

	switch size {
	case 1:
		if n.pad > 3 {
			return fmt.Errorf("%w: 8-bit content pad %d out of {0,1,2,3}", errs.ErrCorruption, n.pad)
		}
	case 2:
		if n.pad != 0 && n.pad != 2 {
			return fmt.Errorf("%w: 16-bit content pad %d out of {0,2}", errs.ErrCorruption, n.pad)
		}
	}

	return nil
}

// Kind returns the node's classification: BANK/SEGMENT/TAGSEGMENT when
// the node holds children (using its own header shape), COMPOSITE for
// the composite leaf, LEAF otherwise.
func (n BankNode) Kind() format.Kind {
	switch {
	case n.contentType.IsComposite():
		return format.KindComposite
	case n.contentType.IsContainer():
		return n.headerShape
	default:
		return format.KindLeaf
	}
}

// Tag returns the node's tag, 16 bits wide for a BANK header, 8 bits
// for SEGMENT, 12 bits for TAGSEGMENT.
func (n BankNode) Tag() uint32 { return n.tag }

// Num returns the BANK-only num field (0 for SEGMENT/TAGSEGMENT
// headers).
func (n BankNode) Num() uint8 { return n.num }

// Pad returns the padding byte count, meaningful only for 8/16-bit
// primitive content on a BANK or SEGMENT header.
func (n BankNode) Pad() uint8 { return n.pad }

// ContentType returns the raw content-type code.
func (n BankNode) ContentType() format.ContentType { return n.contentType }

// LengthWords returns the payload length in 32-bit words: one less than
// the BANK length field (which counts the info word too), or the
// SEGMENT/TAGSEGMENT length field verbatim (exclusive of the 1-word
// header).
func (n BankNode) LengthWords() uint32 { return n.payloadWords }

// DataOffset returns the byte offset of this node's payload within the
// byte range it was parsed from.
func (n BankNode) DataOffset() int { return n.dataOffset }

// DataLen returns the payload's data byte length, already accounting
// for trailing pad bytes on 8/16-bit primitive content.
func (n BankNode) DataLen() int { return n.dataLen }

// FullLen returns the node's total byte span including its own header.
func (n BankNode) FullLen() int { return n.fullBytes }

// ByteOrder returns the byte order this node (and its descendants) were
// decoded under.
func (n BankNode) ByteOrder() endian.EndianEngine { return n.engine }

// payload returns the node's raw payload bytes (header excluded,
// trailing pad included — callers wanting the pad-trimmed view use
// DataLen()).
func (n BankNode) payload() []byte {
	return n.data[n.dataOffset : n.dataOffset+int(n.payloadWords)*4]
}

// Children parses and returns this node's child nodes. Containers only;
// returns (nil, nil) for a leaf or composite node. When the children
// cache was enabled at Open time, the result is memoized on first call.
func (n *BankNode) Children() ([]BankNode, error) {
	if !n.contentType.IsContainer() {
		return nil, nil
	}

	if n.cacheEnabled && n.childrenParsed {
		return n.children, nil
	}

	// Children are parsed against the same top-level byte slice this node
	// was parsed from (n.data), cut off at this container's payload end,
	// at absolute offsets, rather than against a re-sliced payload view,
	// so every BankNode's offsets remain relative to one shared byte range
	// instead of drifting per recursion level. A child that does not fit
	// inside the payload is reported as corruption.
	shape := childShape(n.contentType)
	base := n.dataOffset
	end := base + int(n.payloadWords)*4
	bounded := n.data[:end]

	var children []BankNode
	cursor := base
	for cursor < end {
		child, err := parseNode(bounded, cursor, n.engine, shape, n.cacheEnabled)
		if err != nil {
			if errors.Is(err, errs.ErrTruncated) {
				return nil, fmt.Errorf("%w: child at %d overshoots container payload %d: %v", errs.ErrCorruption, cursor, end, err)
			}

			return nil, err
		}

		children = append(children, child)
		cursor += child.fullBytes

		if cursor > end {
			return nil, fmt.Errorf("%w: child cursor %d overshoots container payload %d", errs.ErrCorruption, cursor, end)
		}
	}

	if n.cacheEnabled {
		n.children = children
		n.childrenParsed = true
	}

	return children, nil
}

// Validate walks this subtree and returns the first violated structural
// invariant (children must exactly tile the container payload, every
// data range must stay in bounds), or nil if the subtree is internally
// consistent. This is an opt-in fail-fast check; ordinary traversal
// already enforces these invariants lazily, node by node.
func (n *BankNode) Validate() error {
	children, err := n.Children()
	if err != nil {
		return err
	}

	if n.contentType.IsContainer() {
		sum := 0
		for i := range children {
			sum += children[i].fullBytes
		}
		if sum != int(n.payloadWords)*4 {
			return fmt.Errorf("%w: children span %d bytes, container payload is %d", errs.ErrCorruption, sum, int(n.payloadWords)*4)
		}
	}

	if n.dataOffset < 0 || n.dataOffset+n.dataLen > len(n.data) {
		return fmt.Errorf("%w: data range [%d,%d) exceeds mapping length %d", errs.ErrTruncated, n.dataOffset, n.dataOffset+n.dataLen, len(n.data))
	}

	for i := range children {
		if err := children[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}
