package record

import (
	"fmt"

	"github.com/hanjie1/evio/container"
	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
)

// EventView is a single top-level container bank within a record's
// payload. Its root is always a BANK (two-word header); it never
// materializes a container.BankNode until Root() is called.
type EventView struct {
	data   []byte
	engine endian.EndianEngine
	offset int
	length int

	cacheChildren bool
}

// Offset returns the event's byte offset within the file mapping.
func (e EventView) Offset() int { return e.offset }

// ByteLength returns the event's byte length, as derived from the
// record's event-length index.
func (e EventView) ByteLength() int { return e.length }

// Root parses and returns the event's root BankNode. The first
// container in an event is always a BANK, never a SEGMENT or
// TAGSEGMENT, so the root is parsed with the two-word header shape.
func (e EventView) Root() (container.BankNode, error) {
	if e.offset < 0 || e.offset+e.length > len(e.data) {
		return container.BankNode{}, fmt.Errorf("%w: event at %d spans %d bytes, have %d", errs.ErrTruncated, e.offset, e.length, len(e.data)-e.offset)
	}

	span := e.data[e.offset : e.offset+e.length]

	return container.ParseEventRoot(span, 0, e.engine, e.cacheChildren)
}
