package record

import (
	"fmt"
	"iter"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
	"github.com/hanjie1/evio/header"
)

// RecordView is the decoded view of one record. Built eagerly on
// FileView.Record(i): the record header and event-length index are
// parsed immediately; bank trees under each event remain lazy. A
// compressed record's body is opaque — only the header is parsed, and
// every body accessor reports errs.ErrUnsupportedCompression or nil.
type RecordView struct {
	data   []byte
	engine endian.EndianEngine
	offset int
	header header.RecordHeader

	eventIndex       []uint32
	eventRegionStart int

	cacheChildren bool
}

func newRecordView(data []byte, engine endian.EndianEngine, offset int, cacheChildren bool) (RecordView, error) {
	if offset < 0 || offset+header.RecordHeaderBytes > len(data) {
		return RecordView{}, fmt.Errorf("%w: record header at %d needs %d bytes, have %d", errs.ErrTruncated, offset, header.RecordHeaderBytes, len(data)-offset)
	}

	rh, err := header.ParseRecordHeader(data[offset:], engine)
	if err != nil {
		return RecordView{}, err
	}

	recordEnd := offset + int(rh.RecordLengthWords)*4
	if recordEnd > len(data) {
		return RecordView{}, fmt.Errorf("%w: record at %d spans %d bytes, have %d", errs.ErrTruncated, offset, recordEnd-offset, len(data)-offset)
	}

	// A compressed body holds the event index, user header, and events
	// in compressed form; none of it can be interpreted until
	// decompressed, so only the header is kept.
	if rh.CompressionType.IsCompressed() {
		return RecordView{
			data:          data,
			engine:        engine,
			offset:        offset,
			header:        rh,
			cacheChildren: cacheChildren,
		}, nil
	}

	headerBytes := rh.ByteLength()
	idxStart := offset + headerBytes
	idxEnd := idxStart + int(rh.IndexArrayBytes)
	if idxEnd > recordEnd {
		return RecordView{}, fmt.Errorf("%w: event index at %d spans %d bytes, record ends at %d", errs.ErrTruncated, idxStart, int(rh.IndexArrayBytes), recordEnd)
	}

	eventIndex, err := parseLengthArray(data[idxStart:idxEnd], engine)
	if err != nil {
		return RecordView{}, err
	}
	if len(eventIndex) != int(rh.EventCount) {
		return RecordView{}, fmt.Errorf("%w: event index has %d entries, header declares event-count %d", errs.ErrCorruption, len(eventIndex), rh.EventCount)
	}

	userHeaderPadded := int(rh.UserHeaderBytes) + int(rh.Flags.Pad1())
	eventRegionStart := idxEnd + userHeaderPadded
	if eventRegionStart > recordEnd {
		return RecordView{}, fmt.Errorf("%w: record user header at %d overruns record end %d", errs.ErrTruncated, idxEnd, recordEnd)
	}

	eventRegionLen := recordEnd - eventRegionStart
	sum := 0
	for _, w := range eventIndex {
		sum += int(w)
	}
	if sum+int(rh.Flags.Pad2()) != eventRegionLen {
		return RecordView{}, fmt.Errorf("%w: event lengths (%d) + pad2 (%d) != event region length %d", errs.ErrCorruption, sum, rh.Flags.Pad2(), eventRegionLen)
	}

	return RecordView{
		data:             data,
		engine:           engine,
		offset:           offset,
		header:           rh,
		eventIndex:       eventIndex,
		eventRegionStart: eventRegionStart,
		cacheChildren:    cacheChildren,
	}, nil
}

// Header returns the parsed record header.
func (r RecordView) Header() header.RecordHeader { return r.header }

// Offset returns the record's byte offset within the file mapping.
func (r RecordView) Offset() int { return r.offset }

// ByteLength returns the record's total byte span, inclusive of header.
func (r RecordView) ByteLength() int { return int(r.header.RecordLengthWords) * 4 }

// EventCount returns the number of events in the record. For an
// uncompressed record this always equals the parsed event index's
// length; for a compressed record it is the header's declared count.
func (r RecordView) EventCount() int { return int(r.header.EventCount) }

// EventIndex returns the record's event-length index: one byte length
// per event. Nil for a compressed record.
func (r RecordView) EventIndex() []uint32 { return r.eventIndex }

// CompressionType returns the record's compression-type code.
func (r RecordView) CompressionType() format.CompressionType { return r.header.CompressionType }

// IsTrailer reports whether this record's header-kind marks it a
// trailer.
func (r RecordView) IsTrailer() bool { return r.header.IsTrailer() }

// IsLast reports the record header's last-record flag.
func (r RecordView) IsLast() bool { return r.header.Flags.IsLastRecord() }

// UserHeaderBytes returns this record's own user header, uninterpreted.
// Writers targeting a buffer rather than a file place the dictionary
// and first-event here instead of the file's user header. Nil for a
// compressed record, whose body is opaque.
func (r RecordView) UserHeaderBytes() []byte {
	if r.header.CompressionType.IsCompressed() {
		return nil
	}

	headerBytes := r.header.ByteLength()
	idxEnd := r.offset + headerBytes + int(r.header.IndexArrayBytes)
	end := idxEnd + int(r.header.UserHeaderBytes)

	return r.data[idxEnd:end]
}

// Event returns the event at index i. Returns
// errs.ErrUnsupportedCompression if the record is compressed: a
// compressed record is opaque until decompressed, which this decoder
// does not implement.
func (r RecordView) Event(i int) (EventView, error) {
	if r.header.CompressionType.IsCompressed() {
		return EventView{}, fmt.Errorf("%w: record compression type %v", errs.ErrUnsupportedCompression, r.header.CompressionType)
	}
	if i < 0 || i >= len(r.eventIndex) {
		return EventView{}, fmt.Errorf("%w: event index %d, have %d", errs.ErrOutOfRange, i, len(r.eventIndex))
	}

	offset := r.eventRegionStart
	for j := 0; j < i; j++ {
		offset += int(r.eventIndex[j])
	}

	return EventView{
		data:          r.data,
		engine:        r.engine,
		offset:        offset,
		length:        int(r.eventIndex[i]),
		cacheChildren: r.cacheChildren,
	}, nil
}

// Events iterates this record's events in order.
func (r RecordView) Events() iter.Seq2[int, EventView] {
	return func(yield func(int, EventView) bool) {
		for i := range r.eventIndex {
			ev, err := r.Event(i)
			if err != nil {
				return
			}
			if !yield(i, ev) {
				return
			}
		}
	}
}
