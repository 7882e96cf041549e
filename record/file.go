// Package record decodes the file's record stream: FileView opens a
// byte-addressable mapping and discovers records; RecordView splits a
// record's payload into events; EventView hands off to the container
// package's BankNode for the event's root bank. The file header and
// record index are built once on open; record and event views are
// built on each access. Everything is read-only.
package record

import (
	"fmt"
	"iter"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/header"
	"github.com/hanjie1/evio/internal/options"
)

type openConfig struct {
	childrenCache bool
	strictIndex   bool
}

// OpenOption configures Open/OpenBytes.
type OpenOption = options.Option[*openConfig]

// WithChildrenCache opts a FileView's bank trees into the per-node
// children cache: by default each Children() call re-decodes from the
// mapping; enabling this memoizes the result on first access.
func WithChildrenCache(enable bool) OpenOption {
	return options.NoError[*openConfig](func(c *openConfig) { c.childrenCache = enable })
}

// WithStrictIndex controls the tie-break when a file-header index and a
// trailer index both exist and disagree: true (the default) reports
// errs.ErrCorruption; false silently prefers the file-header index.
func WithStrictIndex(enable bool) OpenOption {
	return options.NoError[*openConfig](func(c *openConfig) { c.strictIndex = enable })
}

// FileView is the decoded view of one opened container file. It is
// immutable after Open/OpenBytes returns; multiple readers may share
// one FileView concurrently as long as they are not both writing
// through a children cache enabled via WithChildrenCache.
type FileView struct {
	data   []byte
	mapped mmap.MMap
	file   *os.File

	header        header.FileHeader
	slots         []recordSlot
	cacheChildren bool
}

// Open memory-maps path read-only and parses its file header and record
// index.
func Open(path string, opts ...OpenOption) (*FileView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIo, err)
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("%w: %v", errs.ErrIo, err)
	}

	fv, err := OpenBytes(mapped, opts...)
	if err != nil {
		_ = mapped.Unmap()
		_ = f.Close()

		return nil, err
	}

	fv.mapped = mapped
	fv.file = f

	return fv, nil
}

// OpenBytes parses a file header and record index directly out of an
// in-memory byte slice (the caller owns its lifetime).
func OpenBytes(data []byte, opts ...OpenOption) (*FileView, error) {
	cfg := &openConfig{strictIndex: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fh, err := header.ParseFileHeader(data)
	if err != nil {
		return nil, err
	}

	fv := &FileView{data: data, header: fh, cacheChildren: cfg.childrenCache}
	if err := fv.buildIndex(cfg.strictIndex); err != nil {
		return nil, err
	}

	return fv, nil
}

// Close releases the underlying mapping and file descriptor. A no-op
// for a FileView built with OpenBytes.
func (fv *FileView) Close() error {
	if fv.mapped == nil {
		return nil
	}

	err := fv.mapped.Unmap()
	if cerr := fv.file.Close(); err == nil {
		err = cerr
	}

	return err
}

// recordsStart returns the byte offset where the first record begins:
// immediately after the file header, its index array, and its padded
// user header.
func (fv *FileView) recordsStart() int {
	fh := &fv.header
	headerEnd := fh.ByteLength()
	idxEnd := headerEnd + int(fh.IndexArrayBytes)

	return idxEnd + int(fh.UserHeaderBytes) + int(fh.Flags.UserHeaderPad())
}

func (fv *FileView) buildIndex(strict bool) error {
	fh := &fv.header
	start := fv.recordsStart()
	if start > len(fv.data) {
		return fmt.Errorf("%w: file header regions span %d bytes, have %d", errs.ErrTruncated, start, len(fv.data))
	}

	var fileSlots []recordSlot
	if fh.IndexArrayBytes > 0 {
		headerEnd := fh.ByteLength()
		idxEnd := headerEnd + int(fh.IndexArrayBytes)
		if idxEnd > len(fv.data) {
			return fmt.Errorf("%w: file index array spans %d bytes, have %d", errs.ErrTruncated, idxEnd, len(fv.data))
		}
		lengths, err := parseLengthArray(fv.data[headerEnd:idxEnd], fh.Engine)
		if err != nil {
			return err
		}
		fileSlots = indexFromLengths(lengths, start)
	}

	var trailerSlots []recordSlot
	if fh.Flags.TrailerHasIndex() && fh.TrailerPosition != 0 {
		slots, err := fv.parseTrailerSlots(start)
		if err != nil {
			return err
		}
		trailerSlots = slots
	}

	slots, err := reconcile(fileSlots, trailerSlots, strict)
	if err != nil {
		return err
	}

	if slots == nil {
		slots, err = fv.linearScan(start, int(fh.RecordCount))
		if err != nil {
			return err
		}
	}

	fv.slots = slots

	return nil
}

func (fv *FileView) parseTrailerSlots(recordsStart int) ([]recordSlot, error) {
	pos := int(fv.header.TrailerPosition)
	if pos < 0 || pos+header.RecordHeaderBytes > len(fv.data) {
		return nil, fmt.Errorf("%w: trailer position %d out of range", errs.ErrTruncated, pos)
	}

	rh, err := header.ParseRecordHeader(fv.data[pos:], fv.header.Engine)
	if err != nil {
		return nil, err
	}

	idxStart := pos + rh.ByteLength()
	idxEnd := idxStart + int(rh.IndexArrayBytes)
	if idxEnd > len(fv.data) {
		return nil, fmt.Errorf("%w: trailer index spans %d bytes, have %d", errs.ErrTruncated, idxEnd, len(fv.data))
	}

	ti, err := parseTrailerIndex(fv.data[idxStart:idxEnd], fv.header.Engine)
	if err != nil {
		return nil, err
	}

	slots := indexFromLengths(ti.Lengths, recordsStart)
	if ti.EventCounts != nil {
		for i, c := range ti.EventCounts {
			slots[i].EventCount = c
		}
	}

	return slots, nil
}

func (fv *FileView) linearScan(start, count int) ([]recordSlot, error) {
	slots := make([]recordSlot, 0, count)
	cursor := start
	for i := 0; i < count; i++ {
		if cursor+header.RecordHeaderBytes > len(fv.data) {
			return nil, fmt.Errorf("%w: record %d header at %d exceeds mapping length %d", errs.ErrTruncated, i, cursor, len(fv.data))
		}
		rh, err := header.ParseRecordHeader(fv.data[cursor:], fv.header.Engine)
		if err != nil {
			return nil, err
		}
		slots = append(slots, recordSlot{Offset: cursor, EventCount: int(rh.EventCount)})
		cursor += int(rh.RecordLengthWords) * 4
	}

	return slots, nil
}

// Header returns the parsed file header.
func (fv *FileView) Header() header.FileHeader { return fv.header }

// RecordCount returns the number of records the file's index (or linear
// scan) discovered.
func (fv *FileView) RecordCount() int { return len(fv.slots) }

// ByteOrder returns the byte order elected from the file header's magic
// word.
func (fv *FileView) ByteOrder() endian.EndianEngine { return fv.header.Engine }

// Record returns the record at index i. O(1) when the file carried an
// index; the linear-scan fallback resolves offsets once at open time,
// so lookups stay O(1) afterward either way.
func (fv *FileView) Record(i int) (RecordView, error) {
	if i < 0 || i >= len(fv.slots) {
		return RecordView{}, fmt.Errorf("%w: record index %d, have %d", errs.ErrOutOfRange, i, len(fv.slots))
	}

	return newRecordView(fv.data, fv.header.Engine, fv.slots[i].Offset, fv.cacheChildren)
}

// Records iterates records in order, stopping at the first one that
// fails to parse. A corrupt record does not prevent access to those
// before it; the caller can seek past it with Record(i) when an
// out-of-band index is available.
func (fv *FileView) Records() iter.Seq2[int, RecordView] {
	return func(yield func(int, RecordView) bool) {
		for i := range fv.slots {
			rv, err := fv.Record(i)
			if err != nil {
				return
			}
			if !yield(i, rv) {
				return
			}
		}
	}
}

// UserHeaderBytes returns the file-level user header's raw byte range,
// uninterpreted.
func (fv *FileView) UserHeaderBytes() []byte {
	fh := &fv.header
	headerEnd := fh.ByteLength()
	idxEnd := headerEnd + int(fh.IndexArrayBytes)
	end := idxEnd + int(fh.UserHeaderBytes)

	return fv.data[idxEnd:end]
}

// DictionaryBytes returns the file user header's bytes when the
// dictionary-present flag is set, else nil. The dictionary package
// decodes the XML content.
func (fv *FileView) DictionaryBytes() []byte {
	if !fv.header.Flags.HasDictionary() {
		return nil
	}

	return fv.UserHeaderBytes()
}

// FirstEventBytes returns the file user header's bytes when the
// first-event-present flag is set, else nil. The core exposes this as a
// raw range only; it does not interpret the first event structurally.
func (fv *FileView) FirstEventBytes() []byte {
	if !fv.header.Flags.HasFirstEvent() {
		return nil
	}

	return fv.UserHeaderBytes()
}
