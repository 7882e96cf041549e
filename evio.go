// Package evio provides a read-only introspection library for files
// stored in a structured, hierarchical, event-oriented binary container
// format used in nuclear-physics data acquisition.
//
// The format packages a stream of "events" — each a tree of tagged,
// typed data structures — into a sequence of on-disk records, optionally
// compressed, preceded by a global file header and optionally
// terminated by a trailer that indexes all records. This package is the
// decoder: a layered parser that turns a memory-mapped byte range into
// a navigable, lazily materialized tree of records, events, and nested
// banks, plus the rules by which typed leaf payloads are reinterpreted
// as typed arrays.
//
// # Core Features
//
//   - Endianness auto-detection from the file's own magic constant, no
//     out-of-band byte-order flag required
//   - O(1) random access to records when a file-header or trailer index
//     is present, transparent fallback to a linear scan otherwise
//   - Zero-copy leaf access: the typed-slice view is a borrow of the
//     underlying mapping and composite values are byte ranges into it;
//     string-array decoding and the per-type slice accessors copy the
//     values out
//   - The composite type's format-string mini-language, compiled once
//     per node and cached
//   - Read-only: the library neither writes nor modifies any byte
//
// # Basic Usage
//
//	f, err := evio.Open("run.evio")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	for i, rec := range f.Records() {
//	    if rec.CompressionType().IsCompressed() {
//	        continue
//	    }
//	    for j, ev := range rec.Events() {
//	        root, err := ev.Root()
//	        if err != nil {
//	            log.Printf("record %d event %d: %v", i, j, err)
//	            continue
//	        }
//	        fmt.Printf("tag=%#x type=%v\n", root.Tag(), root.ContentType())
//	    }
//	}
//
// # Package Structure
//
// This package re-exports the most commonly used names from record/ and
// container/ so straightforward callers need only import evio. Advanced callers (index-reconciliation tuning, direct
// bank-tree walks without a FileView) can import those packages
// directly.
package evio

import (
	"github.com/hanjie1/evio/container"
	"github.com/hanjie1/evio/record"
)

// Open memory-maps path read-only and parses its file header and record
// index.
func Open(path string, opts ...record.OpenOption) (*record.FileView, error) {
	return record.Open(path, opts...)
}

// OpenBytes parses a file header and record index directly out of an
// in-memory byte slice. The caller owns data's lifetime; evio never
// copies it.
func OpenBytes(data []byte, opts ...record.OpenOption) (*record.FileView, error) {
	return record.OpenBytes(data, opts...)
}

// WithChildrenCache and WithStrictIndex configure Open/OpenBytes; see
// the record package for details.
var (
	WithChildrenCache = record.WithChildrenCache
	WithStrictIndex   = record.WithStrictIndex
)

// Re-exported types for callers that prefer a single import.
type (
	FileView   = record.FileView
	RecordView = record.RecordView
	EventView  = record.EventView
	BankNode   = container.BankNode
)
