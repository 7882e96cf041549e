package record

import (
	"fmt"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/errs"
)

// recordSlot is one entry of the record-offset index: the byte offset
// of a record header and, once known, its event count (-1 until a
// trailer pair or a parsed header supplies it).
type recordSlot struct {
	Offset     int
	EventCount int
}

// indexFromLengths turns a run of record-length-in-words values into a
// record-offset index, accumulating offsets from startOffset by
// successive record lengths.
func indexFromLengths(lengths []uint32, startOffset int) []recordSlot {
	slots := make([]recordSlot, len(lengths))
	offset := startOffset
	for i, words := range lengths {
		slots[i] = recordSlot{Offset: offset, EventCount: -1}
		offset += int(words) * 4
	}

	return slots
}

// parseLengthArray reads a flat array of uint32 length-words, one per
// record, per the file header's own index array.
func parseLengthArray(data []byte, engine endian.EndianEngine) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: index array length %d not a multiple of 4", errs.ErrCorruption, len(data))
	}

	n := len(data) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = engine.Uint32(data[i*4:])
	}

	return out, nil
}

// trailerIndex is the result of probing and decoding a trailer's index
// array, which may hold either one length-word per record or
// (length, event-count) pairs.
type trailerIndex struct {
	Lengths     []uint32
	EventCounts []int // nil when the index held lengths only
}

// parseTrailerIndex probes the trailer index's byte length to decide
// between the two legal interpretations: a flat array of
// length-words-per-record, or (length-words, event-count) pairs. It
// errors if neither interpretation evenly divides the byte length.
func parseTrailerIndex(data []byte, engine endian.EndianEngine) (trailerIndex, error) {
	switch {
	case len(data)%8 == 0 && len(data) > 0:
		n := len(data) / 8
		lengths := make([]uint32, n)
		counts := make([]int, n)
		for i := 0; i < n; i++ {
			lengths[i] = engine.Uint32(data[i*8:])
			counts[i] = int(engine.Uint32(data[i*8+4:]))
		}

		return trailerIndex{Lengths: lengths, EventCounts: counts}, nil
	case len(data)%4 == 0:
		lengths, err := parseLengthArray(data, engine)
		if err != nil {
			return trailerIndex{}, err
		}

		return trailerIndex{Lengths: lengths}, nil
	default:
		return trailerIndex{}, fmt.Errorf("%w: trailer index byte length %d fits neither 4- nor 8-byte stride", errs.ErrCorruption, len(data))
	}
}

// reconcile checks that a file-header-derived index and a
// trailer-derived index agree on record offsets. When strict is false,
// disagreement is tolerated and the file-header index wins.
func reconcile(fileSlots, trailerSlots []recordSlot, strict bool) ([]recordSlot, error) {
	if fileSlots == nil {
		return trailerSlots, nil
	}
	if trailerSlots == nil {
		return fileSlots, nil
	}

	if len(fileSlots) != len(trailerSlots) {
		if strict {
			return nil, fmt.Errorf("%w: file index has %d records, trailer index has %d", errs.ErrCorruption, len(fileSlots), len(trailerSlots))
		}

		return fileSlots, nil
	}

	for i := range fileSlots {
		if fileSlots[i].Offset != trailerSlots[i].Offset {
			if strict {
				return nil, fmt.Errorf("%w: file and trailer indexes disagree at record %d (%d != %d)", errs.ErrCorruption, i, fileSlots[i].Offset, trailerSlots[i].Offset)
			}

			return fileSlots, nil
		}
	}

	// Trailer pairs carry event counts the file index does not.
	out := make([]recordSlot, len(fileSlots))
	for i := range fileSlots {
		out[i] = fileSlots[i]
		if trailerSlots[i].EventCount >= 0 {
			out[i].EventCount = trailerSlots[i].EventCount
		}
	}

	return out, nil
}
