package container

import (
	"fmt"

	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
	"github.com/hanjie1/evio/internal/pool"
)

// AsStrings decodes a string-array leaf (content type 0x3): one or
// more NUL-terminated ASCII strings concatenated, terminated by
// a run of at least one 0x04 byte and padded to a 4-byte boundary with
// further 0x04 bytes.
//
// A legal single-string payload with no 0x04 terminator is accepted
// for backward readability; the returned bool reports whether the
// terminator run was present (false means the lone-string fallback
// was used).
func (n BankNode) AsStrings() ([]string, bool, error) {
	if n.contentType != format.TypeStringArr {
		return nil, false, wrongType(n.contentType, format.TypeStringArr)
	}

	payload := n.data[n.dataOffset : n.dataOffset+n.dataLen]

	termRun := 0
	for i := len(payload) - 1; i >= 0 && payload[i] == 0x04; i-- {
		termRun++
	}

	if termRun == 0 {
		// Backward-compatible fallback: no terminator run at all.
		return []string{string(payload)}, false, nil
	}

	body := payload[:len(payload)-termRun]

	scratch, cleanup := pool.GetStringScratch()
	defer cleanup()

	start := 0
	for i := 0; i < len(body); i++ {
		if body[i] == 0 {
			*scratch = append(*scratch, string(body[start:i]))
			start = i + 1
		}
	}
	// A payload with no embedded NUL at all (single string, terminator
	// run present) still yields that one string.
	if start == 0 && len(body) > 0 {
		*scratch = append(*scratch, string(body))
		start = len(body)
	}

	if start != len(body) {
		return nil, false, fmt.Errorf("%w: string-array payload not NUL-aligned before terminator", errs.ErrCorruption)
	}

	out := make([]string, len(*scratch))
	copy(out, *scratch)

	return out, true, nil
}
