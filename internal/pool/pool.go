// Package pool provides sync.Pool-backed scratch buffers for the core's
// allocation-heavy leaf decoders.
//
// Bank, segment, and tagsegment trees are walked read-only and never
// copied, but two leaf shapes build up a variable-length result before
// returning it to the caller: the string-array convention (leaf type
// 0x3) and the composite format engine's token sequence. Both reuse a
// pooled scratch slice while accumulating and only allocate the
// caller-owned result once the final length is known.
package pool

import "sync"

var (
	stringSlicePool = sync.Pool{
		New: func() any { return &[]string{} },
	}
	tokenSlicePool = sync.Pool{
		New: func() any { return &[]CompositeToken{} },
	}
)

// CompositeToken is a decoded (dtype, byte-range) pair produced while
// evaluating a composite format descriptor. It mirrors the shape
// container.CompositeValue exposes to callers, duplicated here so this
// package has no dependency on container (which depends on pool).
type CompositeToken struct {
	DType byte
	Off   int
	Len   int
}

// GetStringScratch retrieves a pointer to a zero-length string slice
// from the pool. The caller accumulates results with
// `*ptr = append(*ptr, x)` and must call cleanup (typically via defer)
// once the accumulated values have been copied into a caller-owned
// result; the backing array must not be referenced past cleanup since
// it returns to the pool for reuse.
func GetStringScratch() (ptr *[]string, cleanup func()) {
	ptr, _ = stringSlicePool.Get().(*[]string)
	*ptr = (*ptr)[:0]

	return ptr, func() { stringSlicePool.Put(ptr) }
}

// GetTokenScratch retrieves a pointer to a zero-length CompositeToken
// slice from the pool, same contract as GetStringScratch.
func GetTokenScratch() (ptr *[]CompositeToken, cleanup func()) {
	ptr, _ = tokenSlicePool.Get().(*[]CompositeToken)
	*ptr = (*ptr)[:0]

	return ptr, func() { tokenSlicePool.Put(ptr) }
}
