package container

import (
	"fmt"
	"strconv"

	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
	"github.com/hanjie1/evio/internal/pool"
)

// CompositeValue is one decoded (dtype, byte-range) pair the composite
// format engine yields, exposed as an ordered list.
type CompositeValue struct {
	DType format.ContentType
	Off   int
	Len   int
}

// instr is one compiled composite bytecode instruction: either a
// scalar token (dtype, element size) or a parenthesized group (body of
// further instructions), each with a repeat source that is either a
// literal count baked into the format string or one read dynamically
// from the data stream (N=i32, n=i16, m=i8) at evaluation time.
type instr struct {
	isGroup bool
	dtype   format.ContentType // scalar only
	body    []instr            // group only

	literalMult int  // >=1; used when dynamic == 0
	dynamic     byte // 0, or 'N'/'n'/'m'
}

// compiledFormat is the memoized bytecode for one composite node's
// format descriptor, cached so repeated access does not re-tokenize.
type compiledFormat struct {
	program []instr
}

var tokenDType = map[byte]format.ContentType{
	'i': format.TypeUint32,
	'I': format.TypeInt32,
	'F': format.TypeFloat32,
	'D': format.TypeFloat64,
	'L': format.TypeInt64,
	'l': format.TypeUint64,
	'S': format.TypeInt16,
	's': format.TypeUint16,
	'C': format.TypeInt8,
	'c': format.TypeUint8,
	'a': format.TypeUint8, // ASCII byte: same width/signedness as 'c'
	'A': format.TypeHollerit,
}

func dtypeSize(dt format.ContentType) int {
	switch dt {
	case format.TypeHollerit:
		return 4
	default:
		return dt.ElementSize()
	}
}

// compileFormat parses a composite format descriptor into bytecode.
// Grammar: comma-separated tokens, each an optional prefix
// (integer 2..15, or N/n/m for a data-driven multiplier) followed by a
// type letter or a parenthesized, comma-separated sub-sequence.
func compileFormat(desc string) ([]instr, error) {
	toks, err := splitTopLevel(desc)
	if err != nil {
		return nil, err
	}

	program := make([]instr, 0, len(toks))
	for _, tok := range toks {
		ins, err := compileToken(tok)
		if err != nil {
			return nil, err
		}
		program = append(program, ins)
	}

	return program, nil
}

// splitTopLevel splits desc on commas that are not nested inside
// parentheses, and validates paren balance.
func splitTopLevel(desc string) ([]string, error) {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(desc); i++ {
		switch desc[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unmatched ')' in %q", errs.ErrBadComposite, desc)
			}
		case ',':
			if depth == 0 {
				out = append(out, desc[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unmatched '(' in %q", errs.ErrBadComposite, desc)
	}
	if start < len(desc) {
		out = append(out, desc[start:])
	}

	return out, nil
}

func compileToken(tok string) (instr, error) {
	if tok == "" {
		return instr{}, fmt.Errorf("%w: empty token", errs.ErrBadComposite)
	}

	i := 0
	dynamic := byte(0)
	literalMult := 1

	switch tok[i] {
	case 'N', 'n', 'm':
		dynamic = tok[i]
		i++
	default:
		digitStart := i
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
		}
		if i > digitStart {
			n, err := strconv.Atoi(tok[digitStart:i])
			if err != nil || n < 2 || n > 15 {
				return instr{}, fmt.Errorf("%w: multiplier %q out of [2,15]", errs.ErrBadComposite, tok[digitStart:i])
			}
			literalMult = n
		}
	}

	if i >= len(tok) {
		return instr{}, fmt.Errorf("%w: token %q has no type after multiplier", errs.ErrBadComposite, tok)
	}

	if tok[i] == '(' {
		if tok[len(tok)-1] != ')' {
			return instr{}, fmt.Errorf("%w: group token %q missing closing ')'", errs.ErrBadComposite, tok)
		}
		inner := tok[i+1 : len(tok)-1]
		body, err := compileFormat(inner)
		if err != nil {
			return instr{}, err
		}

		return instr{isGroup: true, body: body, literalMult: literalMult, dynamic: dynamic}, nil
	}

	if i != len(tok)-1 {
		return instr{}, fmt.Errorf("%w: malformed token %q", errs.ErrBadComposite, tok)
	}

	dt, ok := tokenDType[tok[i]]
	if !ok {
		return instr{}, fmt.Errorf("%w: illegal format character %q", errs.ErrBadComposite, tok[i])
	}

	return instr{dtype: dt, literalMult: literalMult, dynamic: dynamic}, nil
}

// evaluator walks compiled bytecode against a raw data blob, emitting
// CompositeValue pairs and tracking the cursor for the data-exhaustion
// replay rule.
type evaluator struct {
	node *BankNode
	data []byte
	cur  int
	out  *[]pool.CompositeToken
}

func (ev *evaluator) readMultiplier(kind byte) (int, error) {
	var size int
	switch kind {
	case 'N':
		size = 4
	case 'n':
		size = 2
	case 'm':
		size = 1
	}
	if ev.cur+size > len(ev.data) {
		return 0, fmt.Errorf("%w: data exhausted reading %c multiplier", errs.ErrBadComposite, kind)
	}

	off := ev.cur
	var dt format.ContentType
	var val int
	switch kind {
	case 'N':
		dt = format.TypeCountN
		val = int(int32(ev.node.engine.Uint32(ev.data[off:])))
	case 'n':
		dt = format.TypeCountn
		val = int(int16(ev.node.engine.Uint16(ev.data[off:])))
	case 'm':
		dt = format.TypeCountm
		val = int(int8(ev.data[off]))
	}
	if val < 0 {
		return 0, fmt.Errorf("%w: negative %c multiplier %d", errs.ErrBadComposite, kind, val)
	}

	*ev.out = append(*ev.out, pool.CompositeToken{DType: byte(dt), Off: off, Len: size})
	ev.cur += size

	return val, nil
}

func (ev *evaluator) runOnce(program []instr) error {
	for _, ins := range program {
		count := ins.literalMult
		if ins.dynamic != 0 {
			n, err := ev.readMultiplier(ins.dynamic)
			if err != nil {
				return err
			}
			count = n
		}

		for r := 0; r < count; r++ {
			if ins.isGroup {
				if err := ev.runOnce(ins.body); err != nil {
					return err
				}

				continue
			}

			size := dtypeSize(ins.dtype)
			if ev.cur+size > len(ev.data) {
				return fmt.Errorf("%w: data exhausted mid-token", errs.ErrBadComposite)
			}
			*ev.out = append(*ev.out, pool.CompositeToken{DType: byte(ins.dtype), Off: ev.cur, Len: size})
			ev.cur += size
		}
	}

	return nil
}

// lastGroupTail returns the sub-program to replay once the format has
// been fully consumed but data remains: the last top-level group if one
// exists, else the whole program.
func lastGroupTail(program []instr) []instr {
	for i := len(program) - 1; i >= 0; i-- {
		if program[i].isGroup {
			return []instr{program[i]}
		}
	}

	return program
}

// AsComposite decodes a composite leaf (content type 0xf): a
// TAGSEGMENT-headered ASCII format descriptor followed by a
// BANK-headered raw data blob, interpreted per the descriptor's
// mini-language. The compiled bytecode is cached on the node.
func (n *BankNode) AsComposite() ([]CompositeValue, error) {
	if !n.contentType.IsComposite() {
		return nil, wrongType(n.contentType, format.TypeComposite)
	}

	payload := n.payload()
	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: composite payload too short for format descriptor header", errs.ErrTruncated)
	}

	descHdr := parseTagSegmentHeader(payload[0:4], n.engine)
	descEnd := 4 + int(descHdr.LengthWords)*4
	if descEnd > len(payload) {
		return nil, fmt.Errorf("%w: format descriptor spans %d bytes, payload has %d", errs.ErrTruncated, descEnd, len(payload))
	}
	descBytes := payload[4:descEnd]
	desc := trimNUL(descBytes)

	if n.compiled == nil {
		program, err := compileFormat(desc)
		if err != nil {
			return nil, err
		}
		n.compiled = &compiledFormat{program: program}
	}

	if descEnd+8 > len(payload) {
		return nil, fmt.Errorf("%w: composite data blob header missing", errs.ErrTruncated)
	}
	dataHdr := parseBankHeader(payload[descEnd:descEnd+8], n.engine)
	dataStart := descEnd + 8
	dataLen := int(dataHdr.LengthWords-1) * 4
	if dataHdr.LengthWords < 1 || dataStart+dataLen > len(payload) {
		return nil, fmt.Errorf("%w: composite data blob spans beyond payload", errs.ErrTruncated)
	}
	data := payload[dataStart : dataStart+dataLen]

	scratch, cleanup := pool.GetTokenScratch()
	defer cleanup()

	ev := &evaluator{node: n, data: data, out: scratch}
	if err := ev.runOnce(n.compiled.program); err != nil {
		return nil, err
	}

	for ev.cur < len(data) {
		tail := lastGroupTail(n.compiled.program)
		before := ev.cur
		if err := ev.runOnce(tail); err != nil {
			return nil, err
		}
		if ev.cur == before {
			// No progress possible (empty tail); avoid an infinite loop.
			return nil, fmt.Errorf("%w: data remains but format cannot advance", errs.ErrBadComposite)
		}
	}

	out := make([]CompositeValue, len(*scratch))
	offsetBase := n.headerOffset + n.headerBytes + descEnd + 8
	for i, tok := range *scratch {
		out[i] = CompositeValue{DType: format.ContentType(tok.DType), Off: offsetBase + tok.Off, Len: tok.Len}
	}

	return out, nil
}

func trimNUL(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}

	return string(b[:end])
}
