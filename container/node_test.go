package container

import (
	"encoding/binary"
	"testing"

	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
	"github.com/stretchr/testify/require"
)

// buildNestedBankEvent reproduces the shape of an annotated production
// dump: a BANK with length field 21, tag=0xff60, pad=0, type=0x10
// (bank-of-banks), num=0x01, whose two children are a BANK of length 7
// and a BANK of length 11; the second child contains a grandchild with
// header bytes `ff 30 20 11` (tag=0xff30, type=0x20, num=0x11), itself
// a container of SEGMENTs fully tiled by one SEGMENT leaf. Built
// relative to offset 0; EventView callers see node offsets relative to
// the event's own span (record/event.go), not the file-global position.
func buildNestedBankEvent(engine binary.ByteOrder) []byte {
	var buf []byte

	// Event header: length=21, word1 = tag:0xff60 pad:0 type:0x10 num:0x01.
	buf = append(buf, putWord(engine, 21)...)
	buf = append(buf, putWord(engine, 0xff60<<16|0x10<<8|0x01)...)

	// Child 0: BANK length=7, leaf type 0x1 (uint32), 6 words of payload.
	buf = append(buf, putWord(engine, 7)...)
	buf = append(buf, putWord(engine, 0x1111<<16|0x01<<8|0x00)...)
	for i := 0; i < 6; i++ {
		buf = append(buf, putWord(engine, uint32(i))...)
	}

	// Child 1: BANK length=11, container-of-banks (type 0x10), num=0x02.
	buf = append(buf, putWord(engine, 11)...)
	buf = append(buf, putWord(engine, 0xAAAA<<16|0x10<<8|0x02)...)

	// Grandchild: BANK length=9, tag=0xff30 pad=0 type=0x20 (SEGMENT
	// container alias) num=0x11; its 8-word payload is tiled by one
	// SEGMENT leaf.
	buf = append(buf, putWord(engine, 9)...)
	buf = append(buf, putWord(engine, 0xff30<<16|0x20<<8|0x11)...)

	// SEGMENT leaf: tag=0x01 pad=0 type=0x01 (uint32) length=7 (full span
	// (7+1)*4 = 32 bytes = the grandchild's entire 8-word payload).
	buf = append(buf, putWord(engine, 0x01<<24|0x01<<16|7)...)
	for i := 0; i < 7; i++ {
		buf = append(buf, putWord(engine, uint32(0x1000+i))...)
	}

	return buf
}

func TestParseEventRoot_NestedBanks(t *testing.T) {
	for _, engine := range bothOrders {
		t.Run(engineName(engine), func(t *testing.T) {
			data := buildNestedBankEvent(engine)

			root, err := ParseEventRoot(data, 0, engine, false)
			require.NoError(t, err)
			require.Equal(t, uint32(20), root.LengthWords()) // word0(21) minus the header word itself
			require.Equal(t, uint32(0xff60), root.Tag())
			require.Equal(t, uint8(0), root.Pad())
			require.Equal(t, format.ContentType(0x10), root.ContentType())
			require.Equal(t, uint8(0x01), root.Num())
			require.Equal(t, format.KindBank, root.Kind())

			children, err := root.Children()
			require.NoError(t, err)
			require.Len(t, children, 2)

			require.Equal(t, uint32(6), children[0].LengthWords())
			require.Equal(t, uint32(0x1111), children[0].Tag())
			require.Equal(t, format.KindLeaf, children[0].Kind())

			require.Equal(t, uint32(10), children[1].LengthWords())
			require.Equal(t, uint32(0xAAAA), children[1].Tag())
			require.Equal(t, format.KindBank, children[1].Kind())

			grandchildren, err := children[1].Children()
			require.NoError(t, err)
			require.Len(t, grandchildren, 1)
			require.Equal(t, uint32(0xff30), grandchildren[0].Tag())
			require.Equal(t, format.ContentType(0x20), grandchildren[0].ContentType())
			require.Equal(t, uint8(0x11), grandchildren[0].Num())

			require.NoError(t, root.Validate())
		})
	}
}

func TestBankNode_PadLegality16Bit(t *testing.T) {
	engine := binary.BigEndian

	var data []byte
	// BANK: word0=3 (payload_words=2, 8 bytes), type=int16 (0x4), pad=2,
	// holding three 16-bit shorts (6 bytes) plus 2 trailing pad bytes.
	data = append(data, putWord(engine, 3)...)
	data = append(data, putWord(engine, 0x2222<<16|2<<14|0x04<<8|0x00)...)
	data = append(data, putWord(engine, 0x00010002)...)
	data = append(data, putWord(engine, 0x00030000)...) // trailing 2 pad bytes

	n, err := parseNode(data, 0, engine, format.KindBank, false)
	require.NoError(t, err)
	require.Equal(t, uint32(2), n.LengthWords())
	require.Equal(t, uint8(2), n.Pad())
	require.Equal(t, 6, n.DataLen())

	slice, err := n.Int16Slice()
	require.NoError(t, err)
	require.Equal(t, []int16{1, 2, 3}, slice)
}

func TestBankNode_PadLegality8Bit(t *testing.T) {
	engine := binary.BigEndian

	var data []byte
	// BANK: length=2 (payload_words=1), type=uint8 (0x7), pad=1, holding
	// three bytes plus one pad byte.
	data = append(data, putWord(engine, 2)...)
	data = append(data, putWord(engine, 0x3333<<16|1<<14|0x07<<8|0x00)...)
	data = append(data, []byte{1, 2, 3, 0}...)

	n, err := parseNode(data, 0, engine, format.KindBank, false)
	require.NoError(t, err)
	require.Equal(t, uint8(1), n.Pad())
	require.Equal(t, 3, n.DataLen())

	slice, err := n.Uint8Slice()
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3}, slice)
}

func TestBankNode_InvalidPadIsCorruption(t *testing.T) {
	engine := binary.BigEndian

	var data []byte
	// 16-bit content with pad=1 is illegal (only {0,2} allowed).
	data = append(data, putWord(engine, 2)...)
	data = append(data, putWord(engine, 0x1<<16|1<<14|0x04<<8|0x00)...)
	data = append(data, make([]byte, 8)...)

	_, err := parseNode(data, 0, engine, format.KindBank, false)
	require.Error(t, err)
}

func TestBankNode_ChildrenOvershootIsCorruption(t *testing.T) {
	engine := binary.BigEndian

	var data []byte
	// BANK-of-banks container (type 0x10) with length=2 (payload_words=1,
	// 4 bytes) but a declared child needing more than that.
	data = append(data, putWord(engine, 2)...)
	data = append(data, putWord(engine, 0x1<<16|0x10<<8|0x00)...)
	data = append(data, putWord(engine, 5)...) // child claims length=5, needs 24 bytes

	root, err := parseNode(data, 0, engine, format.KindBank, false)
	require.NoError(t, err)

	_, err = root.Children()
	require.ErrorIs(t, err, errs.ErrCorruption)
}

func TestBankNode_TilingInvariant(t *testing.T) {
	for _, engine := range bothOrders {
		data := buildNestedBankEvent(engine)
		root, err := ParseEventRoot(data, 0, engine, false)
		require.NoError(t, err)

		children, err := root.Children()
		require.NoError(t, err)

		sum := 0
		for _, c := range children {
			sum += c.FullLen()
		}
		require.Equal(t, int(root.LengthWords())*4, sum)
	}
}

func TestBankNode_CachedChildren(t *testing.T) {
	engine := binary.BigEndian
	data := buildNestedBankEvent(engine)

	root, err := ParseEventRoot(data, 0, engine, true)
	require.NoError(t, err)

	first, err := root.Children()
	require.NoError(t, err)

	second, err := root.Children()
	require.NoError(t, err)

	require.Equal(t, first, second)
}
