package container

import (
	"encoding/binary"
	"testing"

	"github.com/hanjie1/evio/endian"
	"github.com/hanjie1/evio/format"
	"github.com/stretchr/testify/require"
)

// leafNode builds a single BANK-shaped leaf node of the given content
// type wrapping payload (payload must already be word-aligned; callers
// pass pre-padded bytes when testing pad-bearing types).
func leafNode(t *testing.T, engine endian.EndianEngine, dtype format.ContentType, payload []byte, pad uint8) BankNode {
	t.Helper()

	require.Zero(t, len(payload)%4, "payload must be word-aligned")
	payloadWords := uint32(len(payload) / 4)

	var data []byte
	data = append(data, putWord(engine, payloadWords+1)...)
	data = append(data, putWord(engine, 0x1<<16|uint32(pad)<<14|uint32(dtype)<<8)...)
	data = append(data, payload...)

	n, err := parseNode(data, 0, engine, format.KindBank, false)
	require.NoError(t, err)

	return n
}

func TestAsTypedSlice_RejectsContainerAndStringArr(t *testing.T) {
	engine := binary.BigEndian

	container := leafNode(t, engine, format.TypeBankAlias, make([]byte, 0), 0)
	_, err := container.AsTypedSlice()
	require.Error(t, err)

	strArr := leafNode(t, engine, format.TypeStringArr, []byte("ab\x00\x04"), 0)
	_, err = strArr.AsTypedSlice()
	require.Error(t, err)
}

func TestUint32Slice(t *testing.T) {
	for _, engine := range bothOrders {
		t.Run(engineName(engine), func(t *testing.T) {
			var payload []byte
			payload = append(payload, putWord(engine, 1)...)
			payload = append(payload, putWord(engine, 0xffffffff)...)

			n := leafNode(t, engine, format.TypeUint32, payload, 0)
			got, err := n.Uint32Slice()
			require.NoError(t, err)
			require.Equal(t, []uint32{1, 0xffffffff}, got)

			_, err = n.Int32Slice()
			require.Error(t, err)
		})
	}
}

func TestInt32Slice(t *testing.T) {
	engine := binary.BigEndian
	var payload []byte
	minusOne := int32(-1)
	payload = append(payload, putWord(engine, uint32(minusOne))...)
	payload = append(payload, putWord(engine, 42)...)

	n := leafNode(t, engine, format.TypeInt32, payload, 0)
	got, err := n.Int32Slice()
	require.NoError(t, err)
	require.Equal(t, []int32{-1, 42}, got)
}

func TestFloat32Slice(t *testing.T) {
	engine := binary.BigEndian
	var payload []byte
	b := make([]byte, 4)
	engine.PutUint32(b, 0x3f800000) // 1.0
	payload = append(payload, b...)

	n := leafNode(t, engine, format.TypeFloat32, payload, 0)
	got, err := n.Float32Slice()
	require.NoError(t, err)
	require.Equal(t, []float32{1.0}, got)
}

func TestFloat64Slice(t *testing.T) {
	engine := binary.BigEndian
	b := make([]byte, 8)
	engine.PutUint64(b, 0x3ff0000000000000) // 1.0

	n := leafNode(t, engine, format.TypeFloat64, b, 0)
	got, err := n.Float64Slice()
	require.NoError(t, err)
	require.Equal(t, []float64{1.0}, got)
}

func TestInt64Uint64Slice(t *testing.T) {
	engine := binary.BigEndian
	b := make([]byte, 8)
	engine.PutUint64(b, 0xfffffffffffffffe) // -2 as int64

	n := leafNode(t, engine, format.TypeInt64, b, 0)
	got, err := n.Int64Slice()
	require.NoError(t, err)
	require.Equal(t, []int64{-2}, got)

	b2 := make([]byte, 8)
	engine.PutUint64(b2, 7)
	n2 := leafNode(t, engine, format.TypeUint64, b2, 0)
	got2, err := n2.Uint64Slice()
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, got2)
}

func TestInt16Uint16SliceWithPad(t *testing.T) {
	engine := binary.BigEndian
	// 3 uint16 values (6 bytes) + 2 pad bytes, word-aligned to 8 bytes.
	payload := []byte{0, 1, 0, 2, 0, 3, 0, 0}

	n := leafNode(t, engine, format.TypeUint16, payload, 2)
	got, err := n.Uint16Slice()
	require.NoError(t, err)
	require.Equal(t, []uint16{1, 2, 3}, got)

	n2 := leafNode(t, engine, format.TypeInt16, payload, 2)
	got2, err := n2.Int16Slice()
	require.NoError(t, err)
	require.Equal(t, []int16{1, 2, 3}, got2)
}

func TestInt8Uint8SliceWithPad(t *testing.T) {
	engine := binary.BigEndian
	payload := []byte{1, 2, 3, 0} // 3 bytes + 1 pad byte

	n := leafNode(t, engine, format.TypeUint8, payload, 1)
	got, err := n.Uint8Slice()
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3}, got)

	n2 := leafNode(t, engine, format.TypeInt8, payload, 1)
	got2, err := n2.Int8Slice()
	require.NoError(t, err)
	require.Equal(t, []int8{1, 2, 3}, got2)
}

func TestRawUnknown32IsByteForByte(t *testing.T) {
	// TypeUnknown32 content is never byte-swapped regardless of engine;
	// RawUnknown32 must return the stored bytes verbatim.
	for _, engine := range bothOrders {
		t.Run(engineName(engine), func(t *testing.T) {
			payload := []byte{0xde, 0xad, 0xbe, 0xef}
			n := leafNode(t, engine, format.TypeUnknown32, payload, 0)

			got, err := n.RawUnknown32()
			require.NoError(t, err)
			require.Equal(t, payload, got)

			_, err = n.Uint32Slice()
			require.Error(t, err)
		})
	}
}

func TestTypedSliceWrongTypeErrors(t *testing.T) {
	engine := binary.BigEndian
	n := leafNode(t, engine, format.TypeUint32, make([]byte, 4), 0)

	_, err := n.Float32Slice()
	require.Error(t, err)
	_, err = n.Int16Slice()
	require.Error(t, err)
	_, err = n.Uint8Slice()
	require.Error(t, err)
}
