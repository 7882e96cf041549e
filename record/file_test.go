package record

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanjie1/evio/errs"
	"github.com/hanjie1/evio/format"
	"github.com/hanjie1/evio/header"
)

func fileFlagsWord(dict, firstEvt, trailerIdx bool, userHdrPad uint8, kind format.HeaderKind) uint32 {
	w := uint32(header.FormatVersion)
	if dict {
		w |= 1 << 8
	}
	if firstEvt {
		w |= 1 << 9
	}
	if trailerIdx {
		w |= 1 << 10
	}
	w |= uint32(userHdrPad) << 20
	w |= uint32(kind) << 28

	return w
}

func recordFlagsWord(last bool, eventType uint8, firstEvt bool, pad1, pad2, pad3 uint8, kind format.HeaderKind) uint32 {
	w := uint32(header.FormatVersion)
	if last {
		w |= 1 << 9
	}
	w |= uint32(eventType) << 10
	if firstEvt {
		w |= 1 << 14
	}
	w |= uint32(pad1) << 20
	w |= uint32(pad2) << 22
	w |= uint32(pad3) << 24
	w |= uint32(kind) << 28

	return w
}

// buildFileHeader returns the 14-word (56-byte) file header only.
func buildFileHeader(engine binary.ByteOrder, recordCount, indexArrayBytes uint32, flags uint32, userHeaderBytes uint32, trailerPos uint64) []byte {
	var b []byte
	b = append(b, putWord(engine, header.FileTypeID)...)         // word0
	b = append(b, putWord(engine, 1)...)                         // word1 file number
	b = append(b, putWord(engine, header.NominalHeaderWords)...) // word2
	b = append(b, putWord(engine, recordCount)...)               // word3
	b = append(b, putWord(engine, indexArrayBytes)...)           // word4
	b = append(b, putWord(engine, flags)...)                     // word5
	b = append(b, putWord(engine, userHeaderBytes)...)           // word6
	b = append(b, putWord(engine, header.FileMagic)...)          // word7
	ur := make([]byte, 8)
	engine.PutUint64(ur, 0)
	b = append(b, ur...) // words 8-9
	tp := make([]byte, 8)
	engine.PutUint64(tp, trailerPos)
	b = append(b, tp...)                 // words 10-11
	b = append(b, putWord(engine, 0)...) // word12
	b = append(b, putWord(engine, 0)...) // word13

	return b
}

// buildRecordHeader returns a 14-word (56-byte) record header.
func buildRecordHeader(engine binary.ByteOrder, recordLengthWords, eventCount, indexArrayBytes, flags, userHeaderBytes, uncompressedBytes uint32, compType format.CompressionType, compLen uint32) []byte {
	var b []byte
	b = append(b, putWord(engine, recordLengthWords)...)         // word0
	b = append(b, putWord(engine, 1)...)                         // word1 record number
	b = append(b, putWord(engine, header.NominalHeaderWords)...) // word2
	b = append(b, putWord(engine, eventCount)...)                // word3
	b = append(b, putWord(engine, indexArrayBytes)...)           // word4
	b = append(b, putWord(engine, flags)...)                     // word5
	b = append(b, putWord(engine, userHeaderBytes)...)           // word6
	b = append(b, putWord(engine, header.RecordMagic)...)        // word7
	b = append(b, putWord(engine, uncompressedBytes)...)         // word8
	word9 := uint32(compType)<<28 | (compLen & 0x0fffffff)
	b = append(b, putWord(engine, word9)...) // word9
	ur1 := make([]byte, 8)
	b = append(b, ur1...) // words 10-11
	ur2 := make([]byte, 8)
	b = append(b, ur2...) // words 12-13

	return b
}

// buildSingleRecordSingleEventFile builds a complete file with no file
// index, no trailer: one record holding one event whose root bank has
// the given tag/content-type and a 4-byte uint32 payload.
func buildSingleRecordSingleEventFile(engine binary.ByteOrder) []byte {
	flags := fileFlagsWord(false, false, false, 0, format.FileHeaderEvio)
	fh := buildFileHeader(engine, 1, 0, flags, 0, 0)

	// Event: BANK root, tag=0x2020, type=uint32 (0x1), num=0, one
	// uint32 value -> payload_words=1, word0=2, full 12 bytes.
	var event []byte
	event = append(event, putWord(engine, 2)...)
	event = append(event, putWord(engine, 0x2020<<16|0x01<<8)...)
	event = append(event, putWord(engine, 0xfeedface)...)

	eventIndex := putWord(engine, uint32(len(event))) // one entry: byte length

	recFlags := recordFlagsWord(true, 0, false, 0, 0, 0, format.RecordHeaderEvio)
	recordLengthWords := uint32((header.RecordHeaderBytes + len(eventIndex) + len(event)) / 4)
	rh := buildRecordHeader(engine, recordLengthWords, 1, uint32(len(eventIndex)), recFlags, 0, uint32(len(event)), format.CompressionNone, 0)

	var data []byte
	data = append(data, fh...)
	data = append(data, rh...)
	data = append(data, eventIndex...)
	data = append(data, event...)

	return data
}

func TestOpenBytes_SingleRecordSingleEvent(t *testing.T) {
	for _, engine := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(engineName(engine), func(t *testing.T) {
			data := buildSingleRecordSingleEventFile(engine)

			fv, err := OpenBytes(data)
			require.NoError(t, err)
			require.Equal(t, 1, fv.RecordCount())

			rec, err := fv.Record(0)
			require.NoError(t, err)
			require.Equal(t, 1, rec.EventCount())
			require.False(t, rec.CompressionType().IsCompressed())
			require.True(t, rec.IsLast())
			require.False(t, rec.IsTrailer())

			ev, err := rec.Event(0)
			require.NoError(t, err)

			root, err := ev.Root()
			require.NoError(t, err)
			require.Equal(t, uint32(0x2020), root.Tag())
			require.Equal(t, format.TypeUint32, root.ContentType())

			slice, err := root.Uint32Slice()
			require.NoError(t, err)
			require.Equal(t, []uint32{0xfeedface}, slice)
		})
	}
}

func engineName(e binary.ByteOrder) string {
	if e == binary.LittleEndian {
		return "little"
	}

	return "big"
}

func TestOpenBytes_EndiannessRoundTrip(t *testing.T) {
	little, err := OpenBytes(buildSingleRecordSingleEventFile(binary.LittleEndian))
	require.NoError(t, err)
	big, err := OpenBytes(buildSingleRecordSingleEventFile(binary.BigEndian))
	require.NoError(t, err)

	lRec, err := little.Record(0)
	require.NoError(t, err)
	bRec, err := big.Record(0)
	require.NoError(t, err)

	lEv, err := lRec.Event(0)
	require.NoError(t, err)
	bEv, err := bRec.Event(0)
	require.NoError(t, err)

	lRoot, err := lEv.Root()
	require.NoError(t, err)
	bRoot, err := bEv.Root()
	require.NoError(t, err)

	require.Equal(t, lRoot.Tag(), bRoot.Tag())
	require.Equal(t, lRoot.ContentType(), bRoot.ContentType())

	lSlice, err := lRoot.Uint32Slice()
	require.NoError(t, err)
	bSlice, err := bRoot.Uint32Slice()
	require.NoError(t, err)
	require.Equal(t, lSlice, bSlice)
}

func TestOpenBytes_NoRecordsIsEmptyNotError(t *testing.T) {
	engine := binary.BigEndian
	flags := fileFlagsWord(false, false, false, 0, format.FileHeaderEvio)
	data := buildFileHeader(engine, 0, 0, flags, 0, 0)

	fv, err := OpenBytes(data)
	require.NoError(t, err)
	require.Equal(t, 0, fv.RecordCount())
}

func TestOpenBytes_TrailerIndexGivesDirectRecordCount(t *testing.T) {
	engine := binary.BigEndian
	const n = 142

	flags := fileFlagsWord(false, false, true, 0, format.FileHeaderEvio)
	fh := buildFileHeader(engine, 0, 0, flags, 0, uint64(header.FileHeaderBytes))

	var trailerIdx []byte
	for i := 0; i < n; i++ {
		trailerIdx = append(trailerIdx, putWord(engine, 14)...) // length words
		trailerIdx = append(trailerIdx, putWord(engine, 0)...)  // event count
	}

	trailerFlags := recordFlagsWord(true, 0, false, 0, 0, 0, format.RecordHeaderEvioTrailer)
	trailerRecordWords := uint32((header.RecordHeaderBytes + len(trailerIdx)) / 4)
	trh := buildRecordHeader(engine, trailerRecordWords, 0, uint32(len(trailerIdx)), trailerFlags, 0, 0, format.CompressionNone, 0)

	var data []byte
	data = append(data, fh...)
	data = append(data, trh...)
	data = append(data, trailerIdx...)

	fv, err := OpenBytes(data)
	require.NoError(t, err)
	require.Equal(t, n, fv.RecordCount())
}

func TestOpenBytes_CompressedRecordEventAccessErrors(t *testing.T) {
	engine := binary.BigEndian

	flags := fileFlagsWord(false, false, false, 0, format.FileHeaderEvio)
	fh := buildFileHeader(engine, 1, 0, flags, 0, 0)

	payload := []byte{1, 2, 3, 4} // opaque compressed bytes, never decoded
	eventIndex := putWord(engine, uint32(len(payload)))

	recFlags := recordFlagsWord(true, 0, false, 0, 0, 0, format.RecordHeaderEvio)
	recordLengthWords := uint32((header.RecordHeaderBytes + len(eventIndex) + len(payload)) / 4)
	rh := buildRecordHeader(engine, recordLengthWords, 1, uint32(len(eventIndex)), recFlags, 0, uint32(len(payload)), format.CompressionLZ4Fast, 1)

	var data []byte
	data = append(data, fh...)
	data = append(data, rh...)
	data = append(data, eventIndex...)
	data = append(data, payload...)

	fv, err := OpenBytes(data)
	require.NoError(t, err)

	rec, err := fv.Record(0)
	require.NoError(t, err)
	require.True(t, rec.CompressionType().IsCompressed())
	require.Equal(t, 1, rec.EventCount())

	_, err = rec.Event(0)
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestOpen_MissingFileErrors(t *testing.T) {
	_, err := Open("/nonexistent/path/does-not-exist.evio")
	require.ErrorIs(t, err, errs.ErrIo)
}
