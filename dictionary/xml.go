// Package dictionary is a convenience decoder for the XML dictionary
// carried in a file's (or record's) user header. The decoder itself
// only exposes the dictionary as a raw byte range
// (FileView.DictionaryBytes); this package is an optional second step
// for a caller that wants the entries as a lookup map instead of
// parsing the XML itself.
package dictionary

import (
	"encoding/xml"
	"fmt"

	"github.com/hanjie1/evio/errs"
)

// Entry is one `<entry>` in the dictionary: a human-readable name bound
// to a tag (and, for BANK entries, a num).
type Entry struct {
	Name string `xml:"name,attr"`
	Tag  string `xml:"tag,attr"`
	Num  string `xml:"num,attr"`
	Type string `xml:"type,attr"`
}

type xmlDict struct {
	XMLName xml.Name `xml:"xmlDict"`
	Entries []Entry  `xml:"entry"`
}

// Dictionary is the parsed form of an xmlDict document: entries indexed
// by name for O(1) lookup.
type Dictionary struct {
	Entries []Entry
	byName  map[string]Entry
}

// Parse decodes an xmlDict document (the bytes FileView.DictionaryBytes
// or RecordView.UserHeaderBytes returns when the dictionary-present flag
// is set). Trailing NUL padding is tolerated.
func Parse(data []byte) (Dictionary, error) {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}

	var doc xmlDict
	if err := xml.Unmarshal(data[:end], &doc); err != nil {
		return Dictionary{}, fmt.Errorf("%w: xml dictionary: %v", errs.ErrBadHeader, err)
	}

	byName := make(map[string]Entry, len(doc.Entries))
	for _, e := range doc.Entries {
		byName[e.Name] = e
	}

	return Dictionary{Entries: doc.Entries, byName: byName}, nil
}

// Lookup returns the entry registered under name, if any.
func (d Dictionary) Lookup(name string) (Entry, bool) {
	e, ok := d.byName[name]

	return e, ok
}
