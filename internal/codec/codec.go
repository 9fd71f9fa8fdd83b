package codec

import (
	"fmt"
	"os"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
)

// Encode serializes db's header and data to the binary snapshot format,
// grounded on db_data.rs's DBState::to_file. RefList is never written:
// the original's own from_file only ever populates header and data, so
// a reference-count table can't be part of the wire format either;
// Decode rebuilds it.
func Encode(db *dbstate.DBState) []byte {
	w := &writer{}
	for _, schema := range db.Header {
		w.string(schema.Name)
		for _, a := range schema.Attrs {
			writeAttr(w, a)
		}
		w.byte(0)
	}
	w.byte(0)
	w.byte(0)

	for entIdx, schema := range db.Header {
		for attrIdx := range schema.Attrs {
			col, ok := db.Data[dbstate.EntKey{Ent: entIdx, Attr: attrIdx}]
			if !ok {
				continue
			}
			w.u64(uint64(entIdx))
			w.u64(uint64(attrIdx))
			writeExprList(w, col)
		}
	}
	return w.buf
}

// Save writes db to path in one non-atomic step. Commit (internal/executor)
// calls Encode directly and performs its own atomic tmp-file-then-rename
// write instead; Save exists for callers, such as tests, that don't need
// that guarantee.
func Save(db *dbstate.DBState, path string) error {
	return os.WriteFile(path, Encode(db), 0o644)
}

// Decode parses a snapshot previously produced by Encode, reconstructing
// header and data exactly, then rebuilding RefList from scratch by
// scanning every loaded value, since the wire format never carries
// reference counts.
func Decode(raw []byte) (*dbstate.DBState, error) {
	r := newReader(raw)

	db := dbstate.New()
	for {
		b, ok := r.peek()
		if !ok {
			return nil, errUnexpectedEOF
		}
		if b == 0 {
			r.pos++
			break
		}
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		var attrs []ast.Attr
		for {
			b2, ok := r.peek()
			if !ok {
				return nil, errUnexpectedEOF
			}
			if b2 == 0 {
				r.pos++
				break
			}
			a, err := readAttr(r)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, a)
		}
		db.Header = append(db.Header, dbstate.Schema{Name: name, Attrs: attrs})
	}
	if _, err := r.byte(); err != nil {
		return nil, fmt.Errorf("codec: missing header/data separator: %w", err)
	}

	for !r.atEOF() {
		entIdx, err := r.u64()
		if err != nil {
			return nil, err
		}
		attrIdx, err := r.u64()
		if err != nil {
			return nil, err
		}
		col, err := readExprList(r)
		if err != nil {
			return nil, err
		}
		key := dbstate.EntKey{Ent: int(entIdx), Attr: int(attrIdx)}
		if _, dup := db.Data[key]; dup {
			return nil, fmt.Errorf("codec: duplicate data cell for entity %d attribute %d", entIdx, attrIdx)
		}
		db.Data[key] = col
	}

	for _, col := range db.Data {
		for _, val := range col {
			for _, rk := range dbstate.FindRefs(val) {
				db.AddRef(rk)
			}
		}
	}
	return db, nil
}

// Load reads and decodes a snapshot file written by Save or Commit.
func Load(path string) (*dbstate.DBState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}
