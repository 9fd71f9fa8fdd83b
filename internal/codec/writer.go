// Package codec implements the binary snapshot format Open/Commit read
// and write, grounded on original_source/db_data.rs. Four divergences
// from that file are deliberate fixes, each recorded in DESIGN.md: (1)
// NothingLit also serializes its element type, since tree.rs's NothingLit
// carries one and db_data.rs's bare encoding cannot round-trip it; (2) a
// Gen attribute's synthesis counter is serialized alongside its lambda,
// since the original always resets it to zero on reload; (3) a lambda's
// self-name, together with its declared return type, is serialized when
// a self-name is present, since the original drops them, which would
// silently break a recursive default/Gen/Restrict lambda read back from
// a snapshot (the return type of a lambda without a self-name is not
// written); (4) a stored Ref has its own tag (21), which the original's
// tag table lacks.
package codec

import (
	"encoding/binary"
	"math"
)

type writer struct {
	buf []byte
}

func (w *writer) byte(b byte) { w.buf = append(w.buf, b) }

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) string(s string) {
	w.buf = append(w.buf, []byte(s)...)
	w.buf = append(w.buf, 0)
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.bytes(b[:])
}

func (w *writer) i64(v int64) { w.u64(uint64(v)) }

func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) bool(b bool) {
	if b {
		w.byte(1)
	} else {
		w.byte(0)
	}
}
