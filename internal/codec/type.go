package codec

import (
	"fmt"

	"github.com/relique-lang/relique/internal/ast"
)

// Type tag table, grounded on db_data.rs's binary_write_type /
// binary_read_type. Object/Int/Char/Bool/Double/FuncType/Array/
// Maybe/Tuple/Sum match the original 1-10 byte-for-byte. Gen (11) and
// Restrict (12) carry a lambda as in the original, plus a trailing u64
// synthesis counter on Gen that the original never persists (see the
// package doc comment).
const (
	tagObject = 1
	tagInt    = 2
	tagChar   = 3
	tagBool   = 4
	tagDouble = 5
	tagFunc   = 6
	tagArray  = 7
	tagMaybe  = 8
	tagTuple  = 9
	tagSum    = 10
	tagGen    = 11
	tagRestrict = 12
)

func writeType(w *writer, t *ast.Type) {
	switch t.Kind {
	case ast.TObject:
		w.byte(tagObject)
		w.string(t.Entity)
	case ast.TInt:
		w.byte(tagInt)
	case ast.TChar:
		w.byte(tagChar)
	case ast.TBool:
		w.byte(tagBool)
	case ast.TDouble:
		w.byte(tagDouble)
	case ast.TFunc:
		w.byte(tagFunc)
		for _, p := range t.Parts {
			writeType(w, p)
		}
		w.byte(0)
	case ast.TArray:
		w.byte(tagArray)
		writeType(w, t.Elem)
	case ast.TMaybe:
		w.byte(tagMaybe)
		writeType(w, t.Elem)
	case ast.TTuple:
		w.byte(tagTuple)
		for _, p := range t.Parts {
			writeType(w, p)
		}
		w.byte(0)
	case ast.TSum:
		w.byte(tagSum)
		for _, p := range t.Parts {
			writeType(w, p)
		}
		w.byte(0)
	}
}

// readTypeList reads a NUL-terminated list of types: a 0 byte (which is
// not a valid leading type tag) ends the list.
func readTypeList(r *reader) ([]*ast.Type, error) {
	var out []*ast.Type
	for {
		b, ok := r.peek()
		if !ok {
			return nil, fmt.Errorf("codec: unexpected end of file reading type list")
		}
		if b == 0 {
			r.pos++
			return out, nil
		}
		t, err := readType(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func readType(r *reader) (*ast.Type, error) {
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagObject:
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		return ast.Object(name), nil
	case tagInt:
		return ast.Int(), nil
	case tagChar:
		return ast.Char(), nil
	case tagBool:
		return ast.Bool(), nil
	case tagDouble:
		return ast.Double(), nil
	case tagFunc:
		parts, err := readTypeList(r)
		if err != nil {
			return nil, err
		}
		return ast.Func(parts...), nil
	case tagArray:
		elem, err := readType(r)
		if err != nil {
			return nil, err
		}
		return ast.Array(elem), nil
	case tagMaybe:
		elem, err := readType(r)
		if err != nil {
			return nil, err
		}
		return ast.Maybe(elem), nil
	case tagTuple:
		parts, err := readTypeList(r)
		if err != nil {
			return nil, err
		}
		return ast.Tuple(parts), nil
	case tagSum:
		parts, err := readTypeList(r)
		if err != nil {
			return nil, err
		}
		return ast.Sum(parts), nil
	default:
		return nil, fmt.Errorf("codec: unrecognized type tag %d", tag)
	}
}

func writeSpType(w *writer, s ast.SpType) {
	switch s.Kind {
	case ast.SpRestrict:
		w.byte(tagRestrict)
		writeType(w, s.Base)
		writeLambda(w, s.Pred)
	case ast.SpGen:
		w.byte(tagGen)
		writeType(w, s.Base)
		writeLambda(w, s.Gen)
		w.u64(s.Counter)
	default:
		writeType(w, s.Base)
	}
}

func readSpType(r *reader) (ast.SpType, error) {
	tag, ok := r.peek()
	if !ok {
		return ast.SpType{}, fmt.Errorf("codec: unexpected end of file reading attribute type")
	}
	switch tag {
	case tagRestrict:
		r.pos++
		base, err := readType(r)
		if err != nil {
			return ast.SpType{}, err
		}
		pred, err := readLambda(r)
		if err != nil {
			return ast.SpType{}, err
		}
		return ast.RestrictType(base, pred), nil
	case tagGen:
		r.pos++
		base, err := readType(r)
		if err != nil {
			return ast.SpType{}, err
		}
		gen, err := readLambda(r)
		if err != nil {
			return ast.SpType{}, err
		}
		counter, err := r.u64()
		if err != nil {
			return ast.SpType{}, err
		}
		return ast.GenType(base, gen, counter), nil
	default:
		base, err := readType(r)
		if err != nil {
			return ast.SpType{}, err
		}
		return ast.RegType(base), nil
	}
}
