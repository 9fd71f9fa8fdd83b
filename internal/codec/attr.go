package codec

import "github.com/relique-lang/relique/internal/ast"

// Attr flag byte, grounded on db_data.rs: 0 None, 1 Computable,
// 2 Global, 3 — the original's own binary format names this variant
// "Primary" even though tree.rs's in-memory AttrFlag calls it "Unique";
// this codec keeps the session's "Unique" naming and only reuses the
// original's byte value.
const (
	flagNone       = 0
	flagComputable = 1
	flagGlobal     = 2
	flagUnique     = 3
)

func writeAttr(w *writer, a ast.Attr) {
	w.string(a.Name)
	writeSpType(w, a.Type)
	if a.Default != nil {
		w.byte(1)
		writeLambda(w, a.Default)
	} else {
		w.byte(0)
	}
	switch a.Flag {
	case ast.FlagComputable:
		w.byte(flagComputable)
	case ast.FlagGlobal:
		w.byte(flagGlobal)
	case ast.FlagUnique:
		w.byte(flagUnique)
	default:
		w.byte(flagNone)
	}
}

func readAttr(r *reader) (ast.Attr, error) {
	name, err := r.string()
	if err != nil {
		return ast.Attr{}, err
	}
	typ, err := readSpType(r)
	if err != nil {
		return ast.Attr{}, err
	}
	hasDefault, err := r.byte()
	if err != nil {
		return ast.Attr{}, err
	}
	var def *ast.Lambda
	if hasDefault == 1 {
		def, err = readLambda(r)
		if err != nil {
			return ast.Attr{}, err
		}
	}
	flagByte, err := r.byte()
	if err != nil {
		return ast.Attr{}, err
	}
	var flag ast.AttrFlag
	switch flagByte {
	case flagComputable:
		flag = ast.FlagComputable
	case flagGlobal:
		flag = ast.FlagGlobal
	case flagUnique:
		flag = ast.FlagUnique
	default:
		flag = ast.FlagNone
	}
	return ast.Attr{Name: name, Type: typ, Default: def, Flag: flag}, nil
}
