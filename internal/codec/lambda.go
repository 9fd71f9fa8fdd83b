package codec

import "github.com/relique-lang/relique/internal/ast"

// Lambda serialization grounds on db_data.rs's binary_write_lambda: a
// NUL-terminated (name, type) parameter list followed by the body
// expression. The original stops there, which silently drops a
// lambda's self-name and declared return type on every round trip —
// fine for a non-recursive default, but it would corrupt a recursive
// one (spec.md's named-lambda recursion, see internal/evaluator). This
// codec instead writes a presence byte followed by (self-name,
// return-type) when set, so a recursive default/Gen/Restrict lambda
// reads back intact.
func writeLambda(w *writer, l *ast.Lambda) {
	for _, p := range l.Params {
		w.string(p.Name)
		writeType(w, p.Type)
	}
	w.byte(0)
	if l.SelfName != nil {
		w.byte(1)
		w.string(*l.SelfName)
		writeType(w, l.ReturnType)
	} else {
		w.byte(0)
	}
	writeExpr(w, l.Body)
}

func readLambda(r *reader) (*ast.Lambda, error) {
	var params []ast.Param
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
		typ, err := readType(r)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name, Type: typ})
	}

	hasSelf, err := r.boolean()
	if err != nil {
		return nil, err
	}
	var selfName *string
	var retType *ast.Type
	if hasSelf {
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		selfName = &name
		retType, err = readType(r)
		if err != nil {
			return nil, err
		}
	}

	body, err := readExpr(r)
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{SelfName: selfName, Params: params, ReturnType: retType, Body: body}, nil
}
