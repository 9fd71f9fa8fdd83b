package codec

import (
	"errors"
	"fmt"

	"github.com/relique-lang/relique/internal/ast"
)

var errUnexpectedEOF = errors.New("codec: unexpected end of file")

// Expr tag table, grounded on db_data.rs's binary_write_expr /
// binary_read_expr. Tags 1-20 match the original positions and
// payloads exactly, including folding Dot's right-hand attribute name
// through the same Ident encoding (tag 9) its left operand would use.
// Two deliberate additions beyond the original: tag 7 (NothingLit)
// also carries its element type, since tree.rs's NothingLit is typed
// and the original's bare encoding can't round-trip a Maybe(T); tag 21
// (Ref) exists at all, since the original's own expr tag table has no
// case for it despite tree.rs defining ExprTree::Ref — a stored
// reference value needs some wire shape, or data containing one could
// never be saved.
const (
	tagIntLit    = 1
	tagCharLit   = 2
	tagBoolLit   = 3
	tagDoubleLit = 4
	tagArrayLit  = 5
	tagJustLit   = 6
	tagNothingLit = 7
	tagTupleLit  = 8
	tagIdent     = 9
	tagPlus      = 10
	tagMinus     = 11
	tagMul       = 12
	tagDiv       = 13
	tagMod       = 14
	tagExp       = 15
	tagDot       = 16
	tagCall      = 17
	tagEq        = 18
	tagCmp       = 19
	tagIfExpr    = 20
	tagRef       = 21
)

var binOpTag = map[byte]byte{'+': tagPlus, '-': tagMinus, '*': tagMul, '/': tagDiv, '%': tagMod, '^': tagExp}
var tagBinOp = map[byte]byte{tagPlus: '+', tagMinus: '-', tagMul: '*', tagDiv: '/', tagMod: '%', tagExp: '^'}

func writeExprList(w *writer, nodes []ast.Node) {
	for _, n := range nodes {
		writeExpr(w, n)
	}
	w.byte(0)
}

func readExprList(r *reader) ([]ast.Node, error) {
	var out []ast.Node
	for {
		b, ok := r.peek()
		if !ok {
			return nil, errUnexpectedEOF
		}
		if b == 0 {
			r.pos++
			return out, nil
		}
		n, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

func writeExpr(w *writer, n ast.Node) {
	switch v := n.(type) {
	case *ast.IntLit:
		w.byte(tagIntLit)
		w.i64(v.Value)
	case *ast.CharLit:
		w.byte(tagCharLit)
		w.string(string(v.Value))
	case *ast.BoolLit:
		w.byte(tagBoolLit)
		w.bool(v.Value)
	case *ast.DoubleLit:
		w.byte(tagDoubleLit)
		w.f64(v.Value)
	case *ast.ArrayLit:
		w.byte(tagArrayLit)
		writeExprList(w, v.Elems)
	case *ast.JustLit:
		w.byte(tagJustLit)
		writeExpr(w, v.Value)
	case *ast.NothingLit:
		w.byte(tagNothingLit)
		writeType(w, v.Elem)
	case *ast.TupleLit:
		w.byte(tagTupleLit)
		writeExprList(w, v.Elems)
	case *ast.Ident:
		w.byte(tagIdent)
		w.string(v.Name)
	case *ast.BinOp:
		w.byte(binOpTag[v.Op])
		writeExpr(w, v.Left)
		writeExpr(w, v.Right)
	case *ast.Dot:
		w.byte(tagDot)
		writeExpr(w, v.Left)
		w.byte(tagIdent)
		w.string(v.Attr)
	case *ast.Call:
		w.byte(tagCall)
		writeExpr(w, v.Func)
		writeExprList(w, v.Args)
	case *ast.Eq:
		w.byte(tagEq)
		w.bool(v.Equal)
		writeExpr(w, v.Left)
		writeExpr(w, v.Right)
	case *ast.Cmp:
		w.byte(tagCmp)
		w.bool(v.Greater)
		w.bool(v.NonStrict)
		writeExpr(w, v.Left)
		writeExpr(w, v.Right)
	case *ast.IfExpr:
		w.byte(tagIfExpr)
		writeExpr(w, v.Cond)
		writeExpr(w, v.Then)
		writeExpr(w, v.Else)
	case *ast.Ref:
		w.byte(tagRef)
		w.string(v.Entity)
		w.string(v.Attr)
		writeExpr(w, v.Key)
		w.u64(uint64(v.EntIdx))
		w.u64(uint64(v.RowIdx))
	default:
		panic(fmt.Sprintf("codec: cannot serialize node of type %T", n))
	}
}

func readExpr(r *reader) (ast.Node, error) {
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagIntLit:
		v, err := r.i64()
		if err != nil {
			return nil, err
		}
		return &ast.IntLit{Value: v}, nil
	case tagCharLit:
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		rs := []rune(s)
		if len(rs) == 0 {
			return nil, fmt.Errorf("codec: empty char literal")
		}
		return &ast.CharLit{Value: rs[0]}, nil
	case tagBoolLit:
		b, err := r.boolean()
		if err != nil {
			return nil, err
		}
		return &ast.BoolLit{Value: b}, nil
	case tagDoubleLit:
		f, err := r.f64()
		if err != nil {
			return nil, err
		}
		return &ast.DoubleLit{Value: f}, nil
	case tagArrayLit:
		elems, err := readExprList(r)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elems: elems}, nil
	case tagJustLit:
		v, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		return &ast.JustLit{Value: v}, nil
	case tagNothingLit:
		elem, err := readType(r)
		if err != nil {
			return nil, err
		}
		return &ast.NothingLit{Elem: elem}, nil
	case tagTupleLit:
		elems, err := readExprList(r)
		if err != nil {
			return nil, err
		}
		return &ast.TupleLit{Elems: elems}, nil
	case tagIdent:
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		return &ast.Ident{Name: s}, nil
	case tagPlus, tagMinus, tagMul, tagDiv, tagMod, tagExp:
		left, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		right, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Op: tagBinOp[tag], Left: left, Right: right}, nil
	case tagDot:
		left, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		rhs, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		ident, ok := rhs.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("codec: Dot's right operand must be an identifier")
		}
		return &ast.Dot{Left: left, Attr: ident.Name}, nil
	case tagCall:
		fn, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		args, err := readExprList(r)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Func: fn, Args: args}, nil
	case tagEq:
		eq, err := r.boolean()
		if err != nil {
			return nil, err
		}
		left, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		right, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		return &ast.Eq{Equal: eq, Left: left, Right: right}, nil
	case tagCmp:
		gr, err := r.boolean()
		if err != nil {
			return nil, err
		}
		ns, err := r.boolean()
		if err != nil {
			return nil, err
		}
		left, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		right, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		return &ast.Cmp{Greater: gr, NonStrict: ns, Left: left, Right: right}, nil
	case tagIfExpr:
		cond, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		then, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		els, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: then, Else: els}, nil
	case tagRef:
		entity, err := r.string()
		if err != nil {
			return nil, err
		}
		attr, err := r.string()
		if err != nil {
			return nil, err
		}
		key, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		entIdx, err := r.u64()
		if err != nil {
			return nil, err
		}
		rowIdx, err := r.u64()
		if err != nil {
			return nil, err
		}
		return &ast.Ref{Entity: entity, Attr: attr, Key: key, EntIdx: int(entIdx), RowIdx: int(rowIdx), Resolved: true}, nil
	default:
		return nil, fmt.Errorf("codec: unrecognized expr tag %d", tag)
	}
}
