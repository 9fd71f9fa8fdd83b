package ast

import (
	"strconv"
	"strings"
)

// Print renders an evaluated Node the way `eval` prints its result,
// grounded on the original's ToString for ExprTree: scalars print
// natively, an all-Char array prints as a quoted string, other
// composites print structurally, and anything without a sensible
// textual form (a lambda, an unresolved Ref) prints as the empty
// string.
func Print(n Node) string {
	switch v := n.(type) {
	case *IntLit:
		return strconv.FormatInt(v.Value, 10)
	case *BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *CharLit:
		return string(v.Value)
	case *DoubleLit:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *NothingLit:
		return "Nothing"
	case *JustLit:
		return "Just(" + Print(v.Value) + ")"
	case *ArrayLit:
		if allChars(v.Elems) {
			var b strings.Builder
			b.WriteByte('"')
			for _, e := range v.Elems {
				b.WriteRune(e.(*CharLit).Value)
			}
			b.WriteByte('"')
			return b.String()
		}
		return "[" + joinPrinted(v.Elems, ", ") + "]"
	case *TupleLit:
		return "(" + joinPrinted(v.Elems, ", ") + ")"
	default:
		return ""
	}
}

func allChars(ns []Node) bool {
	if len(ns) == 0 {
		return false
	}
	for _, n := range ns {
		if _, ok := n.(*CharLit); !ok {
			return false
		}
	}
	return true
}

func joinPrinted(ns []Node, sep string) string {
	var b strings.Builder
	for i, n := range ns {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(Print(n))
	}
	return b.String()
}
