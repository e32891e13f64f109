package compiler

import (
	"bytes"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

var binarySymbols = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalOr:          "||",
	hclsyntax.OpLogicalAnd:         "&&",
	hclsyntax.OpEqual:              "==",
	hclsyntax.OpNotEqual:           "!=",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
	opCheckedDivide:                "/",
	opCheckedModulo:                "%",
}

var unarySymbols = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalNot: "!",
	hclsyntax.OpNegate:     "-",
}

// format renders expr with canonical spacing. Nested binary and conditional
// operands are always parenthesized, so the output never depends on
// operator precedence. Templates, heredocs included, are rendered as quoted
// templates. Constructs without a canonical form (for and splat expressions,
// templates with a for directive) are copied from src.
func format(src []byte, expr hclsyntax.Expression) string {
	p := &printer{src: src}
	p.expr(expr)
	return p.b.String()
}

type printer struct {
	src []byte
	b   strings.Builder
}

func (p *printer) expr(expr hclsyntax.Expression) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		p.b.Write(hclwrite.TokensForValue(e.Val).Bytes())

	case *hclsyntax.ScopeTraversalExpr:
		p.b.Write(hclwrite.TokensForTraversal(e.Traversal).Bytes())

	case *hclsyntax.RelativeTraversalExpr:
		p.operand(e.Source)
		p.b.Write(hclwrite.TokensForTraversal(e.Traversal).Bytes())

	case *hclsyntax.TemplateExpr:
		if e.IsStringLiteral() {
			p.b.Write(hclwrite.TokensForValue(e.Parts[0].(*hclsyntax.LiteralValueExpr).Val).Bytes())
			return
		}
		p.template(e)

	case *hclsyntax.BinaryOpExpr:
		sym, ok := binarySymbols[e.Op]
		if !ok {
			p.source(e)
			return
		}
		p.operand(e.LHS)
		p.b.WriteString(" " + sym + " ")
		p.operand(e.RHS)

	case *hclsyntax.UnaryOpExpr:
		sym, ok := unarySymbols[e.Op]
		if !ok {
			p.source(e)
			return
		}
		p.b.WriteString(sym)
		if _, nested := e.Val.(*hclsyntax.UnaryOpExpr); nested {
			p.paren(e.Val)
			return
		}
		p.operand(e.Val)

	case *hclsyntax.ParenthesesExpr:
		p.paren(e.Expression)

	case *hclsyntax.ConditionalExpr:
		p.operand(e.Condition)
		p.b.WriteString(" ? ")
		p.operand(e.TrueResult)
		p.b.WriteString(" : ")
		p.operand(e.FalseResult)

	case *hclsyntax.FunctionCallExpr:
		p.b.WriteString(e.Name)
		p.b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(arg)
		}
		if e.ExpandFinal {
			p.b.WriteString("...")
		}
		p.b.WriteByte(')')

	case *hclsyntax.TupleConsExpr:
		p.b.WriteByte('[')
		for i, item := range e.Exprs {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(item)
		}
		p.b.WriteByte(']')

	case *hclsyntax.ObjectConsExpr:
		if len(e.Items) == 0 {
			p.b.WriteString("{}")
			return
		}
		p.b.WriteString("{ ")
		for i, item := range e.Items {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.objectKey(item.KeyExpr)
			p.b.WriteString(" = ")
			p.expr(item.ValueExpr)
		}
		p.b.WriteString(" }")

	case *hclsyntax.IndexExpr:
		p.operand(e.Collection)
		p.b.WriteByte('[')
		p.expr(e.Key)
		p.b.WriteByte(']')

	default:
		p.source(expr)
	}
}

// template writes e as a quoted template. A template holding a for
// directive has no interpolation equivalent and is copied instead; a copied
// heredoc gets back the newline that must follow its closing marker.
func (p *printer) template(e *hclsyntax.TemplateExpr) {
	for _, part := range e.Parts {
		if _, ok := part.(*hclsyntax.TemplateJoinExpr); ok {
			p.source(e)
			if start := e.SrcRange.Start.Byte; start >= 0 && bytes.HasPrefix(p.src[start:], []byte("<<")) {
				p.b.WriteByte('\n')
			}
			return
		}
	}

	p.b.WriteByte('"')
	for _, part := range e.Parts {
		if lit, ok := part.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.String && lit.Val.IsKnown() && !lit.Val.IsNull() {
			p.templateText(lit.Val.AsString())
			continue
		}
		p.b.WriteString("${")
		p.expr(part)
		p.b.WriteByte('}')
	}
	p.b.WriteByte('"')
}

// templateText writes s escaped for a quoted template. A trailing $ or % is
// written as an interpolation so it cannot fuse with a following "${" or
// "%{" into an escape sequence.
func (p *printer) templateText(s string) {
	var tail string
	if n := len(s); n > 0 && (s[n-1] == '$' || s[n-1] == '%') {
		s, tail = s[:n-1], s[n-1:]
	}
	quoted := hclwrite.TokensForValue(cty.StringVal(s)).Bytes()
	p.b.Write(quoted[1 : len(quoted)-1])
	if tail != "" {
		p.b.WriteString(`${"` + tail + `"}`)
	}
}

// operand writes expr, parenthesized when it is itself an operator
// expression.
func (p *printer) operand(expr hclsyntax.Expression) {
	switch expr.(type) {
	case *hclsyntax.BinaryOpExpr, *hclsyntax.ConditionalExpr:
		p.paren(expr)
	default:
		p.expr(expr)
	}
}

func (p *printer) paren(expr hclsyntax.Expression) {
	p.b.WriteByte('(')
	p.expr(expr)
	p.b.WriteByte(')')
}

// objectKey writes an object key. A bare identifier key is a literal
// attribute name; a key forced to be an expression keeps its parentheses.
func (p *printer) objectKey(key hclsyntax.Expression) {
	k, ok := key.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		p.expr(key)
		return
	}
	if _, isParen := k.Wrapped.(*hclsyntax.ParenthesesExpr); k.ForceNonLiteral && !isParen {
		p.paren(k.Wrapped)
		return
	}
	p.expr(k.Wrapped)
}

// source copies the original text of expr.
func (p *printer) source(expr hclsyntax.Expression) {
	r := expr.Range()
	start, end := r.Start.Byte, r.End.Byte
	if start < 0 || end > len(p.src) || start > end {
		return
	}
	p.b.Write(p.src[start:end])
}
