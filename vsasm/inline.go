package vsasm

import (
	"strings"

	"github.com/gogpu/vsc/ast"
	"github.com/gogpu/vsc/gles"
)

// inlineAsm lowers asm("mnemonic operands...", args...).
//
// The template is tokenized with the shader lexer. Operands are separated
// by optional commas, and a comma with nothing before it stands for an
// empty operand, so "mov, @0" moves into nothing. "@N" stands for the N-th
// argument after the template, counting from @0. Templates written for
// tools that count the template itself as argument 0 must lower every
// index by one. Any other identifier is looked up as a variable or read as
// a physical register name. Known mnemonics reject extra operands and
// leave missing ones empty; unknown ones are passed through as text.
func (g *generator) inlineAsm(n *ast.Node) (Instruction, error) {
	if len(n.Children) == 0 || n.Children[0].Kind != ast.KindStringLiteral {
		return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos, "asm needs a string template as its first argument")
	}
	template := n.Children[0].Name
	args := n.Children[1:]

	lex := gles.NewLexer(template)
	head := lex.Next()
	if head.Kind != gles.TokenIdent {
		return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos, "asm template %q does not start with a mnemonic", template)
	}

	var operands []Variable
	filled := false
	for {
		tok := lex.Next()
		if tok.Kind == gles.TokenEOF {
			break
		}
		if tok.Kind == gles.TokenComma {
			// A comma with no operand before it leaves that slot empty.
			if !filled {
				operands = append(operands, Variable{})
			}
			filled = false
			continue
		}

		var v Variable
		switch tok.Kind {
		case gles.TokenAt:
			index := lex.Next()
			if index.Kind != gles.TokenIntLiteral {
				return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos, "expected argument index after @ in %q", template)
			}
			if index.Int < 0 || index.Int >= int64(len(args)) {
				return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos,
					"@%d in %q has no matching argument (%d given)", index.Int, template, len(args))
			}
			res, err := g.lower(args[index.Int])
			if err != nil {
				return Instruction{}, err
			}
			release := g.hold(res.Dst)
			defer release()
			v = res.Dst

		case gles.TokenIdent:
			var ok bool
			if v, ok = g.fn.Lookup(tok.Text); !ok {
				r, isRegister := ParseRegister(tok.Text)
				if !isRegister {
					return Instruction{}, errorAt(ErrUnresolvedSymbol, n.Pos, "unresolved symbol %q in asm template", tok.Text)
				}
				v = Variable{Register: r}
			}

		default:
			return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos, "unexpected %q in asm template %q", tok.Text, template)
		}
		operands = append(operands, v)
		filled = true
	}

	op, known := LookupOpcode(head.Text)
	if !known {
		names := make([]string, len(operands))
		for i, v := range operands {
			names[i] = v.Operand()
		}
		raw := head.Text
		if len(names) > 0 {
			raw += " " + strings.Join(names, ", ")
		}
		in := Instruction{Op: OpRaw, Raw: raw}
		if len(operands) > 0 {
			in.Dst = operands[0]
		}
		return g.fn.emit(in), nil
	}

	switch want := op.Operands(); {
	case len(operands) > want:
		return Instruction{}, errorAt(ErrInvalidInlineAsm, n.Pos,
			"%s takes %d operands, got %d", op, want, len(operands))
	case len(operands) < want:
		g.warn(n.Pos, "%s takes %d operands, got %d; the rest are left empty", op, want, len(operands))
	}
	in := Instruction{Op: op}
	slots := []*Variable{&in.Dst, &in.Src1, &in.Src2}
	for i, v := range operands {
		*slots[i] = v
	}
	return g.fn.emit(in), nil
}
