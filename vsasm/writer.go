package vsasm

import (
	"strconv"
	"strings"
)

// Emit renders p as assembly text: the version alias, one alias per global,
// then each function's local aliases, label, instructions and end label.
// Empty option fields fall back to DefaultOptions.
func Emit(p *Program, options Options) string {
	defaults := DefaultOptions()
	if options.VersionAlias == "" {
		options.VersionAlias = defaults.VersionAlias
	}
	if options.Indent == "" {
		options.Indent = defaults.Indent
	}

	w := &writer{options: options}
	w.alias(Variable{
		Name:     options.VersionAlias,
		Register: VersionRegister,
		Value:    &Vec4{0, 0, 0, 0.1},
	})
	for _, v := range p.Globals {
		w.alias(v)
	}
	for _, f := range p.Functions {
		w.function(f)
	}
	return w.out.String()
}

type writer struct {
	options Options
	out     strings.Builder
}

func (w *writer) alias(v Variable) {
	w.out.WriteString(".alias ")
	w.out.WriteString(v.Name)
	w.out.WriteByte(' ')
	w.out.WriteString(v.Register.String())
	switch {
	case v.Semantic != SemanticNone:
		w.out.WriteString(" as ")
		w.out.WriteString(v.Semantic.String())
	case v.Value != nil:
		w.out.WriteString(" as ")
		w.out.WriteString(formatVec4(*v.Value))
	}
	w.out.WriteByte('\n')
}

func (w *writer) function(f *Function) {
	for _, v := range f.Variables {
		w.alias(v)
	}
	w.out.WriteString(f.Name)
	w.out.WriteString(":\n")
	for _, in := range f.Instructions {
		w.instruction(in)
	}
	w.out.WriteString(f.Name)
	w.out.WriteString("_end:\n")
}

func (w *writer) instruction(in Instruction) {
	switch in.Op {
	case OpPlaceholder:
		return
	case OpRaw:
		w.out.WriteString(w.options.Indent)
		w.out.WriteString(in.Raw)
		w.out.WriteByte('\n')
		return
	}

	w.out.WriteString(w.options.Indent)
	w.out.WriteString(in.Op.String())
	operands := [...]Variable{in.Dst, in.Src1, in.Src2}
	for i := 0; i < in.Op.Operands(); i++ {
		if i == 0 {
			w.out.WriteByte(' ')
		} else {
			w.out.WriteString(", ")
		}
		w.out.WriteString(operands[i].Operand())
	}
	w.out.WriteByte('\n')
}

// formatVec4 renders a constant payload as "(x, y, z, w)" using the
// shortest decimal form of each lane.
func formatVec4(v Vec4) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
