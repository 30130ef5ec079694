package vsasm

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/vsc/ast"
	"github.com/gogpu/vsc/gles"
)

func compileSource(t *testing.T, source string, options Options) string {
	t.Helper()
	tree, err := gles.Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root, _ := ast.Build(tree)
	text, _, err := Compile(root, options)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return text
}

func TestEmit(t *testing.T) {
	got := compileSource(t, `
float half(float v) {
    return v / 2.0;
}
`, DefaultOptions())

	want := `.alias CompilerVersion c95 as (0, 0, 0, 0.1)
.alias gl_Position o0 as position
.alias gl_FrontColor o1 as color
.alias gl_Vertex v0
.alias gl_Color v1
.alias gl_ModelViewProjectionMatrix c0
.alias Anonymous_float_c4 c4 as (2, 2, 2, 2)
.alias half_v r0
half:
 rcp r1, Anonymous_float_c4
 mul r1, r1, half_v
 mov r15, r1
half_end:
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitOptions(t *testing.T) {
	got := compileSource(t, "void main() { gl_Position = gl_Vertex; }", Options{
		VersionAlias: "MyVersion",
		Indent:       "\t",
	})
	if !strings.HasPrefix(got, ".alias MyVersion c95 as (0, 0, 0, 0.1)\n") {
		t.Errorf("unexpected header in\n%s", got)
	}
	if !strings.Contains(got, "main:\n\tmov gl_Position, gl_Vertex\nmain_end:\n") {
		t.Errorf("unexpected body in\n%s", got)
	}
}

func TestEmitZeroOptions(t *testing.T) {
	got := compileSource(t, "void main() { gl_Position = gl_Vertex; }", Options{})
	if !strings.Contains(got, ".alias CompilerVersion c95") || !strings.Contains(got, "\n mov gl_Position, gl_Vertex\n") {
		t.Errorf("zero options should fall back to defaults, got\n%s", got)
	}
}

func TestEmitInstructions(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		want string
	}{
		{"placeholder", Instruction{Op: OpPlaceholder, Dst: Variable{Name: "x"}}, ""},
		{"mov", Instruction{Op: OpMov, Dst: Variable{Name: "a"}, Src1: Variable{Register: Register{ClassInput, 0}}}, " mov a, v0\n"},
		{"mul", Instruction{Op: OpMul, Dst: Variable{Name: "a"}, Src1: Variable{Name: "b"}, Src2: Variable{Name: "c"}}, " mul a, b, c\n"},
		{"nop", Instruction{Op: OpNop}, " nop\n"},
		{"end", Instruction{Op: OpEnd}, " end\n"},
		{"raw", Instruction{Op: OpRaw, Raw: "dp4 a, b, c"}, " dp4 a, b, c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &writer{options: DefaultOptions()}
			w.instruction(tt.in)
			if got := w.out.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatVec4(t *testing.T) {
	tests := []struct {
		v    Vec4
		want string
	}{
		{Vec4{0, 0, 0, 0.1}, "(0, 0, 0, 0.1)"},
		{Vec4{1, 0.5, 0.25, 1}, "(1, 0.5, 0.25, 1)"},
		{Broadcast(-2), "(-2, -2, -2, -2)"},
	}
	for _, tt := range tests {
		if got := formatVec4(tt.v); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestParseAliasesRoundTrip(t *testing.T) {
	text := compileSource(t, `
uniform vec4 tint;
void main() {
    float x = 0.5;
    gl_FrontColor = vec4(1.0, 0.5, 0.25, 1.0);
}
`, DefaultOptions())

	aliases, err := ParseAliases(text)
	if err != nil {
		t.Fatalf("ParseAliases: %v", err)
	}
	byName := make(map[string]Alias)
	for _, a := range aliases {
		byName[a.Name] = a
	}

	if v := byName["CompilerVersion"]; v.Register != VersionRegister || v.Value == nil || *v.Value != (Vec4{0, 0, 0, 0.1}) {
		t.Errorf("unexpected version alias %+v", v)
	}
	if p := byName["gl_Position"]; p.Register != (Register{ClassOutput, 0}) || p.Semantic != SemanticPosition {
		t.Errorf("unexpected gl_Position alias %+v", p)
	}
	if u := byName["tint"]; u.Register != (Register{ClassConstant, 4}) || u.Value != nil {
		t.Errorf("unexpected uniform alias %+v", u)
	}
	if x := byName["main_x"]; x.Register != (Register{ClassTemp, 0}) {
		t.Errorf("unexpected local alias %+v", x)
	}
	if c := byName["Anonymous_vec4_c6"]; c.Value == nil || *c.Value != (Vec4{1, 0.5, 0.25, 1}) {
		t.Errorf("unexpected constant alias %+v", c)
	}
	if len(aliases) != 10 {
		t.Errorf("expected 10 aliases, got %d", len(aliases))
	}
}

func TestParseAliasesInfinity(t *testing.T) {
	aliases, err := ParseAliases(".alias far c1 as (+Inf, -Inf, 0, 1)\n.alias Info c2")
	if err != nil {
		t.Fatalf("ParseAliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(aliases))
	}
	v := aliases[0].Value
	if v == nil || !math.IsInf(float64(v[0]), 1) || !math.IsInf(float64(v[1]), -1) || v[3] != 1 {
		t.Errorf("unexpected lanes %v", v)
	}
	if aliases[1].Name != "Info" || aliases[1].Register != (Register{ClassConstant, 2}) {
		t.Errorf("unexpected alias %+v", aliases[1])
	}
}

func TestParseAliasesErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		substr string
	}{
		{"missing register", ".alias x", "line 1: "},
		{"bad register", "main:\n.alias x q1", `line 2: invalid register "q1"`},
		{"bad binding", ".alias x o0 as elbow", "unknown output binding"},
		{"short constant", ".alias x c1 as (1, 2, 3)", "has 3 lanes"},
		{"unterminated constant", ".alias x c1 as (1, 2, 3, 4", "line 1: "},
		{"bad lane", ".alias x c1 as (1, 2, y, 4)", "line 1: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAliases(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not contain %q", err, tt.substr)
			}
		})
	}
}
