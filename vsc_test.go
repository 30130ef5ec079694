package vsc

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/vsc/gles"
	"github.com/gogpu/vsc/vsasm"
)

// TestCompilePassThrough tests a shader that copies its inputs to its outputs.
func TestCompilePassThrough(t *testing.T) {
	source := `
uniform vec4 tint;
void main() {
    gl_Position = gl_Vertex;
    gl_FrontColor = tint;
}
`
	res, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := `.alias CompilerVersion c95 as (0, 0, 0, 0.1)
.alias gl_Position o0 as position
.alias gl_FrontColor o1 as color
.alias gl_Vertex v0
.alias gl_Color v1
.alias gl_ModelViewProjectionMatrix c0
.alias tint c4
main:
 mov gl_Position, gl_Vertex
 mov gl_FrontColor, tint
main_end:
`
	if res.Assembly != want {
		t.Errorf("got:\n%s\nwant:\n%s", res.Assembly, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Info.Functions) != 1 || res.Info.Functions[0] != "main" {
		t.Errorf("unexpected functions %v", res.Info.Functions)
	}
}

// TestCompileParseError tests that syntax errors keep their type and position.
func TestCompileParseError(t *testing.T) {
	_, err := Compile("void main() {\n    x = ;\n}")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "parse error: ") {
		t.Errorf("expected parse error prefix, got %q", err)
	}
	var pe *gles.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *gles.ParseError, got %T", err)
	}
	if pos := pe.Pos(); pos.Line != 2 || pos.Column != 9 {
		t.Errorf("expected 2:9, got %s", pos)
	}
}

// TestCompileCodegenError tests that code generation errors keep their kind.
func TestCompileCodegenError(t *testing.T) {
	_, err := Compile("void main() { gl_Position = missing; }")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "codegen error: vsasm: ") {
		t.Errorf("unexpected message %q", err)
	}
	var ve *vsasm.Error
	if !errors.As(err, &ve) || !ve.IsUnresolvedSymbol() {
		t.Errorf("expected UnresolvedSymbol, got %v", err)
	}
}

// TestCompileWarnings tests that builder and generator warnings are merged.
func TestCompileWarnings(t *testing.T) {
	source := `
varying vec4 color;
void main() {
    gl_Position = gl_Vertex + gl_Color;
}
`
	res, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0].Message, "operator + is not supported") {
		t.Errorf("expected the builder warning first, got %s", res.Warnings[0])
	}
	if !strings.Contains(res.Warnings[1].Message, `"color" is neither attribute nor uniform`) {
		t.Errorf("expected the generator warning second, got %s", res.Warnings[1])
	}
	if !strings.Contains(res.Assembly, "main:\nmain_end:\n") {
		t.Errorf("expected an empty main, got\n%s", res.Assembly)
	}
}

// TestCompileWarningsAsErrors tests promotion of warnings to a failure.
func TestCompileWarningsAsErrors(t *testing.T) {
	opts := DefaultCompileOptions()
	opts.WarningsAsErrors = true

	res, err := CompileWithOptions("varying vec4 color;\nvoid main() {}", opts)
	var we *WarningsError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WarningsError, got %v", err)
	}
	if len(we.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(we.Warnings))
	}
	if !strings.HasPrefix(err.Error(), "1 warning treated as error: 1:14: ") {
		t.Errorf("unexpected message %q", err)
	}
	if res == nil || res.Assembly == "" {
		t.Error("the result should still be returned")
	}

	if _, err := CompileWithOptions("void main() {}", opts); err != nil {
		t.Errorf("clean shader failed: %v", err)
	}
}

// TestCompileOptions tests that assembly options reach the emitter.
func TestCompileOptions(t *testing.T) {
	opts := DefaultCompileOptions()
	opts.Asm.VersionAlias = "ShaderVersion"
	res, err := CompileWithOptions("void main() {}", opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.HasPrefix(res.Assembly, ".alias ShaderVersion c95") {
		t.Errorf("unexpected header in\n%s", res.Assembly)
	}
}

// TestStages tests the pipeline stages one by one.
func TestStages(t *testing.T) {
	tree, err := Parse("void main() { float x = 2.0; }")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root, warnings := Build(tree)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if got, want := root.Children[0].String(),
		"(function main :void (none) (variable x :float [declare] (float literal 2)))"; got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	text, info, err := Generate(root, vsasm.DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if info.TempRegisters != 1 {
		t.Errorf("expected one temp, got %d", info.TempRegisters)
	}
	if !strings.Contains(text, ".alias main_x r0\nmain:\n mov main_x, Anonymous_float_c4\nmain_end:\n") {
		t.Errorf("unexpected assembly\n%s", text)
	}
}
