package parser

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/galacean/engine-sub008/internal/cst"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

// dump renders a CST in a compact s-expression form: rules in parentheses,
// tokens by their source text, children in source order.
func dump(el cst.Element) string {
	switch v := el.(type) {
	case *cst.Token:
		return v.Image
	case *cst.Node:
		var children []cst.Element
		for _, label := range v.Labels() {
			children = append(children, v.Children[label]...)
		}
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].Pos().Before(children[j].Pos())
		})
		parts := []string{v.Rule}
		for _, c := range children {
			parts = append(parts, dump(c))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "?"
}

// wrapPass places body inside a single pass.
func wrapPass(body string) string {
	return "Shader \"s\" {\nSubShader \"sub\" {\nPass \"p\" {\n" + body + "\n}\n}\n}"
}

func parseOK(t *testing.T, input string) *cst.Node {
	t.Helper()
	root, errs := New(input).Parse()
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v\ninput:\n%s", errs, input)
	}
	return root
}

// passItems returns the Global and Property children of the only pass.
func passItems(t *testing.T, input string) (globals, props []*cst.Node) {
	t.Helper()
	root := parseOK(t, wrapPass(input))
	pass := root.Node(cst.LabelSubShader).Node(cst.LabelPass)
	return pass.Nodes(cst.LabelGlobal), pass.Nodes(cst.LabelProperty)
}

// expectGlobal parses a single pass-level global and compares its dump.
func expectGlobal(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		globals, _ := passItems(t, input)
		if len(globals) != 1 {
			t.Fatalf("expected 1 global, got %d", len(globals))
		}
		if actual := dump(globals[0]); actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectStmt parses a statement inside a function body.
func expectStmt(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		globals, _ := passItems(t, "void f() {\n"+input+"\n}")
		stmts := globals[0].Node(cst.LabelBody).Nodes(cst.LabelStmt)
		if len(stmts) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(stmts))
		}
		if actual := dump(stmts[0]); actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectParseError verifies that parsing produces an error containing the substring.
func expectParseError(t *testing.T, input string, errorSubstring string) {
	t.Helper()
	t.Run(input+"_error", func(t *testing.T) {
		t.Helper()
		_, errs := New(input).Parse()
		if len(errs) == 0 {
			t.Errorf("expected parse error containing %q, got none", errorSubstring)
			return
		}
		for _, err := range errs {
			if strings.Contains(err.Message, errorSubstring) {
				return
			}
		}
		t.Errorf("expected error containing %q, got: %v", errorSubstring, errs)
	})
}

// ----------------------------------------------------------------------------
// Shader Structure
// ----------------------------------------------------------------------------

func TestShaderStructure(t *testing.T) {
	root := parseOK(t, `Shader "Water" {
  SubShader "Default" {
    Tags { ReplacementTag = "Opaque", pipelineStage = "Forward" }
    Pass "Forward" {
      Tags { LightMode = "Forward" }
    }
    UsePass "pbr/Default/Forward"
  }
}`)

	if root.Rule != cst.RuleShader || root.Token(cst.LabelName).Value != "Water" {
		t.Fatalf("unexpected root %s", dump(root))
	}
	sub := root.Node(cst.LabelSubShader)
	if sub.Token(cst.LabelName).Value != "Default" {
		t.Errorf("subshader name: got %q", sub.Token(cst.LabelName).Value)
	}
	entries := sub.Node(cst.LabelTags).Nodes(cst.LabelEntry)
	if len(entries) != 2 {
		t.Fatalf("expected 2 tag entries, got %d", len(entries))
	}
	if entries[1].Token(cst.LabelKey).Image != "pipelineStage" || entries[1].Token(cst.LabelValue).Value != "Forward" {
		t.Errorf("unexpected tag entry %s", dump(entries[1]))
	}

	passes := sub.Nodes(cst.LabelPass)
	if len(passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(passes))
	}
	if passes[0].Rule != cst.RulePass || passes[1].Rule != cst.RuleUsePass {
		t.Errorf("unexpected pass rules %s, %s", passes[0].Rule, passes[1].Rule)
	}
	if passes[1].Token(cst.LabelPath).Value != "pbr/Default/Forward" {
		t.Errorf("unexpected use-pass path %q", passes[1].Token(cst.LabelPath).Value)
	}
}

func TestRootRange(t *testing.T) {
	root := parseOK(t, "Shader \"a\" {\n}")
	if root.Location.Start.Line != 1 || root.Location.Start.Column != 1 {
		t.Errorf("unexpected start %+v", root.Location.Start)
	}
	if root.Location.End.Line != 2 || root.Location.End.Column != 2 {
		t.Errorf("unexpected end %+v", root.Location.End)
	}
}

// ----------------------------------------------------------------------------
// Pass Properties
// ----------------------------------------------------------------------------

func TestPassProperties(t *testing.T) {
	globals, props := passItems(t, `
BlendState customBlend { Enabled = true; }
VertexShader = vert;
FragmentShader = frag;
RenderQueueType = Transparent;
BlendState = customBlend;
RasterState { CullMode = CullMode.Off; }`)

	if len(globals) != 1 || globals[0].Rule != cst.RuleRenderStateDecl {
		t.Fatalf("expected the named block as the only global, got %d", len(globals))
	}

	expected := []string{
		"(ShaderAssign VertexShader vert)",
		"(ShaderAssign FragmentShader frag)",
		"(RenderQueueAssign RenderQueueType (Ident Transparent))",
		"(RenderStateAssign BlendState customBlend)",
		"(RenderStateDecl RasterState (RenderStateProp CullMode (Member (Ident CullMode) Off)))",
	}
	if len(props) != len(expected) {
		t.Fatalf("expected %d properties, got %d", len(expected), len(props))
	}
	for i, exp := range expected {
		if actual := dump(props[i]); actual != exp {
			t.Errorf("property %d:\nexpected: %s\nactual:   %s", i, exp, actual)
		}
	}
}

func TestRenderStateIndexedProperty(t *testing.T) {
	_, props := passItems(t, `BlendState {
  Enabled[1] = true;
  SourceColorBlendFactor = material_SrcBlend;
  BlendColor = Color(1.0, 0.5, 0.0, 1.0);
}`)
	expectedProps := []string{
		"(RenderStateProp Enabled 1 (Literal true))",
		"(RenderStateProp SourceColorBlendFactor (Ident material_SrcBlend))",
		"(RenderStateProp BlendColor (Call (Ident Color) (Literal 1.0) (Literal 0.5) (Literal 0.0) (Literal 1.0)))",
	}
	items := props[0].Nodes(cst.LabelProp)
	if len(items) != len(expectedProps) {
		t.Fatalf("expected %d props, got %d", len(expectedProps), len(items))
	}
	for i, exp := range expectedProps {
		if actual := dump(items[i]); actual != exp {
			t.Errorf("prop %d:\nexpected: %s\nactual:   %s", i, exp, actual)
		}
	}
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func TestDeclarations(t *testing.T) {
	expectGlobal(t, "vec4 u_color;", "(VarDecl (TypeSpec vec4) (Declarator u_color))")
	expectGlobal(t, "const float PI = 3.14;", "(VarDecl const (TypeSpec float) (Declarator PI (Literal 3.14)))")
	expectGlobal(t, "uniform mediump sampler2D tex;", "(VarDecl uniform (TypeSpec mediump sampler2D) (Declarator tex))")
	expectGlobal(t, "vec3 lights[4];", "(VarDecl (TypeSpec vec3) (Declarator lights (Literal 4)))")
	expectGlobal(t, "float a, b = 1.0;", "(VarDecl (TypeSpec float) (Declarator a) (Declarator b (Literal 1.0)))")
	expectGlobal(t, "precision highp float;", "(PrecisionDecl precision highp (TypeSpec float))")
	expectGlobal(t, "struct V { vec2 uv; vec3 n, t; };",
		"(StructDecl struct V (Field (TypeSpec vec2) (Declarator uv)) (Field (TypeSpec vec3) (Declarator n) (Declarator t)))")
}

func TestFunctionDeclaration(t *testing.T) {
	expectGlobal(t, "vec3 shade(in vec3 n, inout float k) { return n; }",
		"(FunctionDecl (TypeSpec vec3) shade (Param in (TypeSpec vec3) n) (Param inout (TypeSpec float) k) "+
			"(Block (ReturnStmt return (Ident n))))")
	expectGlobal(t, "void main(void) {}", "(FunctionDecl (TypeSpec void) main (Block))")
	expectGlobal(t, "float f(float x);", "(FunctionDecl (TypeSpec float) f (Param (TypeSpec float) x))")
}

// ----------------------------------------------------------------------------
// Statements and Expressions
// ----------------------------------------------------------------------------

func TestStatements(t *testing.T) {
	expectStmt(t, "vec4 c = vec4(1.0);", "(DeclStmt (VarDecl (TypeSpec vec4) (Declarator c (Call (Ident vec4) (Literal 1.0)))))")
	expectStmt(t, "Varyings v;", "(DeclStmt (VarDecl (TypeSpec Varyings) (Declarator v)))")
	expectStmt(t, "v.uv = uv;", "(ExprStmt (Assign (Member (Ident v) uv) = (Ident uv)))")
	expectStmt(t, "if (a) b(); else c();",
		"(IfStmt if (Ident a) (ExprStmt (Call (Ident b))) (ExprStmt (Call (Ident c))))")
	expectStmt(t, "for (int i = 0; i < 4; i++) {}",
		"(ForStmt for (DeclStmt (VarDecl (TypeSpec int) (Declarator i (Literal 0)))) "+
			"(Binary (Ident i) < (Literal 4)) (Postfix (Ident i) ++) (Block))")
	expectStmt(t, "for (;;) break;", "(ForStmt for (JumpStmt break))")
	expectStmt(t, "while (x) discard;", "(WhileStmt while (Ident x) (JumpStmt discard))")
	expectStmt(t, "do { x--; } while (x > 0);",
		"(DoWhileStmt do (Block (ExprStmt (Postfix (Ident x) --))) (Binary (Ident x) > (Literal 0)))")
	expectStmt(t, "return;", "(ReturnStmt return)")
	expectStmt(t, ";", "(ExprStmt)")
}

func TestExpressionPrecedence(t *testing.T) {
	expectStmt(t, "x = a + b * c;", "(ExprStmt (Assign (Ident x) = (Binary (Ident a) + (Binary (Ident b) * (Ident c)))))")
	expectStmt(t, "x = a || b ^^ c && d;",
		"(ExprStmt (Assign (Ident x) = (Binary (Ident a) || (Binary (Ident b) ^^ (Binary (Ident c) && (Ident d))))))")
	expectStmt(t, "x = a < b == c;",
		"(ExprStmt (Assign (Ident x) = (Binary (Binary (Ident a) < (Ident b)) == (Ident c))))")
	expectStmt(t, "x = c ? a : b;", "(ExprStmt (Assign (Ident x) = (Ternary (Ident c) (Ident a) (Ident b))))")
	expectStmt(t, "x = -m[1].xy;", "(ExprStmt (Assign (Ident x) = (Unary - (Member (Index (Ident m) (Literal 1)) xy))))")
	expectStmt(t, "x += (a, b);", "(ExprStmt (Assign (Ident x) += (Paren (Sequence (Ident a) , (Ident b)))))")
	expectStmt(t, "a = b = c;", "(ExprStmt (Assign (Ident a) = (Assign (Ident b) = (Ident c))))")
}

// ----------------------------------------------------------------------------
// Macros
// ----------------------------------------------------------------------------

func TestDefine(t *testing.T) {
	expectGlobal(t, "#define PI 3.14", "(MacroDefine #define PI (Literal 3.14))")
	expectGlobal(t, "#define HAS_NORMAL", "(MacroDefine #define HAS_NORMAL)")
	expectGlobal(t, "#define FOO bar()", "(MacroDefine #define FOO (Call (Ident bar)))")
	expectGlobal(t, "#define MUL(a, b) a * b", "(MacroDefine #define MUL ( a b (Binary (Ident a) * (Ident b)))")
	// A space before the parenthesis makes it part of the value.
	expectGlobal(t, "#define X (1)", "(MacroDefine #define X (Paren (Literal 1)))")
	expectGlobal(t, "#define SWAP(t) { t x; }", "(MacroDefine #define SWAP ( t { t x; })")
}

func TestOtherDirectives(t *testing.T) {
	expectGlobal(t, "#undef PI", "(MacroUndef #undef PI)")
	expectGlobal(t, `#include "Common.glsl"`, `(MacroInclude #include "Common.glsl")`)
	expectGlobal(t, "#extension GL_OES_standard_derivatives : enable",
		"(MacroRaw #extension GL_OES_standard_derivatives : enable)")
}

func TestConditionalGlobals(t *testing.T) {
	expectGlobal(t, "#ifdef HAS_UV\nvec2 u_offset;\n#elif defined(X) && Y > 1\nfloat k;\n#else\nfloat j;\n#endif",
		"(MacroConditional #ifdef HAS_UV HAS_UV (VarDecl (TypeSpec vec2) (Declarator u_offset)) "+
			"(MacroBranch #elif defined defined(X) && Y > 1 X Y (VarDecl (TypeSpec float) (Declarator k))) "+
			"(MacroBranch #else (VarDecl (TypeSpec float) (Declarator j))) #endif)")
}

func TestConditionalStatementsAndFields(t *testing.T) {
	expectStmt(t, "#ifdef FOO\nx = 1;\n#endif",
		"(MacroConditional #ifdef FOO FOO (ExprStmt (Assign (Ident x) = (Literal 1))) #endif)")
	expectGlobal(t, "struct A {\n#ifdef FOO\n  vec2 uv;\n#endif\n};",
		"(StructDecl struct A (MacroConditional #ifdef FOO FOO (Field (TypeSpec vec2) (Declarator uv)) #endif))")
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func TestParseErrors(t *testing.T) {
	expectParseError(t, `Pass "x" {}`, "expected Shader")
	expectParseError(t, `Shader "a" { SubShader "b" { Pass "c" { vec4 x } } }`, "expected ;")
	expectParseError(t, `Shader "a" { VertexShader = v; }`, "only allowed inside a Pass")
	expectParseError(t, `Shader "a" { BlendState { Enabled = true; } }`, "must be named")
	expectParseError(t, wrapPass("#endif"), "without matching #if")
	expectParseError(t, wrapPass("#ifdef A\nfloat x;"), "expected #endif")
	expectParseError(t, wrapPass("float x = $;"), "unexpected character")
	expectParseError(t, `Shader "a" {} extra`, "after shader body")
}

func TestMultipleErrorsCollected(t *testing.T) {
	_, errs := New(wrapPass("vec4 a\nvoid f() { x = ; }\n")).Parse()
	if len(errs) < 2 {
		t.Fatalf("expected several errors, got %v", errs)
	}
}

func TestParseSourceErrorList(t *testing.T) {
	_, err := ParseSource(`Shader "a" { vec4 }`)
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %T", err)
	}
	if list[0].Line != 1 || list[0].Column != 19 {
		t.Errorf("unexpected position %d:%d", list[0].Line, list[0].Column)
	}
}
