package runtime

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/diagnostic"
	"github.com/galacean/engine-sub008/internal/parser"
	"github.com/galacean/engine-sub008/internal/test"
	"github.com/galacean/engine-sub008/internal/visitor"
	"github.com/galacean/engine-sub008/pkg/engine"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func buildShader(t *testing.T, source string) *ast.Shader {
	t.Helper()
	root, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	shader, err := visitor.Build(root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return shader
}

func compile(t *testing.T, source string, opts Options) (*ShaderInfo, *Context) {
	t.Helper()
	c := New(opts)
	info, err := c.Parse(buildShader(t, source))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return info, c
}

func firstPass(t *testing.T, info *ShaderInfo) *PassInfo {
	t.Helper()
	if len(info.SubShaders) == 0 || len(info.SubShaders[0].Passes) == 0 {
		t.Fatalf("expected at least one pass")
	}
	pass, ok := info.SubShaders[0].Passes[0].(*PassInfo)
	if !ok {
		t.Fatalf("expected *PassInfo, got %T", info.SubShaders[0].Passes[0])
	}
	return pass
}

// shader wraps globals and pass items in a single SubShader and Pass.
func shader(globals, pass string) string {
	return "Shader \"s\" {\n" + globals + "\nSubShader \"sub\" {\nPass \"p\" {\n" + pass + "\n}\n}\n}"
}

func codes(c *Context) []diagnostic.Code {
	var out []diagnostic.Code
	for _, d := range c.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func expectCodes(t *testing.T, c *Context, expected ...diagnostic.Code) {
	t.Helper()
	actual := codes(c)
	if len(actual) != len(expected) {
		t.Fatalf("expected diagnostics %v, got %v (%v)", expected, actual, c.Diagnostics())
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Fatalf("expected diagnostics %v, got %v (%v)", expected, actual, c.Diagnostics())
		}
	}
}

const waterShader = `Shader "Water" {
  vec4 u_color;
  float unused;
  struct a2v {
    vec4 POSITION;
    vec2 TEXCOORD_0;
  };
  struct v2f {
    vec2 v_uv;
    vec3 v_pos;
  };
  float helper(float x) {
    return x * 2.0;
  }
  v2f vert(a2v attr) {
    v2f o;
    o.v_uv = attr.TEXCOORD_0;
    o.v_pos = attr.POSITION.xyz;
    gl_Position = attr.POSITION;
    return o;
  }
  vec4 frag(v2f i) {
    return u_color * helper(i.v_uv.x);
  }
  SubShader "Default" {
    Pass "Forward" {
      VertexShader = vert;
      FragmentShader = frag;
    }
  }
}`

// ----------------------------------------------------------------------------
// Lowering
// ----------------------------------------------------------------------------

func TestLowerVertexAndFragment(t *testing.T) {
	info, c := compile(t, waterShader, DefaultOptions())
	expectCodes(t, c)

	test.AssertEqual(t, info.Name, "Water")
	pass := firstPass(t, info)
	test.AssertEqual(t, pass.Name, "Forward")

	test.AssertEqualWithDiff(t, pass.VertexSource, `attribute vec4 POSITION;
attribute vec2 TEXCOORD_0;
varying vec2 v_uv;
vec3 v_pos;
void main() {
    v_uv = TEXCOORD_0;
    v_pos = POSITION.xyz;
    gl_Position = POSITION;
}`)

	test.AssertEqualWithDiff(t, pass.FragmentSource, `varying vec2 v_uv;
uniform vec4 u_color;
float helper(float x) {
    return x * 2.0;
}
void main() {
    gl_FragColor = u_color * helper(v_uv.x);
}`)
}

func TestDeterministicOutput(t *testing.T) {
	first, c1 := compile(t, waterShader, DefaultOptions())
	second, c2 := compile(t, waterShader, DefaultOptions())

	a, b := firstPass(t, first), firstPass(t, second)
	test.AssertEqual(t, a.VertexSource, b.VertexSource)
	test.AssertEqual(t, a.FragmentSource, b.FragmentSource)
	test.AssertEqual(t, len(c1.Diagnostics()), len(c2.Diagnostics()))
}

func TestDeterministicDiagnostics(t *testing.T) {
	source := shader(`
vec4 frag() { return vec4(missingA) + vec4(missingB); }`, `
RasterState {
  CullMode = CullMode.Sideways;
}
FragmentShader = frag;`)

	_, c1 := compile(t, source, DefaultOptions())
	_, c2 := compile(t, source, DefaultOptions())

	first, second := c1.Diagnostics(), c2.Diagnostics()
	if len(first) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", first)
	}
	test.AssertEqual(t, len(second), len(first))
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Errorf("diagnostic %d differs:\n%v\n%v", i, first[i], second[i])
		}
	}
}

func TestVertexWritesPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.VaryingPolicy = VaryingVertexWrites
	info, _ := compile(t, waterShader, opts)
	pass := firstPass(t, info)

	test.AssertContains(t, pass.VertexSource, "varying vec2 v_uv;\nvarying vec3 v_pos;\n")
	test.AssertContains(t, pass.FragmentSource, "varying vec2 v_uv;\nvarying vec3 v_pos;\n")
	test.AssertNotContains(t, pass.VertexSource, "\nvec3 v_pos;")
}

func TestInvalidPolicyFallsBack(t *testing.T) {
	c := New(Options{VaryingPolicy: "bogus"})
	test.AssertEqual(t, c.opts.VaryingPolicy, VaryingFragmentReads)
}

func TestTransitiveReachability(t *testing.T) {
	info, c := compile(t, shader(`
float c() { return 1.0; }
float b() { return c(); }
float a() { return b(); }
float d() { return 2.0; }
float e() { return d(); }
vec4 frag() { return vec4(a()); }`, "FragmentShader = frag;"), DefaultOptions())
	expectCodes(t, c)

	pass := firstPass(t, info)
	test.AssertEqual(t, pass.VertexSource, "")
	test.AssertNotContains(t, pass.FragmentSource, "float d()", "float e()")
	test.AssertEqualWithDiff(t, pass.FragmentSource, `float c() {
    return 1.0;
}
float b() {
    return c();
}
float a() {
    return b();
}
void main() {
    gl_FragColor = vec4(a());
}`)
}

func TestRecursiveCallsTerminate(t *testing.T) {
	info, _ := compile(t, shader(`
float odd(float n);
float even(float n) { return n > 0.0 ? odd(n - 1.0) : 1.0; }
float odd(float n) { return n > 0.0 ? even(n - 1.0) : 0.0; }
vec4 frag() { return vec4(even(4.0)); }`, "FragmentShader = frag;"), DefaultOptions())

	source := firstPass(t, info).FragmentSource
	test.AssertContains(t, source, "float odd(float n);", "float even(float n) {", "float odd(float n) {")
	test.AssertEqual(t, strings.Count(source, "float even(float n) {"), 1)
}

func TestTreeShakingDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.TreeShaking = false
	info, _ := compile(t, waterShader, opts)
	pass := firstPass(t, info)

	test.AssertContains(t, pass.FragmentSource, "uniform float unused;", "struct a2v {")
	test.AssertNotContains(t, pass.FragmentSource, "v2f vert(", "vec4 frag(")
}

func TestPassShadowsShaderGlobals(t *testing.T) {
	info, _ := compile(t, `Shader "s" {
  float tint() { return 0.0; }
  SubShader "sub" {
    Pass "p" {
      float tint() { return 1.0; }
      vec4 frag() { return vec4(tint()); }
      FragmentShader = frag;
    }
  }
}`, DefaultOptions())

	source := firstPass(t, info).FragmentSource
	test.AssertContains(t, source, "return 1.0;")
	test.AssertNotContains(t, source, "return 0.0;")
}

func TestPassShadowsSubShaderGlobals(t *testing.T) {
	info, _ := compile(t, `Shader "s" {
  SubShader "sub" {
    float tint() { return 1.0; }
    Pass "p" {
      float tint() { return 2.0; }
      vec4 frag() { return vec4(tint()); }
      FragmentShader = frag;
    }
  }
}`, DefaultOptions())

	source := firstPass(t, info).FragmentSource
	test.AssertContains(t, source, "return 2.0;")
	test.AssertNotContains(t, source, "return 1.0;")
}

func TestCulledPassWithOneVarying(t *testing.T) {
	info, c := compile(t, `Shader "Cull" {
  struct a2v {
    vec4 POSITION;
    vec2 TEXCOORD_0;
  };
  struct v2f {
    vec2 v_uv;
  };
  float unusedHelper(float x) {
    return x + 1.0;
  }
  v2f vert(a2v attr) {
    v2f o;
    o.v_uv = attr.TEXCOORD_0;
    gl_Position = attr.POSITION;
    return o;
  }
  vec4 frag(v2f i) {
    return vec4(i.v_uv, 0.0, 1.0);
  }
  SubShader "Default" {
    Pass "Forward" {
      RasterState {
        CullMode = CullMode.Off;
      }
      VertexShader = vert;
      FragmentShader = frag;
    }
  }
}`, DefaultOptions())
	expectCodes(t, c)

	pass := firstPass(t, info)
	test.AssertEqual(t, pass.RenderStates.Constants()[key(t, "RasterState", "CullMode")], any(int(engine.CullModeOff)))
	test.AssertEqualWithDiff(t, pass.VertexSource, `attribute vec4 POSITION;
attribute vec2 TEXCOORD_0;
varying vec2 v_uv;
void main() {
    v_uv = TEXCOORD_0;
    gl_Position = POSITION;
}`)
	test.AssertEqualWithDiff(t, pass.FragmentSource, `varying vec2 v_uv;
void main() {
    gl_FragColor = vec4(v_uv, 0.0, 1.0);
}`)
	test.AssertNotContains(t, pass.VertexSource+pass.FragmentSource, "unusedHelper")
}

func TestNonFinalReturnInFragment(t *testing.T) {
	info, _ := compile(t, shader(`
float u_flag;
vec4 frag() {
    if (u_flag > 0.5) {
        return vec4(1.0);
    }
    return vec4(0.0);
}`, "FragmentShader = frag;"), DefaultOptions())

	test.AssertContains(t, firstPass(t, info).FragmentSource, `void main() {
    if (u_flag > 0.5) {
        {
            gl_FragColor = vec4(1.0);
            return;
        }
    }
    gl_FragColor = vec4(0.0);
}`)
}

func TestVoidFragmentKeepsEarlyReturn(t *testing.T) {
	info, _ := compile(t, shader(`
float u_flag;
void frag() {
    if (u_flag > 0.5) {
        return;
    }
    gl_FragColor = vec4(1.0);
    return;
}`, "FragmentShader = frag;"), DefaultOptions())

	test.AssertEqualWithDiff(t, firstPass(t, info).FragmentSource, `uniform float u_flag;
void main() {
    if (u_flag > 0.5) {
        return;
    }
    gl_FragColor = vec4(1.0);
}`)
}

func TestVaryingConstructorInitializer(t *testing.T) {
	info, c := compile(t, shader(`
struct v2f { vec2 v_uv; float v_depth; };
v2f vert(vec4 POSITION, vec2 TEXCOORD_0) {
    v2f o = v2f(TEXCOORD_0, POSITION.z);
    gl_Position = POSITION;
    return o;
}
vec4 frag(v2f i) { return vec4(i.v_uv, i.v_depth, 1.0); }`, "VertexShader = vert;\nFragmentShader = frag;"), DefaultOptions())
	expectCodes(t, c)

	test.AssertEqualWithDiff(t, firstPass(t, info).VertexSource, `attribute vec4 POSITION;
attribute vec2 TEXCOORD_0;
varying vec2 v_uv;
varying float v_depth;
void main() {
    v_uv = TEXCOORD_0;
    v_depth = POSITION.z;
    gl_Position = POSITION;
}`)
}

func TestVaryingCopyInitializerWarns(t *testing.T) {
	info, c := compile(t, shader(`
struct v2f { vec2 v_uv; };
v2f make() { v2f r; r.v_uv = vec2(0.0); return r; }
v2f vert(vec4 POSITION) {
    v2f o = make();
    gl_Position = POSITION;
    return o;
}`, "VertexShader = vert;"), DefaultOptions())
	expectCodes(t, c, diagnostic.CodeInvalidInitializer)

	test.AssertEqual(t, c.Diagnostics()[0].Severity, diagnostic.Warning)
	test.AssertNotContains(t, firstPass(t, info).VertexSource, "make()")
}

func TestBuiltinAttributeParams(t *testing.T) {
	info, _ := compile(t, shader(`
struct v2f { vec2 v_uv; };
v2f vert(vec4 POSITION, vec2 TEXCOORD_1) {
    v2f o;
    gl_Position = POSITION;
    return o;
}`, "VertexShader = vert;"), DefaultOptions())

	source := firstPass(t, info).VertexSource
	test.AssertContains(t, source, "attribute vec4 POSITION;")
	test.AssertNotContains(t, source, "TEXCOORD_1", "varying")
}

// ----------------------------------------------------------------------------
// Fatal Errors
// ----------------------------------------------------------------------------

func TestReturnMismatchIsFatal(t *testing.T) {
	for _, body := range []string{
		"void frag() { return vec4(1.0); }",
		"vec4 frag() { gl_FragColor = vec4(1.0); }",
	} {
		c := New(DefaultOptions())
		info, err := c.Parse(buildShader(t, shader(body, "FragmentShader = frag;")))
		if err == nil {
			t.Fatalf("%s: expected a fatal error", body)
		}
		if info != nil {
			t.Errorf("%s: fatal errors discard the result", body)
		}
		if !errors.Is(err, ErrReturnMismatch) {
			t.Errorf("%s: expected ErrReturnMismatch, got %v", body, err)
		}
		var fatal *FatalError
		if !errors.As(err, &fatal) || fatal.Function != "frag" {
			t.Errorf("%s: expected a FatalError for frag, got %v", body, err)
		}
	}
}

// ----------------------------------------------------------------------------
// Diagnostics
// ----------------------------------------------------------------------------

func TestUndefinedIdentifierSuggestion(t *testing.T) {
	info, c := compile(t, shader(`
vec4 u_color;
vec4 frag() { return u_colr; }`, "FragmentShader = frag;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeUndefinedSymbol)
	d := c.Diagnostics()[0]
	test.AssertEqual(t, d.Message, `Not found variable/function definition: u_colr, did you mean "u_color"?`)
	test.AssertEqual(t, d.Severity, diagnostic.Error)
	test.AssertEqual(t, d.Range.Start.Line, 4)
	test.AssertContains(t, firstPass(t, info).FragmentSource, "gl_FragColor = u_colr;")
}

func TestSuggestionsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Suggestions = false
	_, c := compile(t, shader(`
vec4 u_color;
vec4 frag() { return u_colr; }`, "FragmentShader = frag;"), opts)

	test.AssertEqual(t, c.Diagnostics()[0].Message, "Not found variable/function definition: u_colr")
}

func TestUndefinedType(t *testing.T) {
	_, c := compile(t, shader(`
float f(Light l) { return 1.0; }
vec4 frag() { return vec4(f()); }`, "FragmentShader = frag;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeUndefinedSymbol)
	test.AssertContains(t, c.Diagnostics()[0].Message, "Not found type definition: Light")
}

func TestDuplicateEntryFirstWins(t *testing.T) {
	info, c := compile(t, shader(`
vec4 frag() { return vec4(1.0); }
vec4 frag2() { return vec4(2.0); }`, "FragmentShader = frag;\nFragmentShader = frag2;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeDuplicateEntry)
	test.AssertContains(t, firstPass(t, info).FragmentSource, "vec4(1.0)")
}

func TestMissingEntryPoint(t *testing.T) {
	info, c := compile(t, shader(`
vec4 frag() { return vec4(1.0); }`, "VertexShader = nope;\nFragmentShader = frag;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeMissingEntryPoint)
	pass := firstPass(t, info)
	test.AssertEqual(t, pass.VertexSource, "")
	test.AssertContains(t, pass.FragmentSource, "gl_FragColor = vec4(1.0);")
}

func TestMissingVaryingStruct(t *testing.T) {
	info, c := compile(t, shader(`
vec4 vert() { return vec4(0.0); }`, "VertexShader = vert;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeInvalidShaderIO)
	test.AssertEqual(t, firstPass(t, info).VertexSource, "")
}

func TestMissingAttributeStruct(t *testing.T) {
	_, c := compile(t, shader(`
struct v2f { vec2 v_uv; };
v2f vert(Attributes a) { v2f o; return o; }`, "VertexShader = vert;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeInvalidShaderIO)
}

func TestUnknownInterfaceField(t *testing.T) {
	_, c := compile(t, shader(`
struct v2f { vec2 v_uv; };
vec4 frag(v2f i) { return vec4(i.missing, 0.0, 1.0); }`, "FragmentShader = frag;"), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeNoSuchMember)
	test.AssertContains(t, c.Diagnostics()[0].Message, `v2f has no field "missing"`)
}

// ----------------------------------------------------------------------------
// Macros
// ----------------------------------------------------------------------------

func TestMacroReachability(t *testing.T) {
	info, _ := compile(t, shader(`
#define SCALE 2.0
#define UNUSED 1.0
float scaled(float x) { return x * SCALE; }
vec4 frag() { return vec4(scaled(1.0)); }`, "FragmentShader = frag;"), DefaultOptions())

	source := firstPass(t, info).FragmentSource
	test.AssertContains(t, source, "#define SCALE 2.0\nfloat scaled(float x) {")
	test.AssertNotContains(t, source, "UNUSED")
}

func TestFunctionLikeMacroParams(t *testing.T) {
	_, c := compile(t, shader(`
#define MUL(a, b) a * b
vec4 frag() { return vec4(MUL(1.0, 2.0)); }`, "FragmentShader = frag;"), DefaultOptions())

	expectCodes(t, c)
}

func TestConditionalInterfaceFields(t *testing.T) {
	info, c := compile(t, shader(`
#define HAS_NORMAL
struct v2f {
  vec2 v_uv;
#ifdef HAS_NORMAL
  vec3 v_normal;
#endif
};
vec4 frag(v2f i) {
  vec4 color = vec4(i.v_uv, 0.0, 1.0);
#ifdef HAS_NORMAL
  color.xyz = i.v_normal;
#endif
  return color;
}`, "FragmentShader = frag;"), DefaultOptions())
	expectCodes(t, c)

	source := firstPass(t, info).FragmentSource
	if !strings.HasPrefix(source, "#define HAS_NORMAL\nvarying vec2 v_uv;\n#ifdef HAS_NORMAL\nvarying vec3 v_normal;\n#endif\n") {
		t.Errorf("expected the guard ahead of the varyings:\n%s", source)
	}
	test.AssertContains(t, source, "color.xyz = v_normal;", "gl_FragColor = color;")
	test.AssertEqual(t, strings.Count(source, "#define HAS_NORMAL"), 1)
}

func TestInterfaceMacrosPrecedeDeclarations(t *testing.T) {
	info, c := compile(t, shader(`
#define HAS_UV
#define COUNT 2
struct v2f {
  vec4 v_extra[COUNT];
#ifdef HAS_UV
  vec2 uv2;
#endif
};
v2f vert(vec4 POSITION, vec2 TEXCOORD_0) {
  v2f o;
  o.v_extra[0] = POSITION;
#ifdef HAS_UV
  o.uv2 = TEXCOORD_0;
#endif
  gl_Position = POSITION;
  return o;
}
vec4 frag(v2f i) {
  vec4 color = i.v_extra[1];
#ifdef HAS_UV
  color.xy = i.uv2;
#endif
  return color;
}`, "VertexShader = vert;\nFragmentShader = frag;"), DefaultOptions())
	expectCodes(t, c)

	pass := firstPass(t, info)
	if !strings.HasPrefix(pass.VertexSource, `#define HAS_UV
#define COUNT 2
attribute vec4 POSITION;
attribute vec2 TEXCOORD_0;
varying vec4 v_extra[COUNT];
#ifdef HAS_UV
varying vec2 uv2;
#endif
void main() {`) {
		t.Errorf("unexpected vertex layout:\n%s", pass.VertexSource)
	}
	if !strings.HasPrefix(pass.FragmentSource, `#define HAS_UV
#define COUNT 2
varying vec4 v_extra[COUNT];
#ifdef HAS_UV
varying vec2 uv2;
#endif
void main() {`) {
		t.Errorf("unexpected fragment layout:\n%s", pass.FragmentSource)
	}
}

// ----------------------------------------------------------------------------
// Render State
// ----------------------------------------------------------------------------

func key(t *testing.T, state, prop string) engine.RenderStateKey {
	t.Helper()
	k, ok := engine.LookupRenderStateKey(state, prop, 0, false)
	if !ok {
		t.Fatalf("no key for %s%s", state, prop)
	}
	return k
}

func TestRenderStateValues(t *testing.T) {
	info, c := compile(t, shader("", `
BlendState {
  Enabled = true;
  SourceColorBlendFactor = BlendFactor.SourceAlpha;
  BlendColor = Color(1.0, 0.5, 0.0);
}
DepthState {
  WriteEnabled = depthWriteEnabled;
}
RasterState {
  DepthBias = -2.0;
}
RenderQueueType = Transparent;`), DefaultOptions())
	expectCodes(t, c)

	rs := firstPass(t, info).RenderStates
	constants, variables := rs.Constants(), rs.Variables()

	test.AssertEqual(t, constants[key(t, "BlendState", "Enabled")], any(true))
	test.AssertEqual(t, constants[key(t, "BlendState", "SourceColorBlendFactor")], any(int(engine.BlendFactorSourceAlpha)))
	test.AssertEqual(t, constants[key(t, "BlendState", "BlendColor")], any(engine.Color{R: 1, G: 0.5, B: 0, A: 1}))
	test.AssertEqual(t, constants[key(t, "RasterState", "DepthBias")], any(-2.0))
	test.AssertEqual(t, constants[engine.RenderQueueTypeKey], any(int(engine.RenderQueueTypeTransparent)))
	test.AssertEqual(t, variables[key(t, "DepthState", "WriteEnabled")], any("depthWriteEnabled"))

	for k := range variables {
		if _, ok := constants[k]; ok {
			t.Errorf("%s is both constant and variable", k)
		}
	}
}

func TestRenderStateIndexedTarget(t *testing.T) {
	info, _ := compile(t, shader("", `
BlendState {
  Enabled[2] = true;
  ColorWriteMask[2] = 0.0;
}`), DefaultOptions())

	rs := firstPass(t, info).RenderStates
	k, _ := engine.LookupRenderStateKey("BlendState", "Enabled", 2, true)
	test.AssertEqual(t, rs.Constants()[k], any(true))
	_, found := rs.Constants()[key(t, "BlendState", "Enabled")]
	test.AssertEqual(t, found, false)
}

func TestRenderStateVariableReplacesConstant(t *testing.T) {
	info, _ := compile(t, shader("", `
BlendState { Enabled = true; }
BlendState { Enabled = blendEnabled; }`), DefaultOptions())

	rs := firstPass(t, info).RenderStates
	k := key(t, "BlendState", "Enabled")
	_, isConstant := rs.Constants()[k]
	test.AssertEqual(t, isConstant, false)
	test.AssertEqual(t, rs.Variables()[k], any("blendEnabled"))
}

func TestUnknownRenderStateKeyDropsBlock(t *testing.T) {
	info, c := compile(t, shader("", `
BlendState {
  Enabled = true;
  Bogus = 1.0;
}`), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeUnknownRenderStateKey)
	test.AssertEqual(t, len(firstPass(t, info).RenderStates.Constants()), 0)
}

func TestUnknownEnumMemberSkipsItem(t *testing.T) {
	info, c := compile(t, shader("", `
BlendState {
  Enabled = true;
  SourceColorBlendFactor = BlendFactor.SourceAlpah;
}`), DefaultOptions())

	expectCodes(t, c, diagnostic.CodeUnknownRenderStateValue)
	test.AssertContains(t, c.Diagnostics()[0].Message, `did you mean "SourceAlpha"?`)
	test.AssertEqual(t, len(firstPass(t, info).RenderStates.Constants()), 1)
}

func TestNamedRenderStateAssign(t *testing.T) {
	info, c := compile(t, `Shader "s" {
  BlendState additive {
    Enabled = true;
    DestinationColorBlendFactor = BlendFactor.One;
  }
  DepthState depthOff { Enabled = false; }
  SubShader "sub" {
    Pass "p" {
      BlendState = additive;
      DepthState = additive;
      StencilState = missing;
    }
  }
}`, DefaultOptions())

	expectCodes(t, c, diagnostic.CodeUnknownRenderState, diagnostic.CodeUnknownRenderState)
	constants := firstPass(t, info).RenderStates.Constants()
	test.AssertEqual(t, constants[key(t, "BlendState", "DestinationColorBlendFactor")], any(int(engine.BlendFactorOne)))
	_, depth := constants[key(t, "DepthState", "Enabled")]
	test.AssertEqual(t, depth, false)
}

// ----------------------------------------------------------------------------
// Structure
// ----------------------------------------------------------------------------

func TestUsePassAndTags(t *testing.T) {
	info, _ := compile(t, `Shader "s" {
  SubShader "sub" {
    Tags { ReplacementTag = "Opaque" }
    UsePass "pbr/Default/Forward"
    Pass "p" {
      Tags { LightMode = "Forward" }
    }
  }
}`, DefaultOptions())

	sub := info.SubShaders[0]
	test.AssertEqual(t, sub.Tags["ReplacementTag"], any("Opaque"))
	test.AssertEqual(t, sub.Passes[0], any("pbr/Default/Forward"))
	pass := sub.PassByName("p")
	if pass == nil {
		t.Fatal("expected pass p")
	}
	test.AssertEqual(t, pass.Tags["LightMode"], any("Forward"))
	test.AssertEqual(t, pass.VertexSource, "")
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"u_color", "u_time", "normalize"}
	test.AssertEqual(t, closestMatch("u_colr", candidates), "u_color")
	test.AssertEqual(t, closestMatch("normalzie", candidates), "normalize")
	test.AssertEqual(t, closestMatch("x", candidates), "")
	test.AssertEqual(t, closestMatch("zzzzzz", candidates), "")
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	compile(t, waterShader, opts)

	test.AssertContains(t, buf.String(),
		"msg=\"compile shader\"",
		"msg=\"compile pass\"",
		"msg=\"lower entry point\" stage=VertexShader",
		"msg=\"collected globals\" stage=FragmentShader",
	)
}
