// Package builtins defines the GLSL ES built-in functions, variables and
// types that resolve without a declaration in ShaderLab source.
package builtins

// BuiltinKind identifies categories of builtin functions.
type BuiltinKind uint8

const (
	BuiltinConstructor BuiltinKind = iota // Type constructors
	BuiltinTrig                           // Angle and trigonometry functions
	BuiltinExponential                    // Exponential functions
	BuiltinCommon                         // Common math functions
	BuiltinGeometric                      // Vector geometry
	BuiltinMatrix                         // Matrix functions
	BuiltinRelational                     // Component-wise comparisons
	BuiltinTexture                        // Texture lookup
	BuiltinDerivative                     // Derivatives (fragment only)
)

// StageMask records the pipeline stages a builtin is available in.
type StageMask uint8

const (
	StageVertex StageMask = 1 << iota
	StageFragment

	StageAll = StageVertex | StageFragment
)

// Builtin represents a built-in function.
type Builtin struct {
	Name   string
	Kind   BuiltinKind
	Stages StageMask
}

// Variable is a built-in variable such as gl_Position.
type Variable struct {
	Name   string
	Type   string
	Stages StageMask
	Output bool
}

// Table maps builtin function names to their definitions.
var Table = make(map[string]*Builtin)

// Variables maps builtin variable names to their definitions.
var Variables = make(map[string]*Variable)

// Types is the set of builtin type names.
var Types = make(map[string]bool)

func init() {
	registerTypes()
	registerFunctions()
	registerVariables()
}

// Lookup returns the builtin function with the given name, or nil.
func Lookup(name string) *Builtin {
	return Table[name]
}

// IsBuiltin reports whether name is a builtin function, constructor,
// variable or type.
func IsBuiltin(name string) bool {
	return Table[name] != nil || Variables[name] != nil || Types[name]
}

// IsType reports whether name is a builtin type.
func IsType(name string) bool {
	return Types[name]
}

// IsVariable reports whether name is a builtin variable.
func IsVariable(name string) bool {
	return Variables[name] != nil
}

// Names returns the names of every builtin function and variable.
func Names() []string {
	names := make([]string, 0, len(Table)+len(Variables))
	for name := range Table {
		names = append(names, name)
	}
	for name := range Variables {
		names = append(names, name)
	}
	return names
}

func register(b *Builtin) {
	Table[b.Name] = b
}

func registerTypes() {
	constructors := []string{
		"bool", "int", "uint", "float",
		"vec2", "vec3", "vec4",
		"bvec2", "bvec3", "bvec4",
		"ivec2", "ivec3", "ivec4",
		"uvec2", "uvec3", "uvec4",
		"mat2", "mat3", "mat4",
		"mat2x2", "mat2x3", "mat2x4",
		"mat3x2", "mat3x3", "mat3x4",
		"mat4x2", "mat4x3", "mat4x4",
	}
	samplers := []string{
		"sampler2D", "samplerCube", "sampler3D", "sampler2DArray",
		"sampler2DShadow", "samplerCubeShadow", "sampler2DArrayShadow",
		"isampler2D", "usampler2D",
	}

	Types["void"] = true
	for _, name := range samplers {
		Types[name] = true
	}
	for _, name := range constructors {
		Types[name] = true
		register(&Builtin{Name: name, Kind: BuiltinConstructor, Stages: StageAll})
	}
}

func registerFunctions() {
	groups := []struct {
		kind   BuiltinKind
		stages StageMask
		names  []string
	}{
		{BuiltinTrig, StageAll, []string{
			"radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan",
			"sinh", "cosh", "tanh", "asinh", "acosh", "atanh",
		}},
		{BuiltinExponential, StageAll, []string{
			"pow", "exp", "log", "exp2", "log2", "sqrt", "inversesqrt",
		}},
		{BuiltinCommon, StageAll, []string{
			"abs", "sign", "floor", "ceil", "fract", "mod", "min", "max", "clamp",
			"mix", "step", "smoothstep", "trunc", "round", "roundEven", "modf",
			"isnan", "isinf", "floatBitsToInt", "floatBitsToUint",
			"intBitsToFloat", "uintBitsToFloat",
		}},
		{BuiltinGeometric, StageAll, []string{
			"length", "distance", "dot", "cross", "normalize", "faceforward",
			"reflect", "refract",
		}},
		{BuiltinMatrix, StageAll, []string{
			"matrixCompMult", "outerProduct", "transpose", "determinant", "inverse",
		}},
		{BuiltinRelational, StageAll, []string{
			"lessThan", "lessThanEqual", "greaterThan", "greaterThanEqual",
			"equal", "notEqual", "any", "all", "not",
		}},
		{BuiltinTexture, StageAll, []string{
			"texture2D", "texture2DProj", "texture2DLod", "texture2DProjLod",
			"textureCube", "textureCubeLod", "texture2DLodEXT", "textureCubeLodEXT",
			"texture2DGradEXT", "textureCubeGradEXT",
			"texture", "textureLod", "textureProj", "textureGrad", "textureOffset",
			"texelFetch", "textureSize",
		}},
		{BuiltinDerivative, StageFragment, []string{
			"dFdx", "dFdy", "fwidth",
		}},
	}

	for _, g := range groups {
		for _, name := range g.names {
			register(&Builtin{Name: name, Kind: g.kind, Stages: g.stages})
		}
	}
}

func registerVariables() {
	for _, v := range []*Variable{
		{Name: "gl_Position", Type: "vec4", Stages: StageVertex, Output: true},
		{Name: "gl_PointSize", Type: "float", Stages: StageVertex, Output: true},
		{Name: "gl_VertexID", Type: "int", Stages: StageVertex},
		{Name: "gl_InstanceID", Type: "int", Stages: StageVertex},
		{Name: "gl_FragCoord", Type: "vec4", Stages: StageFragment},
		{Name: "gl_FrontFacing", Type: "bool", Stages: StageFragment},
		{Name: "gl_PointCoord", Type: "vec2", Stages: StageFragment},
		{Name: "gl_FragColor", Type: "vec4", Stages: StageFragment, Output: true},
		{Name: "gl_FragData", Type: "vec4", Stages: StageFragment, Output: true},
		{Name: "gl_FragDepthEXT", Type: "float", Stages: StageFragment, Output: true},
		{Name: "gl_FragDepth", Type: "float", Stages: StageFragment, Output: true},
		{Name: "gl_MaxDrawBuffers", Type: "int", Stages: StageAll},
		{Name: "gl_MaxTextureImageUnits", Type: "int", Stages: StageAll},
		{Name: "gl_MaxVertexAttribs", Type: "int", Stages: StageAll},
		{Name: "gl_DepthRange", Type: "gl_DepthRangeParameters", Stages: StageAll},
	} {
		Variables[v.Name] = v
	}
}
