package runtime

import (
	"strings"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/builtins"
	"github.com/galacean/engine-sub008/internal/diagnostic"
)

// writer renders AST nodes as GLSL. The mode travels with the writer value
// so a nested render in another mode is just a call on a copy.
type writer struct {
	c    *Context
	mode Mode
}

var _ ast.Serializer = writer{}

func (c *Context) writer(mode Mode) writer {
	return writer{c: c, mode: mode}
}

func (w writer) in(mode Mode) writer {
	w.mode = mode
	return w
}

func (w writer) render(n ast.Node) string {
	if n == nil {
		return ""
	}
	return n.Accept(w)
}

func (w writer) renderAll(nodes []ast.Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, w.render(n))
	}
	return strings.Join(parts, sep)
}

// ----------------------------------------------------------------------------
// Shader Structure
// ----------------------------------------------------------------------------

// Structure and render state nodes never produce GLSL.

func (w writer) SerializeShader(*ast.Shader) string                       { return "" }
func (w writer) SerializeSubShader(*ast.SubShader) string                 { return "" }
func (w writer) SerializePass(*ast.Pass) string                           { return "" }
func (w writer) SerializeUsePass(*ast.UsePass) string                     { return "" }
func (w writer) SerializeRenderStateDecl(*ast.RenderStateDecl) string     { return "" }
func (w writer) SerializeRenderStateAssign(*ast.RenderStateAssign) string { return "" }
func (w writer) SerializeRenderQueueAssign(*ast.RenderQueueAssign) string { return "" }
func (w writer) SerializeShaderAssign(*ast.ShaderAssign) string           { return "" }

// SerializeRenderStateProp renders the property value as text, which is
// what a variable-valued property stores.
func (w writer) SerializeRenderStateProp(n *ast.RenderStateProp) string {
	return w.in(ModeRenderState).render(n.Value)
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (w writer) SerializeFunctionDecl(n *ast.FunctionDecl) string {
	c := w.c
	ret := w.render(n.ReturnType)

	c.pushFrame(n)
	defer c.popFrame()

	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, w.render(p))
	}
	head := ret + " " + n.Name + "(" + strings.Join(params, ", ") + ")"
	if n.Body == nil {
		return head + ";"
	}
	return head + " " + w.render(n.Body)
}

func (w writer) SerializeParam(n *ast.Param) string {
	var sb strings.Builder
	for _, q := range n.Qualifiers {
		sb.WriteString(q)
		sb.WriteByte(' ')
	}
	sb.WriteString(w.render(n.Type))
	if n.Name != "" {
		sb.WriteByte(' ')
		sb.WriteString(n.Name)
	}
	if n.ArraySize != nil {
		sb.WriteString("[" + w.render(n.ArraySize) + "]")
	}
	w.c.declareLocal(n.Name)
	return sb.String()
}

func (w writer) SerializeTypeSpec(n *ast.TypeSpec) string {
	if w.mode == ModeGLSL && !builtins.IsType(n.Name) {
		if w.c.ReferenceGlobal(n.Name) == nil && !w.c.isLocal(n.Name) {
			w.c.errorf(diagnostic.CodeUndefinedSymbol, n, "Not found type definition: %s", n.Name)
		}
	}
	return typeText(n, w)
}

// typeText renders a type without resolving its name.
func typeText(n *ast.TypeSpec, w writer) string {
	text := n.Name
	if n.Precision != "" {
		text = n.Precision + " " + text
	}
	if n.ArraySize != nil {
		text += "[" + w.render(n.ArraySize) + "]"
	}
	return text
}

func (w writer) SerializeStructDecl(n *ast.StructDecl) string {
	c := w.c
	c.depth++
	lines := make([]string, 0, len(n.Members))
	for _, m := range n.Members {
		if text := w.render(m); text != "" {
			lines = append(lines, c.indent()+text)
		}
	}
	c.depth--
	if len(lines) == 0 {
		return "struct " + n.Name + " {};"
	}
	return "struct " + n.Name + " {\n" + strings.Join(lines, "\n") + "\n" + c.indent() + "};"
}

func (w writer) SerializeField(n *ast.Field) string {
	return w.render(n.Type) + " " + w.declarators(n.Declarators) + ";"
}

func (w writer) declarators(decls []*ast.Declarator) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, w.render(d))
	}
	return strings.Join(parts, ", ")
}

// SerializeVarDecl renders a local declaration inside a function and a
// global one elsewhere. Globals without a storage qualifier or initializer
// are uniforms.
func (w writer) SerializeVarDecl(n *ast.VarDecl) string {
	var sb strings.Builder
	for _, q := range n.Qualifiers {
		sb.WriteString(q)
		sb.WriteByte(' ')
	}
	sb.WriteString(w.render(n.Type))
	sb.WriteByte(' ')
	sb.WriteString(w.declarators(n.Declarators))
	sb.WriteByte(';')
	text := sb.String()

	if w.c.frame() != nil || w.mode != ModeGLSL || len(n.Qualifiers) > 0 {
		return text
	}
	for _, d := range n.Declarators {
		if d.Init != nil {
			return text
		}
	}
	return "uniform " + text
}

func (w writer) SerializeDeclarator(n *ast.Declarator) string {
	text := n.Name
	if n.ArraySize != nil {
		text += "[" + w.render(n.ArraySize) + "]"
	}
	if n.Init != nil {
		text += " = " + w.render(n.Init)
	}
	w.c.declareLocal(n.Name)
	return text
}

func (w writer) SerializePrecisionDecl(n *ast.PrecisionDecl) string {
	return "precision " + n.Precision + " " + typeText(n.Type, w) + ";"
}

// ----------------------------------------------------------------------------
// Macros
// ----------------------------------------------------------------------------

func (w writer) SerializeMacroDefine(n *ast.MacroDefine) string {
	c := w.c
	head := "#define " + n.Name
	if n.FunctionLike {
		head += "(" + strings.Join(n.Params, ", ") + ")"
	}

	value := n.Raw
	if n.Value != nil {
		value = w.macroValue(n)
	}

	// A define inside a function body names a local for the rest of it.
	c.declareLocal(n.Name)

	if value == "" {
		return head
	}
	return head + " " + value
}

// macroValue renders the value of n with its parameters bound as locals.
func (w writer) macroValue(n *ast.MacroDefine) string {
	c := w.c
	if c.frame() == nil {
		c.pushFrame(nil)
		defer c.popFrame()
	} else {
		c.pushScope()
		defer c.popScope()
	}
	for _, p := range n.Params {
		c.declareLocal(p)
	}
	return w.in(ModeMacro).render(n.Value)
}

func (w writer) SerializeMacroUndef(n *ast.MacroUndef) string {
	return "#undef " + n.Name
}

func (w writer) SerializeMacroInclude(n *ast.MacroInclude) string {
	return `#include "` + n.Path + `"`
}

func (w writer) SerializeMacroRaw(n *ast.MacroRaw) string {
	return n.Text
}

// SerializeMacroConditional keeps the whole block. Directive lines after
// the first use the current indentation; the caller indents the first.
func (w writer) SerializeMacroConditional(n *ast.MacroConditional) string {
	c := w.c
	var sb strings.Builder

	branch := func(directive string, cond ast.MacroCondition, body []ast.Node, first bool) {
		if !first {
			sb.WriteByte('\n')
			sb.WriteString(c.indent())
		}
		sb.WriteString(directive)
		if cond.Text != "" {
			sb.WriteByte(' ')
			sb.WriteString(cond.Text)
		}
		c.referenceMacros(cond)
		for _, item := range body {
			if text := w.render(item); text != "" {
				sb.WriteByte('\n')
				sb.WriteString(c.indent())
				sb.WriteString(text)
			}
		}
	}

	branch(n.Directive, n.Condition, n.Body, true)
	for _, b := range n.Elifs {
		branch(b.Directive, b.Condition, b.Body, false)
	}
	if n.Else != nil {
		branch(n.Else.Directive, n.Else.Condition, n.Else.Body, false)
	}
	sb.WriteByte('\n')
	sb.WriteString(c.indent())
	sb.WriteString("#endif")
	return sb.String()
}

// referenceMacros marks the declared macros a condition mentions.
func (c *Context) referenceMacros(cond ast.MacroCondition) {
	for _, name := range cond.Names {
		if c.isLocal(name) {
			continue
		}
		for _, g := range c.scopes.Lookup(name) {
			switch g.Node.(type) {
			case *ast.MacroDefine, *ast.MacroConditional:
				c.tracker.Mark(g)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (w writer) SerializeBlock(n *ast.Block) string {
	c := w.c
	c.pushScope()
	c.depth++
	lines := make([]string, 0, len(n.Stmts))
	for _, s := range n.Stmts {
		if text := w.render(s); text != "" {
			lines = append(lines, c.indent()+text)
		}
	}
	c.depth--
	c.popScope()
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + c.indent() + "}"
}

func (w writer) SerializeExprStmt(n *ast.ExprStmt) string {
	return w.render(n.Expr) + ";"
}

func (w writer) SerializeDeclStmt(n *ast.DeclStmt) string {
	if w.c.inMain() && w.c.stage.bindVaryingLocal(n.Decl) {
		return w.varyingInit(n.Decl)
	}
	return w.render(n.Decl)
}

// varyingInit lowers "v2f o = v2f(a, b);" in the vertex entry to one
// varying write per field. Other initializers cannot be split into
// fields and are dropped with a warning.
func (w writer) varyingInit(d *ast.VarDecl) string {
	c := w.c
	bound := c.stage.varying
	fields := bound.decl.Fields()

	var lines []string
	for _, decl := range d.Declarators {
		if decl.Init == nil {
			continue
		}
		call, ok := decl.Init.(*ast.Call)
		if !ok || call.CalleeName() != bound.decl.Name || len(call.Args) != len(fields) {
			c.warnf(diagnostic.CodeInvalidInitializer, decl,
				"Initializer of varying %s is ignored, assign its fields instead", decl.Name)
			continue
		}
		for i, f := range fields {
			bound.use(f.Name)
			lines = append(lines, f.Name+" = "+w.render(call.Args[i])+";")
		}
	}
	return strings.Join(lines, "\n"+c.indent())
}

func (w writer) SerializeIfStmt(n *ast.IfStmt) string {
	text := "if (" + w.render(n.Cond) + ") " + w.render(n.Then)
	if n.Else != nil {
		text += " else " + w.render(n.Else)
	}
	return text
}

func (w writer) SerializeForStmt(n *ast.ForStmt) string {
	c := w.c
	c.pushScope()
	defer c.popScope()

	init := ";"
	if n.Init != nil {
		init = w.render(n.Init)
	}
	text := "for (" + init
	if n.Cond != nil {
		text += " " + w.render(n.Cond)
	}
	text += ";"
	if n.Post != nil {
		text += " " + w.render(n.Post)
	}
	return text + ") " + w.render(n.Body)
}

func (w writer) SerializeWhileStmt(n *ast.WhileStmt) string {
	return "while (" + w.render(n.Cond) + ") " + w.render(n.Body)
}

func (w writer) SerializeDoWhileStmt(n *ast.DoWhileStmt) string {
	return "do " + w.render(n.Body) + " while (" + w.render(n.Cond) + ");"
}

func (w writer) SerializeReturnStmt(n *ast.ReturnStmt) string {
	if w.c.inMain() {
		return w.mainReturn(n)
	}
	if n.Value == nil {
		return "return;"
	}
	return "return " + w.render(n.Value) + ";"
}

func (w writer) SerializeJumpStmt(n *ast.JumpStmt) string {
	return n.Keyword + ";"
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (w writer) SerializeIdent(n *ast.Ident) string {
	w.resolve(n, n.Name)
	return n.Name
}

// resolve marks the global name refers to, or reports it as undefined.
func (w writer) resolve(n ast.Node, name string) {
	c := w.c
	if c.isLocal(name) {
		return
	}
	if c.inMain() && c.stage.useAttribute(name) {
		return
	}
	if builtins.IsBuiltin(name) {
		return
	}
	if c.ReferenceGlobal(name) != nil {
		return
	}
	if w.mode != ModeGLSL {
		return
	}
	c.reportUndefined(n, name)
}

func (w writer) SerializeLiteral(n *ast.Literal) string {
	return n.Text
}

func (w writer) SerializeBinary(n *ast.Binary) string {
	return w.render(n.Left) + " " + n.Op + " " + w.render(n.Right)
}

func (w writer) SerializeUnary(n *ast.Unary) string {
	if n.Postfix {
		return w.render(n.Operand) + n.Op
	}
	return n.Op + w.render(n.Operand)
}

func (w writer) SerializeAssign(n *ast.Assign) string {
	return w.render(n.Left) + " " + n.Op + " " + w.render(n.Right)
}

func (w writer) SerializeTernary(n *ast.Ternary) string {
	return w.render(n.Cond) + " ? " + w.render(n.Then) + " : " + w.render(n.Else)
}

func (w writer) SerializeCall(n *ast.Call) string {
	return w.render(n.Callee) + "(" + w.renderAll(n.Args, ", ") + ")"
}

func (w writer) SerializeIndex(n *ast.Index) string {
	return w.render(n.Object) + "[" + w.render(n.Index) + "]"
}

// SerializeMember renders interface field access inside main as the bare
// field name, which is how attributes and varyings are declared.
func (w writer) SerializeMember(n *ast.Member) string {
	c := w.c
	if obj, ok := n.Object.(*ast.Ident); ok && c.inMain() && !c.isLocal(obj.Name) {
		if bound := c.stage.interfaceOf(obj.Name); bound != nil {
			if !bound.use(n.Name) {
				c.errorf(diagnostic.CodeNoSuchMember, n, "%s has no field %q", bound.decl.Name, n.Name)
			}
			return n.Name
		}
	}
	return w.render(n.Object) + "." + n.Name
}

func (w writer) SerializeParen(n *ast.Paren) string {
	return "(" + w.render(n.Expr) + ")"
}

func (w writer) SerializeObject(n *ast.Object) string {
	return w.renderAll(n.Sorted(), " ")
}

func (w writer) SerializeToken(n *ast.Token) string {
	return n.Text
}
