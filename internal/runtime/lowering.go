package runtime

import (
	"fmt"
	"strings"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/builtins"
	"github.com/galacean/engine-sub008/internal/dce"
	"github.com/galacean/engine-sub008/internal/diagnostic"
	"github.com/galacean/engine-sub008/internal/symtab"
)

// iface records which fields of an interface struct a stage uses.
type iface struct {
	decl   *ast.StructDecl
	fields map[string]bool
	used   map[string]bool
}

func newIface(decl *ast.StructDecl) *iface {
	i := &iface{decl: decl, fields: make(map[string]bool), used: make(map[string]bool)}
	for _, f := range decl.Fields() {
		i.fields[f.Name] = true
	}
	return i
}

// use marks field as used. It reports false for an unknown field.
func (i *iface) use(field string) bool {
	if !i.fields[field] {
		return false
	}
	i.used[field] = true
	return true
}

// input is one vertex entry point parameter: an attribute struct or a
// single attribute of a builtin type.
type input struct {
	param  *ast.Param
	fields *iface
	used   bool
}

// stageState is the interface binding of the entry point being lowered.
type stageState struct {
	stage ast.Stage
	main  *ast.FunctionDecl

	varying      *iface
	varyingNames map[string]bool

	inputs []*input
	byName map[string]*input

	// fragColor lowers "return e;" to a gl_FragColor write.
	fragColor   bool
	finalReturn ast.Node
}

func newStageState(stage ast.Stage, main *ast.FunctionDecl) *stageState {
	s := &stageState{
		stage:        stage,
		main:         main,
		varyingNames: make(map[string]bool),
		byName:       make(map[string]*input),
	}
	if stmts := main.Body.Stmts; len(stmts) > 0 {
		if ret, ok := stmts[len(stmts)-1].(*ast.ReturnStmt); ok {
			s.finalReturn = ret
		}
	}
	return s
}

// interfaceOf returns the interface bound to an object name.
func (s *stageState) interfaceOf(name string) *iface {
	if s.varyingNames[name] {
		return s.varying
	}
	if in := s.byName[name]; in != nil {
		return in.fields
	}
	return nil
}

// useAttribute marks a builtin-typed attribute parameter as used.
func (s *stageState) useAttribute(name string) bool {
	in := s.byName[name]
	if in == nil || in.fields != nil {
		return false
	}
	in.used = true
	return true
}

// bindVaryingLocal binds the locals of a vertex-stage declaration of the
// varying struct as the varying object. It reports whether it did.
func (s *stageState) bindVaryingLocal(d *ast.VarDecl) bool {
	if s.stage != ast.StageVertex || s.varying == nil || d.Type == nil || d.Type.Name != s.varying.decl.Name {
		return false
	}
	for _, decl := range d.Declarators {
		s.varyingNames[decl.Name] = true
	}
	return true
}

// stageOutput is a lowered entry point waiting for the varying
// declarations, which depend on both stages.
type stageOutput struct {
	state   *stageState
	macros  string
	globals string
	main    string
}

// passState is shared by both stages of a pass.
type passState struct {
	entries [2]*ast.FunctionDecl
	varying *ast.StructDecl
}

func (p *passState) isEntry(n ast.Node) bool {
	fn, ok := n.(*ast.FunctionDecl)
	return ok && (fn == p.entries[0] || fn == p.entries[1])
}

// ----------------------------------------------------------------------------
// Pass
// ----------------------------------------------------------------------------

func (c *Context) parsePass(p *ast.Pass) (*PassInfo, error) {
	c.logger.Debug("compile pass", "name", p.Name)

	c.declareGlobals(c.scopes.Push(symtab.LevelPass), p.Globals)
	defer c.scopes.Pop()

	info := &PassInfo{Name: p.Name, Tags: p.Tags, RenderStates: newRenderStates()}

	var assigns [2]*ast.ShaderAssign
	for _, prop := range p.Properties {
		switch n := prop.(type) {
		case *ast.ShaderAssign:
			if prev := assigns[n.Stage]; prev != nil {
				c.errorf(diagnostic.CodeDuplicateEntry, n,
					"Duplicate %s assignment, %s is already the entry point", n.Stage, prev.Function)
				continue
			}
			assigns[n.Stage] = n
		case *ast.RenderStateDecl:
			c.applyRenderState(n, info.RenderStates)
		case *ast.RenderStateAssign:
			c.applyRenderStateAssign(n, info.RenderStates)
		case *ast.RenderQueueAssign:
			c.applyRenderQueue(n, info.RenderStates)
		}
	}

	c.pass = &passState{}
	defer func() { c.pass = nil }()

	for stage, assign := range assigns {
		fn := c.findEntry(assign)
		if fn == nil {
			continue
		}
		if err := checkReturns(fn); err != nil {
			return nil, err
		}
		c.pass.entries[stage] = fn
	}

	vertex := c.lowerVertex(c.pass.entries[ast.StageVertex])
	fragment := c.lowerFragment(c.pass.entries[ast.StageFragment])
	info.VertexSource, info.FragmentSource = c.assemble(vertex, fragment)
	return info, nil
}

// findEntry resolves the function an entry point assignment names.
func (c *Context) findEntry(assign *ast.ShaderAssign) *ast.FunctionDecl {
	if assign == nil {
		return nil
	}
	for _, g := range c.scopes.Lookup(assign.Function) {
		if fn, ok := g.Node.(*ast.FunctionDecl); ok && fn.Body != nil {
			return fn
		}
	}
	c.errorf(diagnostic.CodeMissingEntryPoint, assign, "Not found %s entry function: %s", assign.Stage, assign.Function)
	return nil
}

// findStruct resolves a visible struct, including one declared inside a
// conditional macro block.
func (c *Context) findStruct(name string) *ast.StructDecl {
	for _, g := range c.scopes.Lookup(name) {
		var found *ast.StructDecl
		ast.Inspect(g.Node, func(n ast.Node) bool {
			if sd, ok := n.(*ast.StructDecl); ok && sd.Name == name && found == nil {
				found = sd
			}
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// checkReturns rejects an entry point whose return statements disagree
// with its return type.
func checkReturns(fn *ast.FunctionDecl) error {
	returnsValue := fn.ReturnType != nil && fn.ReturnType.Name != "void"

	var withValue *ast.ReturnStmt
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if ret, ok := n.(*ast.ReturnStmt); ok && ret.Value != nil && withValue == nil {
			withValue = ret
		}
		return true
	})

	switch {
	case returnsValue && withValue == nil:
		return &FatalError{
			Function: fn.Name,
			Range:    fn.Range,
			Err:      fmt.Errorf("%w: missing return of %s", ErrReturnMismatch, fn.ReturnType.Name),
		}
	case !returnsValue && withValue != nil:
		return &FatalError{
			Function: fn.Name,
			Range:    withValue.Range,
			Err:      fmt.Errorf("%w: void function returns a value", ErrReturnMismatch),
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Stages
// ----------------------------------------------------------------------------

func (c *Context) lowerVertex(fn *ast.FunctionDecl) *stageOutput {
	if fn == nil {
		return nil
	}
	s := newStageState(ast.StageVertex, fn)

	varying := c.findStruct(fn.ReturnType.Name)
	if varying == nil {
		c.errorf(diagnostic.CodeInvalidShaderIO, fn.ReturnType, "Not found varying struct definition: %s", fn.ReturnType.Name)
		return nil
	}
	c.pass.varying = varying
	s.varying = newIface(varying)

	for _, p := range fn.Params {
		in := &input{param: p}
		if !builtins.IsType(p.Type.Name) {
			sd := c.findStruct(p.Type.Name)
			if sd == nil {
				c.errorf(diagnostic.CodeInvalidShaderIO, p, "Not found attribute struct definition: %s", p.Type.Name)
				return nil
			}
			in.fields = newIface(sd)
		}
		s.inputs = append(s.inputs, in)
		s.byName[p.Name] = in
	}
	return c.lowerStage(s)
}

func (c *Context) lowerFragment(fn *ast.FunctionDecl) *stageOutput {
	if fn == nil {
		return nil
	}
	s := newStageState(ast.StageFragment, fn)
	s.fragColor = fn.ReturnType != nil && fn.ReturnType.Name == "vec4"

	if len(fn.Params) > 0 {
		p := fn.Params[0]
		varying := c.pass.varying
		if varying == nil || varying.Name != p.Type.Name {
			varying = nil
			if !builtins.IsType(p.Type.Name) {
				if varying = c.findStruct(p.Type.Name); varying == nil {
					c.errorf(diagnostic.CodeInvalidShaderIO, p, "Not found varying struct definition: %s", p.Type.Name)
					return nil
				}
			}
		}
		if varying != nil {
			s.varying = newIface(varying)
			s.varyingNames[p.Name] = true
		}
	}
	return c.lowerStage(s)
}

// lowerStage renders the entry point as main and collects the globals it
// reaches.
func (c *Context) lowerStage(s *stageState) *stageOutput {
	c.logger.Debug("lower entry point", "stage", s.stage.String(), "function", s.main.Name)

	c.scopes.Reset()
	c.tracker.Reset()
	for _, g := range c.scopes.All() {
		if g.Name == "" || !c.opts.TreeShaking && !c.pass.isEntry(g.Node) {
			c.tracker.Mark(g)
		}
	}

	w := c.writer(ModeGLSL)
	c.stage = s
	c.pushFrame(s.main)
	for _, p := range s.main.Params {
		if s.interfaceOf(p.Name) == nil && s.byName[p.Name] == nil {
			c.declareLocal(p.Name)
		}
	}
	main := "void main() " + w.render(s.main.Body)
	c.popFrame()
	c.stage = nil

	guards := make(map[*symtab.Global]bool)
	if s.varying != nil {
		c.referenceInterfaceMacros(s.varying.decl, guards)
	}
	for _, in := range s.inputs {
		if in.fields != nil {
			c.referenceInterfaceMacros(in.fields.decl, guards)
		}
	}

	rendered := c.tracker.Drain(func(g *symtab.Global) string {
		return w.render(g.Node)
	})

	// Plain defines used by the interface declarations go ahead of them.
	live := dce.Live(c.scopes.All())
	var macros, texts []string
	for _, g := range live {
		if g.Text == "" {
			continue
		}
		if _, define := g.Node.(*ast.MacroDefine); define && guards[g] {
			macros = append(macros, g.Text)
		} else {
			texts = append(texts, g.Text)
		}
	}
	c.logger.Debug("collected globals", "stage", s.stage.String(), "rendered", rendered, "live", len(macros)+len(texts))

	return &stageOutput{
		state:   s,
		macros:  strings.Join(macros, "\n"),
		globals: strings.Join(texts, "\n"),
		main:    main,
	}
}

// referenceInterfaceMacros marks the macros that guard interface fields or
// size their arrays, adding them to guards.
func (c *Context) referenceInterfaceMacros(decl *ast.StructDecl, guards map[*symtab.Global]bool) {
	var names []string
	ast.Inspect(decl, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.MacroConditional:
			names = append(names, n.Condition.Names...)
			for _, b := range n.Elifs {
				names = append(names, b.Condition.Names...)
			}
		case *ast.Ident:
			names = append(names, n.Name)
		}
		return true
	})
	for _, name := range names {
		for _, g := range c.scopes.Lookup(name) {
			switch g.Node.(type) {
			case *ast.MacroDefine, *ast.MacroConditional:
				c.tracker.Mark(g)
				guards[g] = true
			}
		}
	}
}

// mainReturn lowers a return statement of the entry point. GLSL main
// returns nothing, so the trailing return disappears and earlier ones lose
// their value.
func (w writer) mainReturn(n *ast.ReturnStmt) string {
	c := w.c
	s := c.stage
	final := s.finalReturn == ast.Node(n)

	if s.fragColor && n.Value != nil {
		write := "gl_FragColor = " + w.render(n.Value) + ";"
		if final {
			return write
		}
		inner := indentation(c.depth + 1)
		return "{\n" + inner + write + "\n" + inner + "return;\n" + c.indent() + "}"
	}
	if final {
		return ""
	}
	return "return;"
}

// ----------------------------------------------------------------------------
// Assembly
// ----------------------------------------------------------------------------

// assemble joins interface macros, attributes, varyings, globals and main
// for each stage.
func (c *Context) assemble(vertex, fragment *stageOutput) (string, string) {
	declared := c.declaredVaryings(vertex, fragment)

	var vertexSource, fragmentSource string
	if vertex != nil {
		s := vertex.state
		var attributes []string
		for _, in := range s.inputs {
			if in.fields != nil {
				attributes = append(attributes, c.interfaceLines(in.fields.decl.Members, "attribute ", in.fields.used)...)
			} else if in.used {
				attributes = append(attributes, "attribute "+c.paramText(in.param)+";")
			}
		}

		varyings := c.interfaceLines(s.varying.decl.Members, "varying ", declared)
		if c.opts.VaryingPolicy == VaryingFragmentReads {
			private := make(map[string]bool)
			for field := range s.varying.used {
				if !declared[field] {
					private[field] = true
				}
			}
			varyings = append(varyings, c.interfaceLines(s.varying.decl.Members, "", private)...)
		}
		vertexSource = joinSections([]string{vertex.macros}, attributes, varyings, []string{vertex.globals, vertex.main})
	}

	if fragment != nil {
		var varyings []string
		if v := fragment.state.varying; v != nil {
			varyings = c.interfaceLines(v.decl.Members, "varying ", declared)
		}
		fragmentSource = joinSections([]string{fragment.macros}, varyings, []string{fragment.globals, fragment.main})
	}
	return vertexSource, fragmentSource
}

// declaredVaryings applies the varying policy.
func (c *Context) declaredVaryings(vertex, fragment *stageOutput) map[string]bool {
	declared := make(map[string]bool)
	if fragment != nil && fragment.state.varying != nil {
		for field := range fragment.state.varying.used {
			declared[field] = true
		}
	}
	if c.opts.VaryingPolicy == VaryingVertexWrites && vertex != nil {
		for field := range vertex.state.varying.used {
			declared[field] = true
		}
	}
	return declared
}

func (c *Context) paramText(p *ast.Param) string {
	w := c.writer(ModeMacro)
	text := typeText(p.Type, w) + " " + p.Name
	if p.ArraySize != nil {
		text += "[" + w.render(p.ArraySize) + "]"
	}
	return text
}

// interfaceLines declares the included fields of an interface struct with
// keyword, keeping the conditional blocks that guard them.
func (c *Context) interfaceLines(members []ast.Node, keyword string, include map[string]bool) []string {
	w := c.writer(ModeMacro)
	var lines []string
	for _, m := range members {
		switch f := m.(type) {
		case *ast.Field:
			for _, d := range f.Declarators {
				if !include[d.Name] {
					continue
				}
				line := keyword + typeText(f.Type, w) + " " + d.Name
				if d.ArraySize != nil {
					line += "[" + w.render(d.ArraySize) + "]"
				}
				lines = append(lines, line+";")
			}
		case *ast.MacroConditional:
			lines = append(lines, c.conditionalLines(f, keyword, include)...)
		}
	}
	return lines
}

func (c *Context) conditionalLines(m *ast.MacroConditional, keyword string, include map[string]bool) []string {
	type branch struct {
		head  string
		lines []string
	}
	branches := []branch{{directiveLine(m.Directive, m.Condition), c.interfaceLines(m.Body, keyword, include)}}
	for _, b := range m.Elifs {
		branches = append(branches, branch{directiveLine(b.Directive, b.Condition), c.interfaceLines(b.Body, keyword, include)})
	}
	if m.Else != nil {
		branches = append(branches, branch{directiveLine(m.Else.Directive, m.Else.Condition), c.interfaceLines(m.Else.Body, keyword, include)})
	}

	empty := true
	for _, b := range branches {
		if len(b.lines) > 0 {
			empty = false
		}
	}
	if empty {
		return nil
	}

	var lines []string
	for _, b := range branches {
		lines = append(lines, b.head)
		lines = append(lines, b.lines...)
	}
	return append(lines, "#endif")
}

func directiveLine(directive string, cond ast.MacroCondition) string {
	if cond.Text == "" {
		return directive
	}
	return directive + " " + cond.Text
}

func joinSections(sections ...[]string) string {
	var parts []string
	for _, section := range sections {
		for _, s := range section {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}
