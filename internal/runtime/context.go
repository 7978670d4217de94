// Package runtime compiles a ShaderLab AST into pass records.
//
// A Context walks Shader → SubShader → Pass, pushing one symbol table per
// level. For every pass it resolves render state properties and lowers the
// vertex and fragment entry points into standalone GLSL sources, emitting
// only the globals reachable from each entry point.
//
// Problems the source author can fix without losing the rest of the output
// are recorded as diagnostics. Only a return statement that disagrees with
// its function's return type aborts the compile.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/dce"
	"github.com/galacean/engine-sub008/internal/diagnostic"
	"github.com/galacean/engine-sub008/internal/symtab"
)

// VaryingPolicy decides which varying struct fields are declared.
type VaryingPolicy string

const (
	// VaryingFragmentReads declares the fields the fragment stage reads.
	// Fields only the vertex stage touches become private vertex globals.
	VaryingFragmentReads VaryingPolicy = "fragment-reads"

	// VaryingVertexWrites declares every field either stage uses.
	VaryingVertexWrites VaryingPolicy = "vertex-writes"
)

// Valid reports whether p names a known policy.
func (p VaryingPolicy) Valid() bool {
	return p == VaryingFragmentReads || p == VaryingVertexWrites
}

// Options controls compilation.
type Options struct {
	// VaryingPolicy selects how varying declarations are pruned
	VaryingPolicy VaryingPolicy

	// TreeShaking emits only globals reachable from the entry point.
	// When false every visible global is emitted.
	TreeShaking bool

	// Suggestions adds "did you mean" hints to undefined symbol errors
	Suggestions bool

	// Logger traces compilation phases at debug level (nil discards)
	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		VaryingPolicy: VaryingFragmentReads,
		TreeShaking:   true,
		Suggestions:   true,
	}
}

// Mode selects how identifiers are treated while rendering.
type Mode uint8

const (
	// ModeGLSL renders function bodies and declarations. Unresolved
	// identifiers are errors.
	ModeGLSL Mode = iota

	// ModeRenderState evaluates render state values. Identifiers are
	// variables supplied by the engine at runtime.
	ModeRenderState

	// ModeMacro renders macro values, which may mention names that only
	// exist after expansion.
	ModeMacro
)

// ErrReturnMismatch is wrapped by FatalError when an entry point's return
// statements disagree with its declared return type.
var ErrReturnMismatch = errors.New("return statement does not match the declared return type")

// FatalError aborts a compile.
type FatalError struct {
	Function string
	Range    ast.Range
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %v", e.Range.Start.Line, e.Range.Start.Column, e.Function, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// frame is the local state of the function being rendered.
type frame struct {
	fn     *ast.FunctionDecl
	scopes []map[string]bool
}

func (f *frame) declare(name string) {
	f.scopes[len(f.scopes)-1][name] = true
}

func (f *frame) has(name string) bool {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if f.scopes[i][name] {
			return true
		}
	}
	return false
}

// Context holds the state of one compile. It is not safe for concurrent
// use; create one Context per compile.
type Context struct {
	opts   Options
	logger *slog.Logger

	diags   *diagnostic.List
	scopes  symtab.Stack
	tracker *dce.Tracker

	frames []*frame
	depth  int

	// stage is set while an entry point body is rendered as main.
	stage *stageState
	// pass holds the interface state shared by both stages of a pass.
	pass *passState
}

// New creates a Context.
func New(opts Options) *Context {
	if !opts.VaryingPolicy.Valid() {
		opts.VaryingPolicy = VaryingFragmentReads
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Context{
		opts:    opts,
		logger:  logger,
		diags:   diagnostic.NewList(),
		tracker: dce.New(),
	}
}

// Diagnostics returns every diagnostic recorded so far, in order.
func (c *Context) Diagnostics() []diagnostic.Diagnostic {
	return c.diags.Diagnostics()
}

// DiagnosticList returns the underlying list.
func (c *Context) DiagnosticList() *diagnostic.List {
	return c.diags
}

// Parse compiles shader. The error is non-nil only for fatal conditions,
// in which case no partial result is returned.
func (c *Context) Parse(shader *ast.Shader) (*ShaderInfo, error) {
	c.logger.Debug("compile shader", "name", shader.Name)

	c.declareGlobals(c.scopes.Push(symtab.LevelShader), shader.Globals)
	defer c.scopes.Pop()

	info := &ShaderInfo{Name: shader.Name, SubShaders: make([]*SubShaderInfo, 0, len(shader.SubShaders))}
	for _, sub := range shader.SubShaders {
		subInfo, err := c.parseSubShader(sub)
		if err != nil {
			return nil, err
		}
		info.SubShaders = append(info.SubShaders, subInfo)
	}
	return info, nil
}

func (c *Context) parseSubShader(sub *ast.SubShader) (*SubShaderInfo, error) {
	c.logger.Debug("compile subshader", "name", sub.Name)

	c.declareGlobals(c.scopes.Push(symtab.LevelSubShader), sub.Globals)
	defer c.scopes.Pop()

	info := &SubShaderInfo{Name: sub.Name, Tags: sub.Tags, Passes: make([]any, 0, len(sub.Passes))}
	for _, p := range sub.Passes {
		switch pass := p.(type) {
		case *ast.UsePass:
			info.Passes = append(info.Passes, pass.Path)
		case *ast.Pass:
			passInfo, err := c.parsePass(pass)
			if err != nil {
				return nil, err
			}
			info.Passes = append(info.Passes, passInfo)
		}
	}
	return info, nil
}

// declareGlobals registers every declaration of nodes in table. Nodes
// without a name (precision statements, includes, raw directives) are
// registered under "" and emitted unconditionally.
func (c *Context) declareGlobals(table *symtab.Table, nodes []ast.Node) {
	for _, n := range nodes {
		switch d := n.(type) {
		case *ast.FunctionDecl:
			table.Declare(d.Name, d)
		case *ast.StructDecl:
			table.Declare(d.Name, d)
		case *ast.MacroDefine:
			table.Declare(d.Name, d)
		case *ast.RenderStateDecl:
			table.Declare(d.Name, d)
		case *ast.VarDecl:
			names := make([]string, 0, len(d.Declarators))
			for _, decl := range d.Declarators {
				names = append(names, decl.Name)
			}
			if table.DeclareAll(names, d) == nil {
				table.Declare("", d)
			}
		case *ast.MacroConditional:
			if table.DeclareAll(d.DeclaredNames(), d) == nil {
				table.Declare("", d)
			}
		default:
			table.Declare("", n)
		}
	}
}

// FindGlobal returns the innermost global declared as name, or nil. For an
// overloaded function the first overload is returned.
func (c *Context) FindGlobal(name string) *symtab.Global {
	if found := c.scopes.Lookup(name); len(found) > 0 {
		return found[0]
	}
	return nil
}

// ReferenceGlobal marks every overload of name as referenced and queues
// them for rendering. It returns the first overload, or nil.
func (c *Context) ReferenceGlobal(name string) *symtab.Global {
	found := c.scopes.Lookup(name)
	for _, g := range found {
		c.tracker.Mark(g)
	}
	if len(found) > 0 {
		return found[0]
	}
	return nil
}

// ----------------------------------------------------------------------------
// Function Frames
// ----------------------------------------------------------------------------

func (c *Context) pushFrame(fn *ast.FunctionDecl) *frame {
	f := &frame{fn: fn, scopes: []map[string]bool{{}}}
	c.frames = append(c.frames, f)
	return f
}

func (c *Context) popFrame() {
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *Context) frame() *frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

func (c *Context) pushScope() {
	if f := c.frame(); f != nil {
		f.scopes = append(f.scopes, map[string]bool{})
	}
}

func (c *Context) popScope() {
	if f := c.frame(); f != nil && len(f.scopes) > 1 {
		f.scopes = f.scopes[:len(f.scopes)-1]
	}
}

func (c *Context) declareLocal(name string) {
	if f := c.frame(); f != nil && name != "" {
		f.declare(name)
	}
}

func (c *Context) isLocal(name string) bool {
	f := c.frame()
	return f != nil && f.has(name)
}

// inMain reports whether the function being rendered is the entry point
// lowered to main.
func (c *Context) inMain() bool {
	f := c.frame()
	return c.stage != nil && f != nil && f.fn == c.stage.main
}

func (c *Context) indent() string {
	return indentation(c.depth)
}

func indentation(depth int) string {
	return strings.Repeat("    ", depth)
}

// ----------------------------------------------------------------------------
// Diagnostics
// ----------------------------------------------------------------------------

func toRange(r ast.Range) diagnostic.Range {
	return diagnostic.Range{
		Start: diagnostic.Position{Line: r.Start.Line, Column: r.Start.Column},
		End:   diagnostic.Position{Line: r.End.Line, Column: r.End.Column},
	}
}

func (c *Context) errorf(code diagnostic.Code, n ast.Node, format string, args ...any) {
	c.diags.Errorf(code, toRange(n.Pos()), format, args...)
}

func (c *Context) warnf(code diagnostic.Code, n ast.Node, format string, args ...any) {
	c.diags.Warning(code, toRange(n.Pos()), fmt.Sprintf(format, args...))
}
