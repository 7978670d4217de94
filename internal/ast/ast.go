// Package ast defines the Abstract Syntax Tree types for ShaderLab.
//
// The AST is designed to be:
// - Positioned: every node carries its source range
// - Immutable: nodes are never modified after the visitor builds them
// - Exhaustive: every node kind has a method on Serializer, so adding a
//   kind without teaching every serializer about it fails to compile
package ast

import (
	"sort"

	"github.com/galacean/engine-sub008/internal/lexer"
)

// ----------------------------------------------------------------------------
// Source Location
// ----------------------------------------------------------------------------

// Position is a 1-based line/column location.
type Position struct {
	Line   int
	Column int
}

// Range represents a range in source code.
type Range struct {
	Start Position
	End   Position
}

// Before reports whether r starts before o.
func (r Range) Before(o Range) bool {
	if r.Start.Line != o.Start.Line {
		return r.Start.Line < o.Start.Line
	}
	return r.Start.Column < o.Start.Column
}

// Pos returns the range itself so that embedding Range implements Pos.
func (r Range) Pos() Range { return r }

// ----------------------------------------------------------------------------
// Node
// ----------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	Pos() Range
	Accept(s Serializer) string
}

// Serializer renders nodes to text. It has one method per node kind.
type Serializer interface {
	SerializeShader(*Shader) string
	SerializeSubShader(*SubShader) string
	SerializePass(*Pass) string
	SerializeUsePass(*UsePass) string
	SerializeRenderStateDecl(*RenderStateDecl) string
	SerializeRenderStateProp(*RenderStateProp) string
	SerializeRenderStateAssign(*RenderStateAssign) string
	SerializeRenderQueueAssign(*RenderQueueAssign) string
	SerializeShaderAssign(*ShaderAssign) string

	SerializeFunctionDecl(*FunctionDecl) string
	SerializeParam(*Param) string
	SerializeTypeSpec(*TypeSpec) string
	SerializeStructDecl(*StructDecl) string
	SerializeField(*Field) string
	SerializeVarDecl(*VarDecl) string
	SerializeDeclarator(*Declarator) string
	SerializePrecisionDecl(*PrecisionDecl) string

	SerializeMacroDefine(*MacroDefine) string
	SerializeMacroUndef(*MacroUndef) string
	SerializeMacroInclude(*MacroInclude) string
	SerializeMacroRaw(*MacroRaw) string
	SerializeMacroConditional(*MacroConditional) string

	SerializeBlock(*Block) string
	SerializeExprStmt(*ExprStmt) string
	SerializeDeclStmt(*DeclStmt) string
	SerializeIfStmt(*IfStmt) string
	SerializeForStmt(*ForStmt) string
	SerializeWhileStmt(*WhileStmt) string
	SerializeDoWhileStmt(*DoWhileStmt) string
	SerializeReturnStmt(*ReturnStmt) string
	SerializeJumpStmt(*JumpStmt) string

	SerializeIdent(*Ident) string
	SerializeLiteral(*Literal) string
	SerializeBinary(*Binary) string
	SerializeUnary(*Unary) string
	SerializeAssign(*Assign) string
	SerializeTernary(*Ternary) string
	SerializeCall(*Call) string
	SerializeIndex(*Index) string
	SerializeMember(*Member) string
	SerializeParen(*Paren) string
	SerializeObject(*Object) string
	SerializeToken(*Token) string
}

// ----------------------------------------------------------------------------
// Shader Structure
// ----------------------------------------------------------------------------

// Shader is the root of a ShaderLab file.
type Shader struct {
	Range
	Name       string
	Globals    []Node
	SubShaders []*SubShader
}

// SubShader groups passes sharing tags and globals.
type SubShader struct {
	Range
	Name    string
	Tags    map[string]any
	Globals []Node
	Passes  []Node // *Pass or *UsePass, in source order
}

// Pass is a single render pass.
type Pass struct {
	Range
	Name       string
	Tags       map[string]any
	Globals    []Node
	Properties []Node // render state, render queue and entry point assignments
}

// UsePass references a pass of another shader by path.
type UsePass struct {
	Range
	Path string
}

// ----------------------------------------------------------------------------
// Render State
// ----------------------------------------------------------------------------

// RenderStateDecl is a render state block. Name is empty for a block
// written inline in a pass.
type RenderStateDecl struct {
	Range
	Kind  string // BlendState, DepthState, StencilState or RasterState
	Name  string
	Props []*RenderStateProp
}

// RenderStateProp is one "Property[Index] = Value;" item.
type RenderStateProp struct {
	Range
	Property string
	Index    int
	HasIndex bool
	Value    Node
}

// RenderStateAssign is "BlendState = name;".
type RenderStateAssign struct {
	Range
	Kind  string
	Value string
}

// RenderQueueAssign is "RenderQueueType = value;".
type RenderQueueAssign struct {
	Range
	Value Node
}

// Stage identifies the pipeline stage an entry point is bound to.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	if s == StageVertex {
		return "VertexShader"
	}
	return "FragmentShader"
}

// ShaderAssign is "VertexShader = fn;" or "FragmentShader = fn;".
type ShaderAssign struct {
	Range
	Stage    Stage
	Function string
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

// FunctionDecl is a GLSL function. Body is nil for a prototype.
type FunctionDecl struct {
	Range
	ReturnType *TypeSpec
	Name       string
	Params     []*Param
	Body       *Block
}

// Param is a function parameter.
type Param struct {
	Range
	Qualifiers []string
	Type       *TypeSpec
	Name       string
	ArraySize  Node
}

// TypeSpec names a type with an optional precision and array size.
type TypeSpec struct {
	Range
	Precision string
	Name      string
	ArraySize Node
}

// StructDecl is a struct definition. Members holds *Field values and
// macro nodes in source order.
type StructDecl struct {
	Range
	Name    string
	Members []Node
}

// Fields returns the named fields of the struct, including those inside
// conditional macro blocks.
func (s *StructDecl) Fields() []*Declarator {
	var out []*Declarator
	var collect func(nodes []Node)
	collect = func(nodes []Node) {
		for _, n := range nodes {
			switch m := n.(type) {
			case *Field:
				out = append(out, m.Declarators...)
			case *MacroConditional:
				collect(m.Body)
				for _, b := range m.Elifs {
					collect(b.Body)
				}
				if m.Else != nil {
					collect(m.Else.Body)
				}
			}
		}
	}
	collect(s.Members)
	return out
}

// FieldType returns the type of the named field, or nil.
func (s *StructDecl) FieldType(name string) *TypeSpec {
	var found *TypeSpec
	Inspect(s, func(n Node) bool {
		if f, ok := n.(*Field); ok && found == nil {
			for _, d := range f.Declarators {
				if d.Name == name {
					found = f.Type
				}
			}
		}
		return found == nil
	})
	return found
}

// Field declares one or more struct members of the same type.
type Field struct {
	Range
	Type        *TypeSpec
	Declarators []*Declarator
}

// VarDecl declares variables at global or local scope.
type VarDecl struct {
	Range
	Qualifiers  []string
	Type        *TypeSpec
	Declarators []*Declarator
}

// HasQualifier reports whether q was written on the declaration.
func (d *VarDecl) HasQualifier(q string) bool {
	for _, have := range d.Qualifiers {
		if have == q {
			return true
		}
	}
	return false
}

// Declarator is a single declared name with optional array size and
// initializer.
type Declarator struct {
	Range
	Name      string
	ArraySize Node
	Init      Node
}

// PrecisionDecl is "precision mediump float;".
type PrecisionDecl struct {
	Range
	Precision string
	Type      *TypeSpec
}

// ----------------------------------------------------------------------------
// Macros
// ----------------------------------------------------------------------------

// MacroDefine is "#define NAME value". Value holds the parsed expression
// when the text forms one; otherwise Raw holds the text verbatim.
type MacroDefine struct {
	Range
	Name         string
	FunctionLike bool
	Params       []string
	Value        Node
	Raw          string
}

// MacroUndef is "#undef NAME".
type MacroUndef struct {
	Range
	Name string
}

// MacroInclude is `#include "path"`.
type MacroInclude struct {
	Range
	Path string
}

// MacroRaw is a directive passed through untouched (#extension, #version...).
type MacroRaw struct {
	Range
	Text string
}

// MacroCondition is the raw condition text of a directive together with
// the identifiers it mentions.
type MacroCondition struct {
	Text  string
	Names []string
}

// MacroBranch is an #elif or #else branch.
type MacroBranch struct {
	Range
	Directive string
	Condition MacroCondition
	Body      []Node
}

// MacroConditional is an #ifdef/#ifndef/#if block with its branches.
type MacroConditional struct {
	Range
	Directive string
	Condition MacroCondition
	Body      []Node
	Elifs     []*MacroBranch
	Else      *MacroBranch
}

// DeclaredNames returns the global names declared anywhere inside the block.
func (m *MacroConditional) DeclaredNames() []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	Inspect(m, func(n Node) bool {
		switch d := n.(type) {
		case *FunctionDecl:
			add(d.Name)
			return false
		case *StructDecl:
			add(d.Name)
			return false
		case *VarDecl:
			for _, decl := range d.Declarators {
				add(decl.Name)
			}
			return false
		case *MacroDefine:
			add(d.Name)
			return false
		case *RenderStateDecl:
			add(d.Name)
			return false
		}
		return true
	})
	return names
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Block is a brace-enclosed statement list.
type Block struct {
	Range
	Stmts []Node
}

// ExprStmt is an expression statement. Expr is nil for ";".
type ExprStmt struct {
	Range
	Expr Node
}

// DeclStmt is a local variable declaration.
type DeclStmt struct {
	Range
	Decl *VarDecl
}

type IfStmt struct {
	Range
	Cond Node
	Then Node
	Else Node
}

type ForStmt struct {
	Range
	Init Node
	Cond Node
	Post Node
	Body Node
}

type WhileStmt struct {
	Range
	Cond Node
	Body Node
}

type DoWhileStmt struct {
	Range
	Body Node
	Cond Node
}

type ReturnStmt struct {
	Range
	Value Node
}

// JumpStmt is break, continue or discard.
type JumpStmt struct {
	Range
	Keyword string
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

type Ident struct {
	Range
	Name string
}

// LiteralKind classifies literal values.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
)

type Literal struct {
	Range
	Kind LiteralKind
	Text string
}

type Binary struct {
	Range
	Op    string
	Left  Node
	Right Node
}

// Unary is a prefix or postfix operator application.
type Unary struct {
	Range
	Op      string
	Operand Node
	Postfix bool
}

type Assign struct {
	Range
	Op    string
	Left  Node
	Right Node
}

type Ternary struct {
	Range
	Cond Node
	Then Node
	Else Node
}

type Call struct {
	Range
	Callee Node
	Args   []Node
}

// CalleeName returns the called identifier, or "" for other callees.
func (c *Call) CalleeName() string {
	if id, ok := c.Callee.(*Ident); ok {
		return id.Name
	}
	return ""
}

type Index struct {
	Range
	Object Node
	Index  Node
}

type Member struct {
	Range
	Object Node
	Name   string
}

type Paren struct {
	Range
	Expr Node
}

// ----------------------------------------------------------------------------
// Generic Nodes
// ----------------------------------------------------------------------------

// Object is a positioned bag of named children for constructs that need
// no dedicated node. It renders its children in source order.
type Object struct {
	Range
	Rule     string
	Children map[string][]Node
}

// Sorted returns all children ordered by source position. Ties keep the
// order of their labels.
func (o *Object) Sorted() []Node {
	labels := make([]string, 0, len(o.Children))
	for label := range o.Children {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var out []Node
	for _, label := range labels {
		out = append(out, o.Children[label]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos().Before(out[j].Pos())
	})
	return out
}

// Token is a raw token kept in the tree.
type Token struct {
	Range
	Kind lexer.TokenKind
	Text string
}

// ----------------------------------------------------------------------------
// Dispatch
// ----------------------------------------------------------------------------

func (n *Shader) Accept(s Serializer) string            { return s.SerializeShader(n) }
func (n *SubShader) Accept(s Serializer) string         { return s.SerializeSubShader(n) }
func (n *Pass) Accept(s Serializer) string              { return s.SerializePass(n) }
func (n *UsePass) Accept(s Serializer) string           { return s.SerializeUsePass(n) }
func (n *RenderStateDecl) Accept(s Serializer) string   { return s.SerializeRenderStateDecl(n) }
func (n *RenderStateProp) Accept(s Serializer) string   { return s.SerializeRenderStateProp(n) }
func (n *RenderStateAssign) Accept(s Serializer) string { return s.SerializeRenderStateAssign(n) }
func (n *RenderQueueAssign) Accept(s Serializer) string { return s.SerializeRenderQueueAssign(n) }
func (n *ShaderAssign) Accept(s Serializer) string      { return s.SerializeShaderAssign(n) }
func (n *FunctionDecl) Accept(s Serializer) string      { return s.SerializeFunctionDecl(n) }
func (n *Param) Accept(s Serializer) string             { return s.SerializeParam(n) }
func (n *TypeSpec) Accept(s Serializer) string          { return s.SerializeTypeSpec(n) }
func (n *StructDecl) Accept(s Serializer) string        { return s.SerializeStructDecl(n) }
func (n *Field) Accept(s Serializer) string             { return s.SerializeField(n) }
func (n *VarDecl) Accept(s Serializer) string           { return s.SerializeVarDecl(n) }
func (n *Declarator) Accept(s Serializer) string        { return s.SerializeDeclarator(n) }
func (n *PrecisionDecl) Accept(s Serializer) string     { return s.SerializePrecisionDecl(n) }
func (n *MacroDefine) Accept(s Serializer) string       { return s.SerializeMacroDefine(n) }
func (n *MacroUndef) Accept(s Serializer) string        { return s.SerializeMacroUndef(n) }
func (n *MacroInclude) Accept(s Serializer) string      { return s.SerializeMacroInclude(n) }
func (n *MacroRaw) Accept(s Serializer) string          { return s.SerializeMacroRaw(n) }
func (n *MacroConditional) Accept(s Serializer) string  { return s.SerializeMacroConditional(n) }
func (n *Block) Accept(s Serializer) string             { return s.SerializeBlock(n) }
func (n *ExprStmt) Accept(s Serializer) string          { return s.SerializeExprStmt(n) }
func (n *DeclStmt) Accept(s Serializer) string          { return s.SerializeDeclStmt(n) }
func (n *IfStmt) Accept(s Serializer) string            { return s.SerializeIfStmt(n) }
func (n *ForStmt) Accept(s Serializer) string           { return s.SerializeForStmt(n) }
func (n *WhileStmt) Accept(s Serializer) string         { return s.SerializeWhileStmt(n) }
func (n *DoWhileStmt) Accept(s Serializer) string       { return s.SerializeDoWhileStmt(n) }
func (n *ReturnStmt) Accept(s Serializer) string        { return s.SerializeReturnStmt(n) }
func (n *JumpStmt) Accept(s Serializer) string          { return s.SerializeJumpStmt(n) }
func (n *Ident) Accept(s Serializer) string             { return s.SerializeIdent(n) }
func (n *Literal) Accept(s Serializer) string           { return s.SerializeLiteral(n) }
func (n *Binary) Accept(s Serializer) string            { return s.SerializeBinary(n) }
func (n *Unary) Accept(s Serializer) string             { return s.SerializeUnary(n) }
func (n *Assign) Accept(s Serializer) string            { return s.SerializeAssign(n) }
func (n *Ternary) Accept(s Serializer) string           { return s.SerializeTernary(n) }
func (n *Call) Accept(s Serializer) string              { return s.SerializeCall(n) }
func (n *Index) Accept(s Serializer) string             { return s.SerializeIndex(n) }
func (n *Member) Accept(s Serializer) string            { return s.SerializeMember(n) }
func (n *Paren) Accept(s Serializer) string             { return s.SerializeParen(n) }
func (n *Object) Accept(s Serializer) string            { return s.SerializeObject(n) }
func (n *Token) Accept(s Serializer) string             { return s.SerializeToken(n) }
