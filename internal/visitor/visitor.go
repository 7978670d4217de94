// Package visitor converts the concrete syntax tree into the AST.
//
// Each grammar rule with a dedicated AST node has its own visit function.
// Rules without one go through defaultVisit, which keeps every child in a
// positioned ast.Object so the text can still be reproduced in source order.
package visitor

import (
	"fmt"
	"strconv"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/cst"
	"github.com/galacean/engine-sub008/internal/lexer"
)

// Error reports a CST shape the visitor cannot convert.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Build converts a Shader CST into its AST.
func Build(root *cst.Node) (*ast.Shader, error) {
	if root == nil || root.Rule != cst.RuleShader {
		return nil, &Error{Message: "expected a Shader root node"}
	}

	v := &visitor{}
	shader := v.visitShader(root)
	if v.err != nil {
		return nil, v.err
	}
	return shader, nil
}

type visitor struct {
	err *Error
}

func (v *visitor) fail(el cst.Element, format string, args ...any) {
	if v.err != nil {
		return
	}
	pos := el.Pos().Start
	v.err = &Error{Message: fmt.Sprintf(format, args...), Line: pos.Line, Column: pos.Column}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func position(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column}
}

func rangeOf(el cst.Element) ast.Range {
	r := el.Pos()
	return ast.Range{Start: position(r.Start), End: position(r.End)}
}

// text returns the token under label as written, or "".
func text(n *cst.Node, label string) string {
	if t := n.Token(label); t != nil {
		return t.Image
	}
	return ""
}

// value returns the lexer value of the token under label, or "".
func value(n *cst.Node, label string) string {
	if t := n.Token(label); t != nil {
		return t.Value
	}
	return ""
}

func texts(tokens []*cst.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Image
	}
	return out
}

// ----------------------------------------------------------------------------
// Shader Structure
// ----------------------------------------------------------------------------

func (v *visitor) visitShader(n *cst.Node) *ast.Shader {
	s := &ast.Shader{Range: rangeOf(n), Name: value(n, cst.LabelName)}
	s.Globals = v.visitAll(n.Nodes(cst.LabelGlobal))
	for _, sub := range n.Nodes(cst.LabelSubShader) {
		s.SubShaders = append(s.SubShaders, v.visitSubShader(sub))
	}
	return s
}

func (v *visitor) visitSubShader(n *cst.Node) *ast.SubShader {
	s := &ast.SubShader{
		Range: rangeOf(n),
		Name:  value(n, cst.LabelName),
		Tags:  v.visitTags(n.Nodes(cst.LabelTags)),
	}
	s.Globals = v.visitAll(n.Nodes(cst.LabelGlobal))
	for _, p := range n.Nodes(cst.LabelPass) {
		if p.Rule == cst.RuleUsePass {
			s.Passes = append(s.Passes, &ast.UsePass{Range: rangeOf(p), Path: value(p, cst.LabelPath)})
			continue
		}
		s.Passes = append(s.Passes, v.visitPass(p))
	}
	return s
}

func (v *visitor) visitPass(n *cst.Node) *ast.Pass {
	return &ast.Pass{
		Range:      rangeOf(n),
		Name:       value(n, cst.LabelName),
		Tags:       v.visitTags(n.Nodes(cst.LabelTags)),
		Globals:    v.visitAll(n.Nodes(cst.LabelGlobal)),
		Properties: v.visitAll(n.Nodes(cst.LabelProperty)),
	}
}

// visitTags merges every Tags block into one map. Later keys win.
func (v *visitor) visitTags(blocks []*cst.Node) map[string]any {
	if len(blocks) == 0 {
		return nil
	}
	tags := make(map[string]any)
	for _, block := range blocks {
		for _, entry := range block.Nodes(cst.LabelEntry) {
			tags[text(entry, cst.LabelKey)] = v.tagValue(entry.Token(cst.LabelValue))
		}
	}
	return tags
}

func (v *visitor) tagValue(t *cst.Token) any {
	switch t.Kind {
	case lexer.TokTrue:
		return true
	case lexer.TokFalse:
		return false
	case lexer.TokIntLiteral, lexer.TokFloatLiteral:
		if f, ok := ast.ParseNumber(t.Image); ok {
			return f
		}
		v.fail(t, "invalid number %q", t.Image)
		return nil
	}
	return t.Value
}

// ----------------------------------------------------------------------------
// Dispatch
// ----------------------------------------------------------------------------

func (v *visitor) visitAll(nodes []*cst.Node) []ast.Node {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		if node := v.visit(n); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// visitOpt converts the first node under label, returning nil if absent.
func (v *visitor) visitOpt(n *cst.Node, label string) ast.Node {
	if child := n.Node(label); child != nil {
		return v.visit(child)
	}
	return nil
}

func (v *visitor) visit(n *cst.Node) ast.Node {
	switch n.Rule {
	case cst.RuleRenderStateDecl:
		return v.visitRenderStateDecl(n)
	case cst.RuleRenderStateAssign:
		return &ast.RenderStateAssign{Range: rangeOf(n), Kind: text(n, cst.LabelType), Value: text(n, cst.LabelValue)}
	case cst.RuleRenderQueueAssign:
		return &ast.RenderQueueAssign{Range: rangeOf(n), Value: v.visitOpt(n, cst.LabelValue)}
	case cst.RuleShaderAssign:
		stage := ast.StageVertex
		if n.Token(cst.LabelStage).Kind == lexer.TokFragmentShader {
			stage = ast.StageFragment
		}
		return &ast.ShaderAssign{Range: rangeOf(n), Stage: stage, Function: text(n, cst.LabelValue)}

	case cst.RuleFunctionDecl:
		return v.visitFunctionDecl(n)
	case cst.RuleStructDecl:
		return &ast.StructDecl{Range: rangeOf(n), Name: text(n, cst.LabelName), Members: v.visitAll(n.Nodes(cst.LabelMember))}
	case cst.RuleField:
		return &ast.Field{Range: rangeOf(n), Type: v.visitTypeSpec(n.Node(cst.LabelType)), Declarators: v.visitDeclarators(n)}
	case cst.RuleVarDecl:
		return v.visitVarDecl(n)
	case cst.RulePrecisionDecl:
		return &ast.PrecisionDecl{Range: rangeOf(n), Precision: text(n, cst.LabelPrecision), Type: v.visitTypeSpec(n.Node(cst.LabelType))}

	case cst.RuleMacroDefine:
		return v.visitMacroDefine(n)
	case cst.RuleMacroUndef:
		return &ast.MacroUndef{Range: rangeOf(n), Name: text(n, cst.LabelName)}
	case cst.RuleMacroInclude:
		return &ast.MacroInclude{Range: rangeOf(n), Path: value(n, cst.LabelPath)}
	case cst.RuleMacroRaw:
		return &ast.MacroRaw{Range: rangeOf(n), Text: text(n, cst.LabelText)}
	case cst.RuleMacroConditional:
		return v.visitMacroConditional(n)

	case cst.RuleBlock:
		return v.visitBlock(n)
	case cst.RuleExprStmt:
		return &ast.ExprStmt{Range: rangeOf(n), Expr: v.visitOpt(n, cst.LabelExpr)}
	case cst.RuleDeclStmt:
		return &ast.DeclStmt{Range: rangeOf(n), Decl: v.visitVarDecl(n.Node(cst.LabelDecl))}
	case cst.RuleIfStmt:
		return &ast.IfStmt{
			Range: rangeOf(n),
			Cond:  v.visitOpt(n, cst.LabelCond),
			Then:  v.visitOpt(n, cst.LabelThen),
			Else:  v.visitOpt(n, cst.LabelElse),
		}
	case cst.RuleForStmt:
		return &ast.ForStmt{
			Range: rangeOf(n),
			Init:  v.visitOpt(n, cst.LabelInit),
			Cond:  v.visitOpt(n, cst.LabelCond),
			Post:  v.visitOpt(n, cst.LabelPost),
			Body:  v.visitOpt(n, cst.LabelBody),
		}
	case cst.RuleWhileStmt:
		return &ast.WhileStmt{Range: rangeOf(n), Cond: v.visitOpt(n, cst.LabelCond), Body: v.visitOpt(n, cst.LabelBody)}
	case cst.RuleDoWhileStmt:
		return &ast.DoWhileStmt{Range: rangeOf(n), Body: v.visitOpt(n, cst.LabelBody), Cond: v.visitOpt(n, cst.LabelCond)}
	case cst.RuleReturnStmt:
		return &ast.ReturnStmt{Range: rangeOf(n), Value: v.visitOpt(n, cst.LabelValue)}
	case cst.RuleJumpStmt:
		return &ast.JumpStmt{Range: rangeOf(n), Keyword: text(n, cst.LabelKeyword)}

	case cst.RuleIdent:
		return &ast.Ident{Range: rangeOf(n), Name: text(n, cst.LabelName)}
	case cst.RuleLiteral:
		return v.visitLiteral(n)
	case cst.RuleBinary:
		return &ast.Binary{
			Range: rangeOf(n),
			Op:    text(n, cst.LabelOp),
			Left:  v.visitOpt(n, cst.LabelLeft),
			Right: v.visitOpt(n, cst.LabelRight),
		}
	case cst.RuleUnary, cst.RulePostfix:
		return &ast.Unary{
			Range:   rangeOf(n),
			Op:      text(n, cst.LabelOp),
			Operand: v.visitOpt(n, cst.LabelOperand),
			Postfix: n.Rule == cst.RulePostfix,
		}
	case cst.RuleAssign:
		return &ast.Assign{
			Range: rangeOf(n),
			Op:    text(n, cst.LabelOp),
			Left:  v.visitOpt(n, cst.LabelLeft),
			Right: v.visitOpt(n, cst.LabelRight),
		}
	case cst.RuleTernary:
		return &ast.Ternary{
			Range: rangeOf(n),
			Cond:  v.visitOpt(n, cst.LabelCond),
			Then:  v.visitOpt(n, cst.LabelThen),
			Else:  v.visitOpt(n, cst.LabelElse),
		}
	case cst.RuleCall:
		return &ast.Call{Range: rangeOf(n), Callee: v.visitOpt(n, cst.LabelCallee), Args: v.visitAll(n.Nodes(cst.LabelArg))}
	case cst.RuleIndex:
		return &ast.Index{Range: rangeOf(n), Object: v.visitOpt(n, cst.LabelObject), Index: v.visitOpt(n, cst.LabelIndex)}
	case cst.RuleMember:
		return &ast.Member{Range: rangeOf(n), Object: v.visitOpt(n, cst.LabelObject), Name: text(n, cst.LabelName)}
	case cst.RuleParen:
		return &ast.Paren{Range: rangeOf(n), Expr: v.visitOpt(n, cst.LabelExpr)}
	}

	return v.defaultVisit(n)
}

// defaultVisit keeps every child of n, converted, under its label.
func (v *visitor) defaultVisit(n *cst.Node) ast.Node {
	obj := &ast.Object{Range: rangeOf(n), Rule: n.Rule, Children: make(map[string][]ast.Node)}
	for _, label := range n.Labels() {
		for _, el := range n.Children[label] {
			switch c := el.(type) {
			case *cst.Node:
				if child := v.visit(c); child != nil {
					obj.Children[label] = append(obj.Children[label], child)
				}
			case *cst.Token:
				obj.Children[label] = append(obj.Children[label], &ast.Token{Range: rangeOf(c), Kind: c.Kind, Text: c.Image})
			}
		}
	}
	return obj
}

// ----------------------------------------------------------------------------
// Render State
// ----------------------------------------------------------------------------

func (v *visitor) visitRenderStateDecl(n *cst.Node) *ast.RenderStateDecl {
	decl := &ast.RenderStateDecl{Range: rangeOf(n), Kind: text(n, cst.LabelType), Name: text(n, cst.LabelName)}
	for _, p := range n.Nodes(cst.LabelProp) {
		prop := &ast.RenderStateProp{
			Range:    rangeOf(p),
			Property: text(p, cst.LabelProperty),
			Value:    v.visitOpt(p, cst.LabelValue),
		}
		if idx := p.Token(cst.LabelIndex); idx != nil {
			i, err := strconv.ParseInt(idx.Image, 0, 32)
			if err != nil || i < 0 {
				v.fail(idx, "invalid render state index %q", idx.Image)
				continue
			}
			prop.Index, prop.HasIndex = int(i), true
		}
		decl.Props = append(decl.Props, prop)
	}
	return decl
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (v *visitor) visitTypeSpec(n *cst.Node) *ast.TypeSpec {
	if n == nil {
		return nil
	}
	return &ast.TypeSpec{
		Range:     rangeOf(n),
		Precision: text(n, cst.LabelPrecision),
		Name:      text(n, cst.LabelName),
		ArraySize: v.visitOpt(n, cst.LabelArraySize),
	}
}

func (v *visitor) visitDeclarators(n *cst.Node) []*ast.Declarator {
	var out []*ast.Declarator
	for _, d := range n.Nodes(cst.LabelDeclarator) {
		out = append(out, &ast.Declarator{
			Range:     rangeOf(d),
			Name:      text(d, cst.LabelName),
			ArraySize: v.visitOpt(d, cst.LabelArraySize),
			Init:      v.visitOpt(d, cst.LabelInit),
		})
	}
	return out
}

func (v *visitor) visitVarDecl(n *cst.Node) *ast.VarDecl {
	if n == nil {
		return nil
	}
	return &ast.VarDecl{
		Range:       rangeOf(n),
		Qualifiers:  texts(n.Tokens(cst.LabelQualifier)),
		Type:        v.visitTypeSpec(n.Node(cst.LabelType)),
		Declarators: v.visitDeclarators(n),
	}
}

func (v *visitor) visitFunctionDecl(n *cst.Node) *ast.FunctionDecl {
	fn := &ast.FunctionDecl{
		Range:      rangeOf(n),
		ReturnType: v.visitTypeSpec(n.Node(cst.LabelReturnType)),
		Name:       text(n, cst.LabelName),
	}
	for _, p := range n.Nodes(cst.LabelParam) {
		fn.Params = append(fn.Params, &ast.Param{
			Range:      rangeOf(p),
			Qualifiers: texts(p.Tokens(cst.LabelQualifier)),
			Type:       v.visitTypeSpec(p.Node(cst.LabelType)),
			Name:       text(p, cst.LabelName),
			ArraySize:  v.visitOpt(p, cst.LabelArraySize),
		})
	}
	if body := n.Node(cst.LabelBody); body != nil {
		fn.Body = v.visitBlock(body)
	}
	return fn
}

// ----------------------------------------------------------------------------
// Statements and Expressions
// ----------------------------------------------------------------------------

func (v *visitor) visitBlock(n *cst.Node) *ast.Block {
	return &ast.Block{Range: rangeOf(n), Stmts: v.visitAll(n.Nodes(cst.LabelStmt))}
}

func (v *visitor) visitLiteral(n *cst.Node) *ast.Literal {
	t := n.Token(cst.LabelValue)
	lit := &ast.Literal{Range: rangeOf(n), Text: t.Image}
	switch t.Kind {
	case lexer.TokFloatLiteral:
		lit.Kind = ast.LiteralFloat
	case lexer.TokTrue, lexer.TokFalse:
		lit.Kind = ast.LiteralBool
	default:
		lit.Kind = ast.LiteralInt
	}
	return lit
}

// ----------------------------------------------------------------------------
// Macros
// ----------------------------------------------------------------------------

func (v *visitor) visitMacroDefine(n *cst.Node) *ast.MacroDefine {
	return &ast.MacroDefine{
		Range:        rangeOf(n),
		Name:         text(n, cst.LabelName),
		FunctionLike: n.Has(cst.LabelLParen),
		Params:       texts(n.Tokens(cst.LabelParam)),
		Value:        v.visitOpt(n, cst.LabelValue),
		Raw:          text(n, cst.LabelRaw),
	}
}

func condition(n *cst.Node) ast.MacroCondition {
	return ast.MacroCondition{
		Text:  text(n, cst.LabelText),
		Names: texts(n.Tokens(cst.LabelCondition)),
	}
}

func (v *visitor) visitMacroConditional(n *cst.Node) *ast.MacroConditional {
	m := &ast.MacroConditional{
		Range:     rangeOf(n),
		Directive: text(n, cst.LabelDirective),
		Condition: condition(n),
		Body:      v.visitAll(n.Nodes(cst.LabelBody)),
	}
	for _, b := range n.Nodes(cst.LabelElif) {
		m.Elifs = append(m.Elifs, v.visitBranch(b))
	}
	if b := n.Node(cst.LabelElse); b != nil {
		m.Else = v.visitBranch(b)
	}
	return m
}

func (v *visitor) visitBranch(n *cst.Node) *ast.MacroBranch {
	return &ast.MacroBranch{
		Range:     rangeOf(n),
		Directive: text(n, cst.LabelDirective),
		Condition: condition(n),
		Body:      v.visitAll(n.Nodes(cst.LabelBody)),
	}
}
