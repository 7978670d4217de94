package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch v := n.(type) {
	case *Shader:
		add(v.Globals...)
		for _, s := range v.SubShaders {
			add(s)
		}
	case *SubShader:
		add(v.Globals...)
		add(v.Passes...)
	case *Pass:
		add(v.Globals...)
		add(v.Properties...)
	case *UsePass, *RenderStateAssign, *ShaderAssign, *MacroUndef, *MacroInclude,
		*MacroRaw, *JumpStmt, *Ident, *Literal, *Token:
		// leaves
	case *RenderStateDecl:
		for _, p := range v.Props {
			add(p)
		}
	case *RenderStateProp:
		add(v.Value)
	case *RenderQueueAssign:
		add(v.Value)
	case *FunctionDecl:
		add(v.ReturnType)
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *Param:
		add(v.Type, v.ArraySize)
	case *TypeSpec:
		add(v.ArraySize)
	case *StructDecl:
		add(v.Members...)
	case *Field:
		add(v.Type)
		for _, d := range v.Declarators {
			add(d)
		}
	case *VarDecl:
		add(v.Type)
		for _, d := range v.Declarators {
			add(d)
		}
	case *Declarator:
		add(v.ArraySize, v.Init)
	case *PrecisionDecl:
		add(v.Type)
	case *MacroDefine:
		add(v.Value)
	case *MacroConditional:
		add(v.Body...)
		for _, b := range v.Elifs {
			add(b.Body...)
		}
		if v.Else != nil {
			add(v.Else.Body...)
		}
	case *Block:
		add(v.Stmts...)
	case *ExprStmt:
		add(v.Expr)
	case *DeclStmt:
		add(v.Decl)
	case *IfStmt:
		add(v.Cond, v.Then, v.Else)
	case *ForStmt:
		add(v.Init, v.Cond, v.Post, v.Body)
	case *WhileStmt:
		add(v.Cond, v.Body)
	case *DoWhileStmt:
		add(v.Body, v.Cond)
	case *ReturnStmt:
		add(v.Value)
	case *Binary:
		add(v.Left, v.Right)
	case *Unary:
		add(v.Operand)
	case *Assign:
		add(v.Left, v.Right)
	case *Ternary:
		add(v.Cond, v.Then, v.Else)
	case *Call:
		add(v.Callee)
		add(v.Args...)
	case *Index:
		add(v.Object, v.Index)
	case *Member:
		add(v.Object)
	case *Paren:
		add(v.Expr)
	case *Object:
		add(v.Sorted()...)
	}
	return out
}

// isNilNode catches typed nil pointers stored in a Node interface.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *TypeSpec:
		return v == nil
	case *Block:
		return v == nil
	case *VarDecl:
		return v == nil
	case *SubShader:
		return v == nil
	case *Param:
		return v == nil
	case *Declarator:
		return v == nil
	case *RenderStateProp:
		return v == nil
	}
	return false
}

// Inspect traverses the tree rooted at n in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
