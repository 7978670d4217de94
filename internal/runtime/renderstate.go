package runtime

import (
	"fmt"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/diagnostic"
	"github.com/galacean/engine-sub008/pkg/engine"
)

// stateValue is one evaluated render state property.
type stateValue struct {
	key      engine.RenderStateKey
	value    any
	variable bool
}

// applyRenderState evaluates every property of decl into rs. A property
// whose key does not resolve discards the whole block.
func (c *Context) applyRenderState(decl *ast.RenderStateDecl, rs RenderStates) {
	values := make([]stateValue, 0, len(decl.Props))
	for _, prop := range decl.Props {
		key, ok := engine.LookupRenderStateKey(decl.Kind, prop.Property, prop.Index, prop.HasIndex)
		if !ok {
			c.reportUnknownKey(decl.Kind, prop)
			return
		}
		if v, ok := c.evaluate(prop.Value, key); ok {
			values = append(values, v)
		}
	}
	for _, v := range values {
		rs.set(v.key, v.value, v.variable)
	}
}

func (c *Context) reportUnknownKey(kind string, prop *ast.RenderStateProp) {
	name := prop.Property
	if prop.HasIndex {
		name = fmt.Sprintf("%s[%d]", name, prop.Index)
	}
	msg := fmt.Sprintf("Invalid %s property: %s", kind, name)
	if c.opts.Suggestions {
		if hint := closestMatch(prop.Property, engine.RenderStateProperties(kind)); hint != "" && hint != prop.Property {
			msg += fmt.Sprintf(", did you mean %q?", hint)
		}
	}
	c.diags.Error(diagnostic.CodeUnknownRenderStateKey, toRange(prop.Pos()), msg)
}

// applyRenderStateAssign applies the named block "Kind = name;" refers to.
func (c *Context) applyRenderStateAssign(n *ast.RenderStateAssign, rs RenderStates) {
	g := c.FindGlobal(n.Value)
	if g == nil {
		c.errorf(diagnostic.CodeUnknownRenderState, n, "Not found %s definition: %s", n.Kind, n.Value)
		return
	}
	decl, ok := g.Node.(*ast.RenderStateDecl)
	if !ok || decl.Kind != n.Kind {
		c.errorf(diagnostic.CodeUnknownRenderState, n, "%s is not a %s", n.Value, n.Kind)
		return
	}
	c.applyRenderState(decl, rs)
}

func (c *Context) applyRenderQueue(n *ast.RenderQueueAssign, rs RenderStates) {
	if v, ok := c.evaluate(n.Value, engine.RenderQueueTypeKey); ok {
		rs.set(v.key, v.value, v.variable)
	}
}

// evaluate turns a property value into a constant, or a variable when it
// names something the engine provides at runtime.
func (c *Context) evaluate(n ast.Node, key engine.RenderStateKey) (stateValue, bool) {
	switch v := n.(type) {
	case *ast.Ident:
		if key == engine.RenderQueueTypeKey {
			if ordinal, ok := engine.LookupEnum("RenderQueueType", v.Name); ok {
				return stateValue{key: key, value: ordinal}, true
			}
		}
		return stateValue{key: key, value: v.Name, variable: true}, true
	case nil:
		return stateValue{}, false
	}

	value, ok := c.constant(n)
	if !ok {
		return stateValue{}, false
	}
	return stateValue{key: key, value: value}, true
}

// constant evaluates a literal render state value.
func (c *Context) constant(n ast.Node) (any, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		if v.Kind == ast.LiteralBool {
			return v.Text == "true", true
		}
		if f, ok := v.Number(); ok {
			return f, true
		}
	case *ast.Paren:
		return c.constant(v.Expr)
	case *ast.Unary:
		if v.Op == "-" && !v.Postfix {
			if f, ok := c.number(v.Operand); ok {
				return -f, true
			}
		}
	case *ast.Member:
		if typ, ok := v.Object.(*ast.Ident); ok && engine.IsEnum(typ.Name) {
			if ordinal, ok := engine.LookupEnum(typ.Name, v.Name); ok {
				return ordinal, true
			}
			msg := fmt.Sprintf("Invalid %s member: %s", typ.Name, v.Name)
			if c.opts.Suggestions {
				if hint := closestMatch(v.Name, engine.EnumMembers(typ.Name)); hint != "" {
					msg += fmt.Sprintf(", did you mean %q?", hint)
				}
			}
			c.diags.Error(diagnostic.CodeUnknownRenderStateValue, toRange(v.Pos()), msg)
			return nil, false
		}
	case *ast.Call:
		switch v.CalleeName() {
		case "Color":
			if args, ok := c.numbers(v.Args, 4, []float64{0, 0, 0, 1}); ok {
				return engine.Color{R: args[0], G: args[1], B: args[2], A: args[3]}, true
			}
		case "vec4":
			if args, ok := c.numbers(v.Args, 4, []float64{0, 0, 0, 0}); ok {
				return engine.Vector4{X: args[0], Y: args[1], Z: args[2], W: args[3]}, true
			}
		}
	}
	c.errorf(diagnostic.CodeUnknownRenderStateValue, n, "Invalid render state value: %s", c.writer(ModeRenderState).render(n))
	return nil, false
}

func (c *Context) number(n ast.Node) (float64, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Number()
	case *ast.Paren:
		return c.number(v.Expr)
	case *ast.Unary:
		if v.Op == "-" && !v.Postfix {
			f, ok := c.number(v.Operand)
			return -f, ok
		}
	}
	return 0, false
}

// numbers evaluates up to limit numeric arguments, filling the rest from
// defaults.
func (c *Context) numbers(args []ast.Node, limit int, defaults []float64) ([]float64, bool) {
	if len(args) > limit {
		return nil, false
	}
	out := append([]float64(nil), defaults...)
	for i, arg := range args {
		f, ok := c.number(arg)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
