// Package cst defines the concrete syntax tree produced by the grammar layer.
//
// A CST node is a rule instance whose children (sub-rules and raw tokens)
// are grouped under labels. The AST visitor only relies on this interface:
// children by label, and tokens with their positions and literal text.
package cst

import (
	"sort"

	"github.com/galacean/engine-sub008/internal/lexer"
)

// Range is a source range; Start is inclusive, End exclusive.
type Range struct {
	Start lexer.Position
	End   lexer.Position
}

// Before reports whether r starts before o.
func (r Range) Before(o Range) bool {
	if r.Start.Line != o.Start.Line {
		return r.Start.Line < o.Start.Line
	}
	return r.Start.Column < o.Start.Column
}

// Element is either a *Node or a *Token.
type Element interface {
	Pos() Range
}

// Token is a leaf of the tree.
type Token struct {
	Kind     lexer.TokenKind
	Image    string // Literal text as written in source
	Value    string // Lexer value (unquoted for strings)
	Location Range
}

// Pos returns the token range.
func (t *Token) Pos() Range { return t.Location }

// FromLexer wraps a lexer token.
func FromLexer(tok lexer.Token, source string) *Token {
	return &Token{
		Kind:     tok.Kind,
		Image:    tok.Text(source),
		Value:    tok.Value,
		Location: Range{Start: tok.StartPos, End: tok.EndPos},
	}
}

// Node is an instance of a grammar rule.
type Node struct {
	Rule     string
	Children map[string][]Element
	Location Range
}

// NewNode creates an empty node for rule.
func NewNode(rule string) *Node {
	return &Node{Rule: rule, Children: make(map[string][]Element)}
}

// Pos returns the node range.
func (n *Node) Pos() Range { return n.Location }

// Add appends a child under label and widens the node range to cover it.
// Nil children are ignored.
func (n *Node) Add(label string, el Element) {
	switch v := el.(type) {
	case nil:
		return
	case *Node:
		if v == nil {
			return
		}
	case *Token:
		if v == nil {
			return
		}
	}
	n.Children[label] = append(n.Children[label], el)
	n.extend(el.Pos())
}

// Cover widens the node range to include el without storing it as a child.
// Used for punctuation that carries no meaning of its own.
func (n *Node) Cover(el Element) {
	if el != nil {
		n.extend(el.Pos())
	}
}

func (n *Node) extend(r Range) {
	empty := n.Location == Range{}
	if empty || r.Before(n.Location) {
		n.Location.Start = r.Start
	}
	end := n.Location.End
	if empty || r.End.Line > end.Line || (r.End.Line == end.Line && r.End.Column > end.Column) {
		n.Location.End = r.End
	}
}

// Has reports whether any child is stored under label.
func (n *Node) Has(label string) bool {
	return len(n.Children[label]) > 0
}

// Node returns the first child rule under label, or nil.
func (n *Node) Node(label string) *Node {
	for _, el := range n.Children[label] {
		if node, ok := el.(*Node); ok {
			return node
		}
	}
	return nil
}

// Nodes returns all child rules under label in insertion order.
func (n *Node) Nodes(label string) []*Node {
	var nodes []*Node
	for _, el := range n.Children[label] {
		if node, ok := el.(*Node); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// Token returns the first token under label, or nil.
func (n *Node) Token(label string) *Token {
	for _, el := range n.Children[label] {
		if tok, ok := el.(*Token); ok {
			return tok
		}
	}
	return nil
}

// Tokens returns all tokens under label in insertion order.
func (n *Node) Tokens(label string) []*Token {
	var tokens []*Token
	for _, el := range n.Children[label] {
		if tok, ok := el.(*Token); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Labels returns the child labels in sorted order.
func (n *Node) Labels() []string {
	labels := make([]string, 0, len(n.Children))
	for label := range n.Children {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
