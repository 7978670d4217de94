// Package parser provides ShaderLab parsing into a concrete syntax tree.
//
// The parser is a hand-written recursive descent parser over the lexer's
// token stream. It never stops at the first problem: errors are collected
// with their positions and parsing resumes at the next likely item start,
// so a single run reports every grammar error in the source.
//
// The resulting CST groups children by label (see package cst); turning it
// into typed AST nodes is the job of package visitor.
package parser

import (
	"fmt"

	"github.com/galacean/engine-sub008/internal/cst"
	"github.com/galacean/engine-sub008/internal/lexer"
)

// Parser parses ShaderLab source into a CST.
type Parser struct {
	source string
	tokens []lexer.Token
	pos    int

	// Errors
	errors []ParseError
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Pos     int
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// ErrorList is the error returned by ParseSource when the source has
// grammar errors.
type ErrorList []ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// New creates a new parser for the given source. Lexical errors are
// recorded immediately and their tokens dropped from the stream.
func New(source string) *Parser {
	p := &Parser{source: source}

	for _, tok := range lexer.New(source).Tokenize() {
		if tok.Kind == lexer.TokError {
			p.errorAt(tok, tok.Value)
			continue
		}
		p.tokens = append(p.tokens, tok)
	}

	return p
}

// Parse parses the source and returns the root Shader node together with
// every grammar error found.
func (p *Parser) Parse() (*cst.Node, []ParseError) {
	root := p.parseShader()

	if p.current().Kind != lexer.TokEOF {
		p.error(fmt.Sprintf("unexpected %s after shader body", p.current().Kind))
	}

	return root, p.errors
}

// ParseSource parses source and returns ErrorList if anything failed.
func ParseSource(source string) (*cst.Node, error) {
	root, errs := New(source).Parse()
	if len(errs) > 0 {
		return nil, ErrorList(errs)
	}
	return root, nil
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[pos]
}

func (p *Parser) eof() lexer.Token {
	if n := len(p.tokens); n > 0 && p.tokens[n-1].Kind == lexer.TokEOF {
		return p.tokens[n-1]
	}
	return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind lexer.TokenKind) bool {
	return p.current().Kind == kind
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != kind {
		p.error(fmt.Sprintf("expected %s, got %s", kind, tok.Kind))
		// Don't advance - let caller decide how to recover
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) {
	p.errorAt(p.current(), msg)
}

func (p *Parser) errorAt(tok lexer.Token, msg string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Pos:     tok.Start,
		Line:    tok.StartPos.Line,
		Column:  tok.StartPos.Column,
	})
}

// tok wraps a lexer token as a CST leaf.
func (p *Parser) tok(t lexer.Token) *cst.Token {
	return cst.FromLexer(t, p.source)
}

// expectInto expects kind and stores the token under label.
func (p *Parser) expectInto(n *cst.Node, label string, kind lexer.TokenKind) bool {
	t, ok := p.expect(kind)
	if ok {
		n.Add(label, p.tok(t))
	}
	return ok
}

// expectCover expects a punctuation token and widens n over it.
func (p *Parser) expectCover(n *cst.Node, kind lexer.TokenKind) bool {
	t, ok := p.expect(kind)
	if ok {
		n.Cover(p.tok(t))
	}
	return ok
}

// ----------------------------------------------------------------------------
// Shader Structure
// ----------------------------------------------------------------------------

// scope tells parseGlobal which block the item sits in.
type scope uint8

const (
	scopeShader scope = iota
	scopeSubShader
	scopePass
)

func (p *Parser) parseShader() *cst.Node {
	kw, ok := p.expect(lexer.TokShader)
	if !ok {
		return nil
	}
	n := cst.NewNode(cst.RuleShader)
	n.Add(cst.LabelKeyword, p.tok(kw))
	p.expectInto(n, cst.LabelName, lexer.TokStringLiteral)
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	p.parseItems(func() {
		if p.at(lexer.TokSubShader) {
			n.Add(cst.LabelSubShader, p.parseSubShader())
			return
		}
		n.Add(cst.LabelGlobal, p.parseGlobal(scopeShader))
	})

	p.expectCover(n, lexer.TokRBrace)
	return n
}

func (p *Parser) parseSubShader() *cst.Node {
	n := cst.NewNode(cst.RuleSubShader)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	p.expectInto(n, cst.LabelName, lexer.TokStringLiteral)
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	p.parseItems(func() {
		switch p.current().Kind {
		case lexer.TokTags:
			n.Add(cst.LabelTags, p.parseTags())
		case lexer.TokPass:
			n.Add(cst.LabelPass, p.parsePass())
		case lexer.TokUsePass:
			n.Add(cst.LabelPass, p.parseUsePass())
		default:
			n.Add(cst.LabelGlobal, p.parseGlobal(scopeSubShader))
		}
	})

	p.expectCover(n, lexer.TokRBrace)
	return n
}

func (p *Parser) parsePass() *cst.Node {
	n := cst.NewNode(cst.RulePass)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	p.expectInto(n, cst.LabelName, lexer.TokStringLiteral)
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	p.parseItems(func() {
		if p.at(lexer.TokTags) {
			n.Add(cst.LabelTags, p.parseTags())
			return
		}
		item := p.parseGlobal(scopePass)
		if isPassProperty(item) {
			n.Add(cst.LabelProperty, item)
		} else {
			n.Add(cst.LabelGlobal, item)
		}
	})

	p.expectCover(n, lexer.TokRBrace)
	return n
}

// isPassProperty reports whether item configures the pass itself rather
// than declaring a referenceable global.
func isPassProperty(item *cst.Node) bool {
	if item == nil {
		return false
	}
	switch item.Rule {
	case cst.RuleRenderStateAssign, cst.RuleRenderQueueAssign, cst.RuleShaderAssign:
		return true
	case cst.RuleRenderStateDecl:
		return !item.Has(cst.LabelName)
	}
	return false
}

func (p *Parser) parseUsePass() *cst.Node {
	n := cst.NewNode(cst.RuleUsePass)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	p.expectInto(n, cst.LabelPath, lexer.TokStringLiteral)
	if t := p.current(); t.Kind == lexer.TokSemicolon {
		n.Cover(p.tok(p.advance()))
	}
	return n
}

// parseItems runs item until the closing brace, skipping a token whenever
// item makes no progress.
func (p *Parser) parseItems(item func()) {
	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		start := p.pos
		item()
		if p.pos == start {
			p.advance()
		}
	}
}

func (p *Parser) parseTags() *cst.Node {
	n := cst.NewNode(cst.RuleTags)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		start := p.pos
		entry := cst.NewNode(cst.RuleTagEntry)
		if p.expectInto(entry, cst.LabelKey, lexer.TokIdent) && p.expectCover(entry, lexer.TokEq) {
			switch p.current().Kind {
			case lexer.TokStringLiteral, lexer.TokIntLiteral, lexer.TokFloatLiteral,
				lexer.TokTrue, lexer.TokFalse:
				entry.Add(cst.LabelValue, p.tok(p.advance()))
				n.Add(cst.LabelEntry, entry)
			default:
				p.error(fmt.Sprintf("expected tag value, got %s", p.current().Kind))
			}
		}
		if !p.match(lexer.TokComma) && !p.match(lexer.TokSemicolon) && !p.at(lexer.TokRBrace) {
			if p.pos == start {
				p.advance()
			}
		}
	}

	p.expectCover(n, lexer.TokRBrace)
	return n
}

// ----------------------------------------------------------------------------
// Global Items
// ----------------------------------------------------------------------------

// parseGlobal parses one item that may appear directly in a Shader,
// SubShader or Pass body. It returns nil when nothing could be parsed.
func (p *Parser) parseGlobal(s scope) *cst.Node {
	tok := p.current()

	switch {
	case tok.Kind.IsDirective():
		return p.parseDirective(func() *cst.Node { return p.parseGlobal(s) })

	case tok.Kind == lexer.TokStruct:
		return p.parseStructDecl()

	case tok.Kind == lexer.TokPrecision:
		return p.parsePrecisionDecl()

	case tok.Kind.IsRenderState():
		return p.parseRenderState(s)

	case tok.Kind == lexer.TokVertexShader || tok.Kind == lexer.TokFragmentShader:
		if s != scopePass {
			p.error(fmt.Sprintf("%s assignment is only allowed inside a Pass", tok.Kind))
		}
		return p.parseShaderAssign()

	case tok.Kind == lexer.TokRenderQueueType:
		if s != scopePass {
			p.error("RenderQueueType assignment is only allowed inside a Pass")
		}
		return p.parseRenderQueueAssign()

	case tok.Kind == lexer.TokConst || tok.Kind == lexer.TokUniform ||
		tok.Kind == lexer.TokIdent || tok.Kind.IsPrecision():
		return p.parseFunctionOrVar()

	case tok.Kind == lexer.TokSemicolon:
		p.advance()
		return nil
	}

	p.error(fmt.Sprintf("unexpected %s", tok.Kind))
	return nil
}

func (p *Parser) parseShaderAssign() *cst.Node {
	n := cst.NewNode(cst.RuleShaderAssign)
	n.Add(cst.LabelStage, p.tok(p.advance()))
	if p.expectCover(n, lexer.TokEq) {
		p.expectInto(n, cst.LabelValue, lexer.TokIdent)
	}
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

func (p *Parser) parseRenderQueueAssign() *cst.Node {
	n := cst.NewNode(cst.RuleRenderQueueAssign)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	if p.expectCover(n, lexer.TokEq) {
		n.Add(cst.LabelValue, p.parseTernaryExpr())
	}
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

// parseRenderState parses one of
//
//	BlendState { ... }
//	BlendState name { ... }
//	BlendState = name;
func (p *Parser) parseRenderState(s scope) *cst.Node {
	typ := p.advance()

	if p.at(lexer.TokEq) {
		n := cst.NewNode(cst.RuleRenderStateAssign)
		n.Add(cst.LabelType, p.tok(typ))
		n.Cover(p.tok(p.advance()))
		p.expectInto(n, cst.LabelValue, lexer.TokIdent)
		p.expectCover(n, lexer.TokSemicolon)
		if s != scopePass {
			p.errorAt(typ, fmt.Sprintf("%s assignment is only allowed inside a Pass", typ.Kind))
		}
		return n
	}

	n := cst.NewNode(cst.RuleRenderStateDecl)
	n.Add(cst.LabelType, p.tok(typ))
	if p.at(lexer.TokIdent) {
		n.Add(cst.LabelName, p.tok(p.advance()))
	} else if s != scopePass {
		p.errorAt(typ, fmt.Sprintf("%s outside a Pass must be named", typ.Kind))
	}
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		start := p.pos
		if prop := p.parseRenderStateProp(); prop != nil {
			n.Add(cst.LabelProp, prop)
		}
		if p.pos == start {
			p.advance()
		}
	}

	p.expectCover(n, lexer.TokRBrace)
	return n
}

func (p *Parser) parseRenderStateProp() *cst.Node {
	n := cst.NewNode(cst.RuleRenderStateProp)
	if !p.expectInto(n, cst.LabelProperty, lexer.TokIdent) {
		return nil
	}
	if p.at(lexer.TokLBracket) {
		n.Cover(p.tok(p.advance()))
		p.expectInto(n, cst.LabelIndex, lexer.TokIntLiteral)
		p.expectCover(n, lexer.TokRBracket)
	}
	if p.expectCover(n, lexer.TokEq) {
		n.Add(cst.LabelValue, p.parseTernaryExpr())
	}
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseFunctionOrVar() *cst.Node {
	var quals []lexer.Token
	for p.at(lexer.TokConst) || p.at(lexer.TokUniform) {
		quals = append(quals, p.advance())
	}

	typ := p.parseTypeSpec()
	if typ == nil {
		return nil
	}

	if len(quals) == 0 && p.at(lexer.TokIdent) && p.peek(1).Kind == lexer.TokLParen {
		return p.parseFunctionDecl(typ)
	}

	n := cst.NewNode(cst.RuleVarDecl)
	for _, q := range quals {
		n.Add(cst.LabelQualifier, p.tok(q))
	}
	n.Add(cst.LabelType, typ)
	p.finishVarDecl(n)
	return n
}

// parseVarDecl parses a local or global variable declaration including
// its qualifiers and trailing semicolon.
func (p *Parser) parseVarDecl() *cst.Node {
	n := cst.NewNode(cst.RuleVarDecl)
	for p.at(lexer.TokConst) || p.at(lexer.TokUniform) {
		n.Add(cst.LabelQualifier, p.tok(p.advance()))
	}
	typ := p.parseTypeSpec()
	if typ == nil {
		return nil
	}
	n.Add(cst.LabelType, typ)
	p.finishVarDecl(n)
	return n
}

func (p *Parser) finishVarDecl(n *cst.Node) {
	for {
		d := cst.NewNode(cst.RuleDeclarator)
		if !p.expectInto(d, cst.LabelName, lexer.TokIdent) {
			break
		}
		p.parseArraySize(d)
		if p.at(lexer.TokEq) {
			d.Cover(p.tok(p.advance()))
			d.Add(cst.LabelInit, p.parseAssignExpr())
		}
		n.Add(cst.LabelDeclarator, d)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expectCover(n, lexer.TokSemicolon)
}

func (p *Parser) parseArraySize(n *cst.Node) {
	if !p.at(lexer.TokLBracket) {
		return
	}
	n.Cover(p.tok(p.advance()))
	n.Add(cst.LabelArraySize, p.parseExpression())
	p.expectCover(n, lexer.TokRBracket)
}

// parseTypeSpec parses an optional precision qualifier, a type name and an
// optional array size written directly after the type.
func (p *Parser) parseTypeSpec() *cst.Node {
	n := cst.NewNode(cst.RuleTypeSpec)
	if p.current().Kind.IsPrecision() {
		n.Add(cst.LabelPrecision, p.tok(p.advance()))
	}
	if !p.expectInto(n, cst.LabelName, lexer.TokIdent) {
		return nil
	}
	if p.at(lexer.TokLBracket) && p.peek(2).Kind == lexer.TokRBracket && p.peek(3).Kind == lexer.TokIdent {
		p.parseArraySize(n)
	}
	return n
}

func (p *Parser) parseFunctionDecl(returnType *cst.Node) *cst.Node {
	n := cst.NewNode(cst.RuleFunctionDecl)
	n.Add(cst.LabelReturnType, returnType)
	n.Add(cst.LabelName, p.tok(p.advance()))
	p.expectCover(n, lexer.TokLParen)

	// f(void) declares no parameters.
	if p.at(lexer.TokIdent) && p.current().Value == "void" && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
	}

	for !p.at(lexer.TokRParen) && !p.at(lexer.TokEOF) {
		if param := p.parseParam(); param != nil {
			n.Add(cst.LabelParam, param)
		}
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expectCover(n, lexer.TokRParen)

	if p.at(lexer.TokSemicolon) {
		// Prototype
		n.Cover(p.tok(p.advance()))
		return n
	}
	n.Add(cst.LabelBody, p.parseBlock())
	return n
}

func (p *Parser) parseParam() *cst.Node {
	n := cst.NewNode(cst.RuleParam)
	for {
		switch p.current().Kind {
		case lexer.TokIn, lexer.TokOut, lexer.TokInout, lexer.TokConst:
			n.Add(cst.LabelQualifier, p.tok(p.advance()))
			continue
		}
		break
	}
	typ := p.parseTypeSpec()
	if typ == nil {
		return nil
	}
	n.Add(cst.LabelType, typ)
	if p.at(lexer.TokIdent) {
		n.Add(cst.LabelName, p.tok(p.advance()))
		p.parseArraySize(n)
	}
	return n
}

func (p *Parser) parseStructDecl() *cst.Node {
	n := cst.NewNode(cst.RuleStructDecl)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	p.expectInto(n, cst.LabelName, lexer.TokIdent)
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	p.parseItems(func() {
		n.Add(cst.LabelMember, p.parseField())
	})

	p.expectCover(n, lexer.TokRBrace)
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

func (p *Parser) parseField() *cst.Node {
	if p.current().Kind.IsDirective() {
		return p.parseDirective(p.parseField)
	}

	n := cst.NewNode(cst.RuleField)
	typ := p.parseTypeSpec()
	if typ == nil {
		return nil
	}
	n.Add(cst.LabelType, typ)
	for {
		d := cst.NewNode(cst.RuleDeclarator)
		if !p.expectInto(d, cst.LabelName, lexer.TokIdent) {
			break
		}
		p.parseArraySize(d)
		n.Add(cst.LabelDeclarator, d)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

func (p *Parser) parsePrecisionDecl() *cst.Node {
	n := cst.NewNode(cst.RulePrecisionDecl)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	if !p.current().Kind.IsPrecision() {
		p.error(fmt.Sprintf("expected precision qualifier, got %s", p.current().Kind))
		return n
	}
	n.Add(cst.LabelPrecision, p.tok(p.advance()))
	if typ := p.parseTypeSpec(); typ != nil {
		n.Add(cst.LabelType, typ)
	}
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

// ----------------------------------------------------------------------------
// Directives
// ----------------------------------------------------------------------------

// parseDirective parses a preprocessor directive. For conditional blocks,
// item parses one element of each branch body, so the same code handles
// conditionals among globals, statements and struct fields.
func (p *Parser) parseDirective(item func() *cst.Node) *cst.Node {
	switch p.current().Kind {
	case lexer.TokDefine:
		return p.parseDefine()

	case lexer.TokUndef:
		n := cst.NewNode(cst.RuleMacroUndef)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		p.expectInto(n, cst.LabelName, lexer.TokIdent)
		p.endDirective()
		return n

	case lexer.TokInclude:
		n := cst.NewNode(cst.RuleMacroInclude)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		p.expectInto(n, cst.LabelPath, lexer.TokStringLiteral)
		p.endDirective()
		return n

	case lexer.TokIfdef, lexer.TokIfndef, lexer.TokIfDirective:
		return p.parseConditional(item)

	case lexer.TokDirectiveRaw:
		n := cst.NewNode(cst.RuleMacroRaw)
		n.Add(cst.LabelText, p.tok(p.advance()))
		return n
	}

	p.error(fmt.Sprintf("%s without matching #if", p.current().Kind))
	p.advance()
	p.lineTokens()
	return nil
}

// lineTokens consumes the rest of a directive line, including its end
// marker, and returns the tokens in between.
func (p *Parser) lineTokens() []lexer.Token {
	var tokens []lexer.Token
	for !p.at(lexer.TokDirectiveEnd) && !p.at(lexer.TokEOF) {
		tokens = append(tokens, p.advance())
	}
	p.match(lexer.TokDirectiveEnd)
	return tokens
}

// endDirective reports leftover tokens on a directive line.
func (p *Parser) endDirective() {
	if extra := p.lineTokens(); len(extra) > 0 {
		p.errorAt(extra[0], fmt.Sprintf("unexpected %s in directive", extra[0].Kind))
	}
}

// rawText joins tokens into a single leaf holding their original source
// text, line continuations included.
func (p *Parser) rawText(tokens []lexer.Token) *cst.Token {
	first, last := tokens[0], tokens[len(tokens)-1]
	return &cst.Token{
		Kind:     lexer.TokDirectiveRaw,
		Image:    p.source[first.Start:last.End],
		Value:    p.source[first.Start:last.End],
		Location: cst.Range{Start: first.StartPos, End: last.EndPos},
	}
}

func (p *Parser) parseDefine() *cst.Node {
	n := cst.NewNode(cst.RuleMacroDefine)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))

	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		p.lineTokens()
		return nil
	}
	n.Add(cst.LabelName, p.tok(name))

	// Function-like only when the parenthesis touches the name.
	if lp := p.current(); lp.Kind == lexer.TokLParen && lp.Start == name.End {
		n.Add(cst.LabelLParen, p.tok(p.advance()))
		for !p.at(lexer.TokRParen) && !p.at(lexer.TokDirectiveEnd) && !p.at(lexer.TokEOF) {
			if !p.expectInto(n, cst.LabelParam, lexer.TokIdent) {
				break
			}
			if !p.match(lexer.TokComma) {
				break
			}
		}
		p.expectCover(n, lexer.TokRParen)
	}

	rest := p.lineTokens()
	if len(rest) == 0 {
		return n
	}
	if value := p.subExpression(rest); value != nil {
		n.Add(cst.LabelValue, value)
	} else {
		n.Add(cst.LabelRaw, p.rawText(rest))
	}
	return n
}

// subExpression parses tokens as one complete expression, returning nil
// when they do not form one. Errors of the attempt are discarded.
func (p *Parser) subExpression(tokens []lexer.Token) *cst.Node {
	sub := &Parser{source: p.source, tokens: append(append([]lexer.Token(nil), tokens...), p.eof())}
	expr := sub.parseExpression()
	if len(sub.errors) > 0 || !sub.at(lexer.TokEOF) {
		return nil
	}
	return expr
}

// addCondition stores a directive condition both as raw text and as the
// identifier tokens it mentions.
func (p *Parser) addCondition(n *cst.Node, tokens []lexer.Token) {
	if len(tokens) == 0 {
		return
	}
	n.Add(cst.LabelText, p.rawText(tokens))
	for _, t := range tokens {
		if t.Kind == lexer.TokIdent {
			n.Add(cst.LabelCondition, p.tok(t))
		}
	}
}

func (p *Parser) parseConditional(item func() *cst.Node) *cst.Node {
	n := cst.NewNode(cst.RuleMacroConditional)
	dir := p.advance()
	n.Add(cst.LabelDirective, p.tok(dir))
	cond := p.lineTokens()
	if len(cond) == 0 {
		p.errorAt(dir, fmt.Sprintf("%s requires a condition", dir.Kind))
	}
	p.addCondition(n, cond)
	p.parseBranchBody(n, item)

	for p.at(lexer.TokElif) {
		branch := cst.NewNode(cst.RuleMacroBranch)
		branch.Add(cst.LabelDirective, p.tok(p.advance()))
		p.addCondition(branch, p.lineTokens())
		p.parseBranchBody(branch, item)
		n.Add(cst.LabelElif, branch)
	}

	if p.at(lexer.TokElseDirective) {
		branch := cst.NewNode(cst.RuleMacroBranch)
		branch.Add(cst.LabelDirective, p.tok(p.advance()))
		p.lineTokens()
		p.parseBranchBody(branch, item)
		n.Add(cst.LabelElse, branch)
	}

	if endif, ok := p.expect(lexer.TokEndif); ok {
		n.Add(cst.LabelEndif, p.tok(endif))
		p.lineTokens()
	}
	return n
}

func (p *Parser) parseBranchBody(n *cst.Node, item func() *cst.Node) {
	for {
		switch p.current().Kind {
		case lexer.TokElif, lexer.TokElseDirective, lexer.TokEndif, lexer.TokRBrace, lexer.TokEOF:
			return
		}
		start := p.pos
		n.Add(cst.LabelBody, item())
		if p.pos == start {
			p.advance()
		}
	}
}
