package parser

import (
	"fmt"

	"github.com/galacean/engine-sub008/internal/cst"
	"github.com/galacean/engine-sub008/internal/lexer"
)

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseStatement() *cst.Node {
	tok := p.current()

	switch tok.Kind {
	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokIf:
		return p.parseIfStmt()

	case lexer.TokFor:
		return p.parseForStmt()

	case lexer.TokWhile:
		n := cst.NewNode(cst.RuleWhileStmt)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		p.parseCondition(n)
		n.Add(cst.LabelBody, p.parseStatement())
		return n

	case lexer.TokDo:
		n := cst.NewNode(cst.RuleDoWhileStmt)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		n.Add(cst.LabelBody, p.parseStatement())
		p.expectCover(n, lexer.TokWhile)
		p.parseCondition(n)
		p.expectCover(n, lexer.TokSemicolon)
		return n

	case lexer.TokReturn:
		n := cst.NewNode(cst.RuleReturnStmt)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		if !p.at(lexer.TokSemicolon) {
			n.Add(cst.LabelValue, p.parseExpression())
		}
		p.expectCover(n, lexer.TokSemicolon)
		return n

	case lexer.TokBreak, lexer.TokContinue, lexer.TokDiscard:
		n := cst.NewNode(cst.RuleJumpStmt)
		n.Add(cst.LabelKeyword, p.tok(p.advance()))
		p.expectCover(n, lexer.TokSemicolon)
		return n

	case lexer.TokSemicolon:
		n := cst.NewNode(cst.RuleExprStmt)
		n.Cover(p.tok(p.advance()))
		return n
	}

	if tok.Kind.IsDirective() {
		return p.parseDirective(p.parseStatement)
	}

	if p.isDeclStart() {
		n := cst.NewNode(cst.RuleDeclStmt)
		n.Add(cst.LabelDecl, p.parseVarDecl())
		return n
	}

	n := cst.NewNode(cst.RuleExprStmt)
	n.Add(cst.LabelExpr, p.parseExpression())
	p.expectCover(n, lexer.TokSemicolon)
	return n
}

// isDeclStart reports whether the current token begins a local variable
// declaration: a qualifier, or a type name followed by a variable name.
func (p *Parser) isDeclStart() bool {
	tok := p.current()
	switch {
	case tok.Kind == lexer.TokConst || tok.Kind.IsPrecision():
		return true
	case tok.Kind != lexer.TokIdent:
		return false
	case p.peek(1).Kind == lexer.TokIdent:
		return true
	}
	// float[3] a;
	return p.peek(1).Kind == lexer.TokLBracket && p.peek(3).Kind == lexer.TokRBracket &&
		p.peek(4).Kind == lexer.TokIdent
}

func (p *Parser) parseBlock() *cst.Node {
	n := cst.NewNode(cst.RuleBlock)
	if !p.expectCover(n, lexer.TokLBrace) {
		return n
	}

	p.parseItems(func() {
		n.Add(cst.LabelStmt, p.parseStatement())
	})

	p.expectCover(n, lexer.TokRBrace)
	return n
}

// parseCondition parses a parenthesized condition into the Cond label.
func (p *Parser) parseCondition(n *cst.Node) {
	if !p.expectCover(n, lexer.TokLParen) {
		return
	}
	n.Add(cst.LabelCond, p.parseExpression())
	p.expectCover(n, lexer.TokRParen)
}

func (p *Parser) parseIfStmt() *cst.Node {
	n := cst.NewNode(cst.RuleIfStmt)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	p.parseCondition(n)
	n.Add(cst.LabelThen, p.parseStatement())
	if p.at(lexer.TokElse) {
		n.Cover(p.tok(p.advance()))
		n.Add(cst.LabelElse, p.parseStatement())
	}
	return n
}

func (p *Parser) parseForStmt() *cst.Node {
	n := cst.NewNode(cst.RuleForStmt)
	n.Add(cst.LabelKeyword, p.tok(p.advance()))
	if !p.expectCover(n, lexer.TokLParen) {
		return n
	}

	// The init statement consumes its own semicolon.
	switch {
	case p.at(lexer.TokSemicolon):
		n.Cover(p.tok(p.advance()))
	case p.isDeclStart():
		decl := cst.NewNode(cst.RuleDeclStmt)
		decl.Add(cst.LabelDecl, p.parseVarDecl())
		n.Add(cst.LabelInit, decl)
	default:
		stmt := cst.NewNode(cst.RuleExprStmt)
		stmt.Add(cst.LabelExpr, p.parseExpression())
		p.expectCover(stmt, lexer.TokSemicolon)
		n.Add(cst.LabelInit, stmt)
	}

	if !p.at(lexer.TokSemicolon) {
		n.Add(cst.LabelCond, p.parseExpression())
	}
	p.expectCover(n, lexer.TokSemicolon)

	if !p.at(lexer.TokRParen) {
		n.Add(cst.LabelPost, p.parseExpression())
	}
	p.expectCover(n, lexer.TokRParen)

	n.Add(cst.LabelBody, p.parseStatement())
	return n
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// parseExpression parses a comma-separated expression sequence.
func (p *Parser) parseExpression() *cst.Node {
	first := p.parseAssignExpr()
	if !p.at(lexer.TokComma) {
		return first
	}

	n := cst.NewNode(cst.RuleSequence)
	n.Add(cst.LabelExpr, first)
	for p.at(lexer.TokComma) {
		n.Add(cst.LabelComma, p.tok(p.advance()))
		n.Add(cst.LabelExpr, p.parseAssignExpr())
	}
	return n
}

func isAssignOp(kind lexer.TokenKind) bool {
	switch kind {
	case lexer.TokEq, lexer.TokPlusEq, lexer.TokMinusEq, lexer.TokStarEq, lexer.TokSlashEq,
		lexer.TokPercentEq, lexer.TokAmpEq, lexer.TokPipeEq, lexer.TokCaretEq,
		lexer.TokLtLtEq, lexer.TokGtGtEq:
		return true
	}
	return false
}

func (p *Parser) parseAssignExpr() *cst.Node {
	left := p.parseTernaryExpr()
	if !isAssignOp(p.current().Kind) {
		return left
	}

	n := cst.NewNode(cst.RuleAssign)
	n.Add(cst.LabelLeft, left)
	n.Add(cst.LabelOp, p.tok(p.advance()))
	n.Add(cst.LabelRight, p.parseAssignExpr())
	return n
}

func (p *Parser) parseTernaryExpr() *cst.Node {
	cond := p.parseBinaryExpr(0)
	if !p.at(lexer.TokQuestion) {
		return cond
	}

	n := cst.NewNode(cst.RuleTernary)
	n.Add(cst.LabelCond, cond)
	n.Cover(p.tok(p.advance()))
	n.Add(cst.LabelThen, p.parseExpression())
	p.expectCover(n, lexer.TokColon)
	n.Add(cst.LabelElse, p.parseAssignExpr())
	return n
}

// binaryLevels lists binary operators from loosest to tightest binding.
var binaryLevels = [][]lexer.TokenKind{
	{lexer.TokPipePipe},
	{lexer.TokCaretCaret},
	{lexer.TokAmpAmp},
	{lexer.TokPipe},
	{lexer.TokCaret},
	{lexer.TokAmp},
	{lexer.TokEqEq, lexer.TokBangEq},
	{lexer.TokLt, lexer.TokGt, lexer.TokLtEq, lexer.TokGtEq},
	{lexer.TokLtLt, lexer.TokGtGt},
	{lexer.TokPlus, lexer.TokMinus},
	{lexer.TokStar, lexer.TokSlash, lexer.TokPercent},
}

func (p *Parser) parseBinaryExpr(level int) *cst.Node {
	if level == len(binaryLevels) {
		return p.parseUnaryExpr()
	}

	left := p.parseBinaryExpr(level + 1)
	for p.atAny(binaryLevels[level]) {
		n := cst.NewNode(cst.RuleBinary)
		n.Add(cst.LabelLeft, left)
		n.Add(cst.LabelOp, p.tok(p.advance()))
		n.Add(cst.LabelRight, p.parseBinaryExpr(level+1))
		left = n
	}
	return left
}

func (p *Parser) atAny(kinds []lexer.TokenKind) bool {
	cur := p.current().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnaryExpr() *cst.Node {
	switch p.current().Kind {
	case lexer.TokPlus, lexer.TokMinus, lexer.TokBang, lexer.TokTilde,
		lexer.TokPlusPlus, lexer.TokMinusMinus:
		n := cst.NewNode(cst.RuleUnary)
		n.Add(cst.LabelOp, p.tok(p.advance()))
		n.Add(cst.LabelOperand, p.parseUnaryExpr())
		return n
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() *cst.Node {
	left := p.parsePrimaryExpr()
	if left == nil {
		return nil
	}

	for {
		switch p.current().Kind {
		case lexer.TokDot:
			n := cst.NewNode(cst.RuleMember)
			n.Add(cst.LabelObject, left)
			n.Cover(p.tok(p.advance()))
			p.expectInto(n, cst.LabelName, lexer.TokIdent)
			left = n

		case lexer.TokLBracket:
			n := cst.NewNode(cst.RuleIndex)
			n.Add(cst.LabelObject, left)
			n.Cover(p.tok(p.advance()))
			n.Add(cst.LabelIndex, p.parseExpression())
			p.expectCover(n, lexer.TokRBracket)
			left = n

		case lexer.TokLParen:
			n := cst.NewNode(cst.RuleCall)
			n.Add(cst.LabelCallee, left)
			n.Cover(p.tok(p.advance()))
			p.parseArguments(n)
			p.expectCover(n, lexer.TokRParen)
			left = n

		case lexer.TokPlusPlus, lexer.TokMinusMinus:
			n := cst.NewNode(cst.RulePostfix)
			n.Add(cst.LabelOperand, left)
			n.Add(cst.LabelOp, p.tok(p.advance()))
			left = n

		default:
			return left
		}
	}
}

func (p *Parser) parseArguments(call *cst.Node) {
	if p.at(lexer.TokRParen) {
		return
	}
	// f(void)
	if p.at(lexer.TokIdent) && p.current().Value == "void" && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
		return
	}
	call.Add(cst.LabelArg, p.parseAssignExpr())
	for p.match(lexer.TokComma) {
		call.Add(cst.LabelArg, p.parseAssignExpr())
	}
}

func (p *Parser) parsePrimaryExpr() *cst.Node {
	tok := p.current()

	switch tok.Kind {
	case lexer.TokIntLiteral, lexer.TokFloatLiteral, lexer.TokTrue, lexer.TokFalse:
		n := cst.NewNode(cst.RuleLiteral)
		n.Add(cst.LabelValue, p.tok(p.advance()))
		return n

	case lexer.TokIdent, lexer.TokRenderQueueType:
		n := cst.NewNode(cst.RuleIdent)
		n.Add(cst.LabelName, p.tok(p.advance()))
		return n

	case lexer.TokLParen:
		n := cst.NewNode(cst.RuleParen)
		n.Cover(p.tok(p.advance()))
		n.Add(cst.LabelExpr, p.parseExpression())
		p.expectCover(n, lexer.TokRParen)
		return n
	}

	p.error(fmt.Sprintf("expected expression, got %s", tok.Kind))
	return nil
}
