package lexer

import (
	"testing"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

func expectToken(t *testing.T, input string, expected TokenKind) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != expected {
		t.Errorf("input %q: expected %v, got %v", input, expected, tok.Kind)
	}
}

func expectTokenValue(t *testing.T, input string, expectedKind TokenKind, expectedValue string) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != expectedKind {
		t.Errorf("input %q: expected kind %v, got %v", input, expectedKind, tok.Kind)
	}
	if tok.Value != expectedValue {
		t.Errorf("input %q: expected value %q, got %q", input, expectedValue, tok.Value)
	}
}

func expectTokens(t *testing.T, input string, expected []TokenKind) {
	t.Helper()
	l := New(input)
	for i, exp := range expected {
		tok := l.Next()
		if tok.Kind != exp {
			t.Errorf("input %q token %d: expected %v, got %v", input, i, exp, tok.Kind)
		}
	}
}

func expectError(t *testing.T, input string) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != TokError {
		t.Errorf("input %q: expected error, got %v", input, tok.Kind)
	}
}

// ----------------------------------------------------------------------------
// Keyword Tests
// ----------------------------------------------------------------------------

func TestKeywords(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
	}{
		{"Shader", TokShader},
		{"SubShader", TokSubShader},
		{"Pass", TokPass},
		{"UsePass", TokUsePass},
		{"Tags", TokTags},
		{"BlendState", TokBlendState},
		{"DepthState", TokDepthState},
		{"StencilState", TokStencilState},
		{"RasterState", TokRasterState},
		{"VertexShader", TokVertexShader},
		{"FragmentShader", TokFragmentShader},
		{"RenderQueueType", TokRenderQueueType},
		{"struct", TokStruct},
		{"if", TokIf},
		{"else", TokElse},
		{"for", TokFor},
		{"while", TokWhile},
		{"do", TokDo},
		{"return", TokReturn},
		{"discard", TokDiscard},
		{"break", TokBreak},
		{"continue", TokContinue},
		{"const", TokConst},
		{"uniform", TokUniform},
		{"inout", TokInout},
		{"precision", TokPrecision},
		{"mediump", TokMediump},
		{"true", TokTrue},
		{"false", TokFalse},
	}

	for _, c := range cases {
		expectToken(t, c.input, c.kind)
	}
}

func TestIdentifiers(t *testing.T) {
	expectTokenValue(t, "foo", TokIdent, "foo")
	expectTokenValue(t, "_bar", TokIdent, "_bar")
	expectTokenValue(t, "gl_Position", TokIdent, "gl_Position")
	expectTokenValue(t, "vec4", TokIdent, "vec4")
	expectTokenValue(t, "shader", TokIdent, "shader") // keywords are case sensitive
	expectTokenValue(t, "ñandú", TokIdent, "ñandú")
}

// ----------------------------------------------------------------------------
// Literal Tests
// ----------------------------------------------------------------------------

func TestNumbers(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
	}{
		{"0", TokIntLiteral},
		{"42", TokIntLiteral},
		{"0xFF", TokIntLiteral},
		{"3u", TokIntLiteral},
		{"1.0", TokFloatLiteral},
		{"1.", TokFloatLiteral},
		{".5", TokFloatLiteral},
		{"1e3", TokFloatLiteral},
		{"2.5e-3", TokFloatLiteral},
		{"1f", TokFloatLiteral},
	}

	for _, c := range cases {
		expectTokenValue(t, c.input, c.kind, c.input)
	}
}

func TestSwizzleOnIntLiteral(t *testing.T) {
	expectTokens(t, "1.x", []TokenKind{TokIntLiteral, TokDot, TokIdent, TokEOF})
}

func TestStrings(t *testing.T) {
	expectTokenValue(t, `"Water"`, TokStringLiteral, "Water")
	expectTokenValue(t, `"pbr/Default/Forward"`, TokStringLiteral, "pbr/Default/Forward")
	expectTokenValue(t, `"say \"hi\""`, TokStringLiteral, `say "hi"`)
	expectError(t, `"unterminated`)
}

// ----------------------------------------------------------------------------
// Operator Tests
// ----------------------------------------------------------------------------

func TestOperators(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
	}{
		{"+", TokPlus},
		{"++", TokPlusPlus},
		{"+=", TokPlusEq},
		{"-", TokMinus},
		{"--", TokMinusMinus},
		{"-=", TokMinusEq},
		{"&&", TokAmpAmp},
		{"||", TokPipePipe},
		{"^^", TokCaretCaret},
		{"<<=", TokLtLtEq},
		{">>=", TokGtGtEq},
		{"<=", TokLtEq},
		{">=", TokGtEq},
		{"==", TokEqEq},
		{"!=", TokBangEq},
		{"?", TokQuestion},
		{":", TokColon},
		{".", TokDot},
	}

	for _, c := range cases {
		expectToken(t, c.input, c.kind)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	expectError(t, "$")
	expectError(t, "€")
}

// ----------------------------------------------------------------------------
// Trivia and Directives
// ----------------------------------------------------------------------------

func TestComments(t *testing.T) {
	expectTokens(t, "// line\nfoo /* block\n comment */ bar", []TokenKind{TokIdent, TokIdent, TokEOF})
}

func TestDefineDirective(t *testing.T) {
	expectTokens(t, "#define PI 3.14\nfloat x;", []TokenKind{
		TokDefine, TokIdent, TokFloatLiteral, TokDirectiveEnd,
		TokIdent, TokIdent, TokSemicolon, TokEOF,
	})
}

func TestDirectiveAtEOF(t *testing.T) {
	expectTokens(t, "#endif", []TokenKind{TokEndif, TokDirectiveEnd, TokEOF})
}

func TestDirectiveLineContinuation(t *testing.T) {
	expectTokens(t, "#define SUM a + \\\n b\nc", []TokenKind{
		TokDefine, TokIdent, TokIdent, TokPlus, TokIdent, TokDirectiveEnd, TokIdent, TokEOF,
	})
}

func TestConditionalDirectives(t *testing.T) {
	expectTokens(t, "#ifdef FOO\n#elif BAR\n#else\n#endif\n", []TokenKind{
		TokIfdef, TokIdent, TokDirectiveEnd,
		TokElif, TokIdent, TokDirectiveEnd,
		TokElseDirective, TokDirectiveEnd,
		TokEndif, TokDirectiveEnd,
		TokEOF,
	})
}

func TestRawDirective(t *testing.T) {
	expectTokenValue(t, "#extension GL_OES_standard_derivatives : enable\n",
		TokDirectiveRaw, "#extension GL_OES_standard_derivatives : enable")
}

func TestNewlineOutsideDirectiveIsTrivia(t *testing.T) {
	expectTokens(t, "a\n\nb", []TokenKind{TokIdent, TokIdent, TokEOF})
}

// ----------------------------------------------------------------------------
// Positions
// ----------------------------------------------------------------------------

func TestTokenPositions(t *testing.T) {
	tokens := New("Shader \"a\" {\n  Pass\n}").Tokenize()

	cases := []struct {
		kind      TokenKind
		line, col int
	}{
		{TokShader, 1, 1},
		{TokStringLiteral, 1, 8},
		{TokLBrace, 1, 12},
		{TokPass, 2, 3},
		{TokRBrace, 3, 1},
	}

	for i, c := range cases {
		tok := tokens[i]
		if tok.Kind != c.kind {
			t.Fatalf("token %d: expected %v, got %v", i, c.kind, tok.Kind)
		}
		if tok.StartPos.Line != c.line || tok.StartPos.Column != c.col {
			t.Errorf("token %d (%v): expected %d:%d, got %d:%d",
				i, c.kind, c.line, c.col, tok.StartPos.Line, tok.StartPos.Column)
		}
	}

	pass := tokens[3]
	if pass.EndPos.Line != 2 || pass.EndPos.Column != 7 {
		t.Errorf("Pass end: expected 2:7, got %d:%d", pass.EndPos.Line, pass.EndPos.Column)
	}
}

func TestPositionOfCRLF(t *testing.T) {
	pos := PositionOf("a\r\nb", 3)
	if pos.Line != 2 || pos.Column != 1 {
		t.Errorf("expected 2:1, got %d:%d", pos.Line, pos.Column)
	}
}
