// Package lexer provides tokenization for ShaderLab source code.
//
// The lexer converts a ShaderLab source string into a sequence of tokens,
// handling:
// - ShaderLab block keywords (Shader, SubShader, Pass, render states)
// - GLSL keywords, identifiers and numeric literals
// - String literals for shader, pass and tag names
// - Operators and punctuation
// - Comments (line and block)
// - Preprocessor directive lines (#define, #ifdef, ...)
package lexer

import (
	"unicode"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Token Types
// ----------------------------------------------------------------------------

// TokenKind represents the type of a token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	// Literals
	TokIntLiteral
	TokFloatLiteral
	TokStringLiteral
	TokTrue
	TokFalse

	// Identifiers
	TokIdent

	// ShaderLab keywords
	TokShader
	TokSubShader
	TokPass
	TokUsePass
	TokTags
	TokBlendState
	TokDepthState
	TokStencilState
	TokRasterState
	TokVertexShader
	TokFragmentShader
	TokRenderQueueType

	// GLSL keywords
	TokStruct
	TokIf
	TokElse
	TokFor
	TokWhile
	TokDo
	TokReturn
	TokDiscard
	TokBreak
	TokContinue
	TokConst
	TokUniform
	TokIn
	TokOut
	TokInout
	TokPrecision
	TokHighp
	TokMediump
	TokLowp

	// Preprocessor directives
	TokDefine
	TokUndef
	TokIfdef
	TokIfndef
	TokIfDirective
	TokElif
	TokElseDirective
	TokEndif
	TokInclude
	TokDirectiveRaw // #version, #extension, #pragma: whole line kept verbatim
	TokDirectiveEnd // end of a directive's logical line

	// Operators
	TokPlus     // +
	TokMinus    // -
	TokStar     // *
	TokSlash    // /
	TokPercent  // %
	TokAmp      // &
	TokPipe     // |
	TokCaret    // ^
	TokTilde    // ~
	TokBang     // !
	TokLt       // <
	TokGt       // >
	TokEq       // =
	TokDot      // .
	TokQuestion // ?

	// Multi-char operators
	TokPlusPlus   // ++
	TokMinusMinus // --
	TokAmpAmp     // &&
	TokPipePipe   // ||
	TokCaretCaret // ^^
	TokLtLt       // <<
	TokGtGt       // >>
	TokLtEq       // <=
	TokGtEq       // >=
	TokEqEq       // ==
	TokBangEq     // !=
	TokPlusEq     // +=
	TokMinusEq    // -=
	TokStarEq     // *=
	TokSlashEq    // /=
	TokPercentEq  // %=
	TokAmpEq      // &=
	TokPipeEq     // |=
	TokCaretEq    // ^=
	TokLtLtEq     // <<=
	TokGtGtEq     // >>=

	// Delimiters
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokSemicolon // ;
	TokColon     // :
	TokComma     // ,
)

// String returns the string representation of a token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

var tokenNames = [...]string{
	TokError:         "error",
	TokEOF:           "EOF",
	TokIntLiteral:    "int",
	TokFloatLiteral:  "float",
	TokStringLiteral: "string",
	TokTrue:          "true",
	TokFalse:         "false",
	TokIdent:         "identifier",
	// ShaderLab keywords
	TokShader:          "Shader",
	TokSubShader:       "SubShader",
	TokPass:            "Pass",
	TokUsePass:         "UsePass",
	TokTags:            "Tags",
	TokBlendState:      "BlendState",
	TokDepthState:      "DepthState",
	TokStencilState:    "StencilState",
	TokRasterState:     "RasterState",
	TokVertexShader:    "VertexShader",
	TokFragmentShader:  "FragmentShader",
	TokRenderQueueType: "RenderQueueType",
	// GLSL keywords
	TokStruct:    "struct",
	TokIf:        "if",
	TokElse:      "else",
	TokFor:       "for",
	TokWhile:     "while",
	TokDo:        "do",
	TokReturn:    "return",
	TokDiscard:   "discard",
	TokBreak:     "break",
	TokContinue:  "continue",
	TokConst:     "const",
	TokUniform:   "uniform",
	TokIn:        "in",
	TokOut:       "out",
	TokInout:     "inout",
	TokPrecision: "precision",
	TokHighp:     "highp",
	TokMediump:   "mediump",
	TokLowp:      "lowp",
	// Directives
	TokDefine:        "#define",
	TokUndef:         "#undef",
	TokIfdef:         "#ifdef",
	TokIfndef:        "#ifndef",
	TokIfDirective:   "#if",
	TokElif:          "#elif",
	TokElseDirective: "#else",
	TokEndif:         "#endif",
	TokInclude:       "#include",
	TokDirectiveRaw:  "directive",
	TokDirectiveEnd:  "end of directive",
	// Operators
	TokPlus:       "+",
	TokMinus:      "-",
	TokStar:       "*",
	TokSlash:      "/",
	TokPercent:    "%",
	TokAmp:        "&",
	TokPipe:       "|",
	TokCaret:      "^",
	TokTilde:      "~",
	TokBang:       "!",
	TokLt:         "<",
	TokGt:         ">",
	TokEq:         "=",
	TokDot:        ".",
	TokQuestion:   "?",
	TokPlusPlus:   "++",
	TokMinusMinus: "--",
	TokAmpAmp:     "&&",
	TokPipePipe:   "||",
	TokCaretCaret: "^^",
	TokLtLt:       "<<",
	TokGtGt:       ">>",
	TokLtEq:       "<=",
	TokGtEq:       ">=",
	TokEqEq:       "==",
	TokBangEq:     "!=",
	TokPlusEq:     "+=",
	TokMinusEq:    "-=",
	TokStarEq:     "*=",
	TokSlashEq:    "/=",
	TokPercentEq:  "%=",
	TokAmpEq:      "&=",
	TokPipeEq:     "|=",
	TokCaretEq:    "^=",
	TokLtLtEq:     "<<=",
	TokGtGtEq:     ">>=",
	TokLParen:     "(",
	TokRParen:     ")",
	TokLBrace:     "{",
	TokRBrace:     "}",
	TokLBracket:   "[",
	TokRBracket:   "]",
	TokSemicolon:  ";",
	TokColon:      ":",
	TokComma:      ",",
}

// IsDirective reports whether the kind opens a preprocessor directive.
func (k TokenKind) IsDirective() bool {
	return k >= TokDefine && k <= TokDirectiveRaw
}

// IsRenderState reports whether the kind names a render state block.
func (k TokenKind) IsRenderState() bool {
	return k >= TokBlendState && k <= TokRasterState
}

// IsPrecision reports whether the kind is a precision qualifier.
func (k TokenKind) IsPrecision() bool {
	return k == TokHighp || k == TokMediump || k == TokLowp
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Position is a 1-based line/column location. Columns count bytes.
type Position struct {
	Line   int
	Column int
}

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Start int    // Byte offset in source
	End   int    // Byte offset of end (exclusive)
	Value string // For identifiers, literals and directives

	StartPos Position
	EndPos   Position
}

// Text returns the source text of the token.
func (t Token) Text(source string) string {
	if t.Start >= 0 && t.End <= len(source) && t.Start <= t.End {
		return source[t.Start:t.End]
	}
	return ""
}

// ----------------------------------------------------------------------------
// Keywords
// ----------------------------------------------------------------------------

// Keywords maps keyword strings to their token kinds.
var Keywords = map[string]TokenKind{
	"Shader":          TokShader,
	"SubShader":       TokSubShader,
	"Pass":            TokPass,
	"UsePass":         TokUsePass,
	"Tags":            TokTags,
	"BlendState":      TokBlendState,
	"DepthState":      TokDepthState,
	"StencilState":    TokStencilState,
	"RasterState":     TokRasterState,
	"VertexShader":    TokVertexShader,
	"FragmentShader":  TokFragmentShader,
	"RenderQueueType": TokRenderQueueType,

	"struct":    TokStruct,
	"if":        TokIf,
	"else":      TokElse,
	"for":       TokFor,
	"while":     TokWhile,
	"do":        TokDo,
	"return":    TokReturn,
	"discard":   TokDiscard,
	"break":     TokBreak,
	"continue":  TokContinue,
	"const":     TokConst,
	"uniform":   TokUniform,
	"in":        TokIn,
	"out":       TokOut,
	"inout":     TokInout,
	"precision": TokPrecision,
	"highp":     TokHighp,
	"mediump":   TokMediump,
	"lowp":      TokLowp,
	"true":      TokTrue,
	"false":     TokFalse,
}

// Directives maps preprocessor directive names to their token kinds.
var Directives = map[string]TokenKind{
	"define":  TokDefine,
	"undef":   TokUndef,
	"ifdef":   TokIfdef,
	"ifndef":  TokIfndef,
	"if":      TokIfDirective,
	"elif":    TokElif,
	"else":    TokElseDirective,
	"endif":   TokEndif,
	"include": TokInclude,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes ShaderLab source code.
type Lexer struct {
	source string
	pos    int
	start  int
	tokens []Token
	lines  *lineIndex

	// Set while scanning the operands of a directive line.
	inDirective bool
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/4), // Estimate
		lines:  newLineIndex(source),
	}
}

// Tokenize returns all tokens in the source. Error tokens are kept in the
// stream so the parser can report them with their positions.
func (l *Lexer) Tokenize() []Token {
	for {
		tok := l.Next()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return l.tokens
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	if end, ok := l.skipWhitespaceAndComments(); ok {
		return l.make(TokDirectiveEnd, end, end, "")
	}

	if l.pos >= len(l.source) {
		return l.make(TokEOF, l.pos, l.pos, "")
	}

	l.start = l.pos
	ch := l.source[l.pos]

	if ch == '#' && !l.inDirective {
		return l.scanDirective()
	}

	// Identifiers and keywords
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	if isIdentStart(r) {
		return l.scanIdentOrKeyword()
	}

	// Numbers
	if isDigit(ch) || (ch == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])) {
		return l.scanNumber()
	}

	if ch == '"' {
		return l.scanString()
	}

	// Operators and punctuation
	return l.scanOperator()
}

func (l *Lexer) make(kind TokenKind, start, end int, value string) Token {
	return Token{
		Kind:     kind,
		Start:    start,
		End:      end,
		Value:    value,
		StartPos: l.lines.position(start),
		EndPos:   l.lines.position(end),
	}
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

// skipWhitespaceAndComments advances past trivia. When a directive line ends
// it returns the offset of the line break and true.
func (l *Lexer) skipWhitespaceAndComments() (int, bool) {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		if ch == '\n' {
			if l.inDirective {
				l.inDirective = false
				end := l.pos
				l.pos++
				return end, true
			}
			l.pos++
			continue
		}

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f' {
			l.pos++
			continue
		}

		// Line continuation inside a directive
		if ch == '\\' && l.inDirective {
			next := l.pos + 1
			if next < len(l.source) && l.source[next] == '\r' {
				next++
			}
			if next < len(l.source) && l.source[next] == '\n' {
				l.pos = next + 1
				continue
			}
		}

		// Line comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
			l.pos += 2
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
			continue
		}

		// Block comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*' {
			l.pos += 2
			for l.pos+1 < len(l.source) && !(l.source[l.pos] == '*' && l.source[l.pos+1] == '/') {
				l.pos++
			}
			l.pos += 2
			if l.pos > len(l.source) {
				l.pos = len(l.source)
			}
			continue
		}

		break
	}

	if l.inDirective && l.pos >= len(l.source) {
		l.inDirective = false
		return l.pos, true
	}
	return 0, false
}

func (l *Lexer) scanDirective() Token {
	start := l.pos
	l.pos++ // #
	for l.pos < len(l.source) && (l.source[l.pos] == ' ' || l.source[l.pos] == '\t') {
		l.pos++
	}
	nameStart := l.pos
	for l.pos < len(l.source) && l.source[l.pos] < 128 && asciiIdentContinue[l.source[l.pos]] {
		l.pos++
	}
	name := l.source[nameStart:l.pos]

	if kind, ok := Directives[name]; ok {
		l.inDirective = true
		return l.make(kind, start, l.pos, name)
	}

	// Unknown directives pass through untouched up to the end of the line.
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.pos++
	}
	end := l.pos
	for end > start && (l.source[end-1] == '\r' || l.source[end-1] == ' ' || l.source[end-1] == '\t') {
		end--
	}
	return l.make(TokDirectiveRaw, start, end, l.source[start:end])
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos

	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch < 128 {
			if asciiIdentContinue[ch] {
				l.pos++
				continue
			}
			break
		}
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentContinueSlow(r) {
			break
		}
		l.pos += size
	}

	text := l.source[start:l.pos]

	if kind, ok := Keywords[text]; ok {
		return l.make(kind, start, l.pos, text)
	}

	return l.make(TokIdent, start, l.pos, text)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	kind := TokIntLiteral

	if l.pos+1 < len(l.source) && l.source[l.pos] == '0' &&
		(l.source[l.pos+1] == 'x' || l.source[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.pos++
		}
	} else {
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
		// A dot followed by an identifier is a swizzle on an int literal, not a fraction.
		if l.pos < len(l.source) && l.source[l.pos] == '.' {
			nextIsIdent := l.pos+1 < len(l.source) && isASCIIIdentStart(l.source[l.pos+1]) &&
				l.source[l.pos+1] != 'e' && l.source[l.pos+1] != 'E'
			if !nextIsIdent {
				kind = TokFloatLiteral
				l.pos++
				for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
					l.pos++
				}
			}
		}
		if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
			save := l.pos
			l.pos++
			if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
				l.pos++
			}
			if l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				kind = TokFloatLiteral
				for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
					l.pos++
				}
			} else {
				l.pos = save
			}
		}
	}

	// Type suffix
	if l.pos < len(l.source) {
		switch l.source[l.pos] {
		case 'u', 'U':
			l.pos++
		case 'f', 'F':
			kind = TokFloatLiteral
			l.pos++
		}
	}

	return l.make(kind, start, l.pos, l.source[start:l.pos])
}

func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.pos += 2
			continue
		}
		if ch == '\n' {
			break
		}
		if ch == '"' {
			l.pos++
			return l.make(TokStringLiteral, start, l.pos, unescape(l.source[start+1:l.pos-1]))
		}
		l.pos++
	}
	return l.make(TokError, start, l.pos, "unterminated string literal")
}

func unescape(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			default:
				buf = append(buf, s[i])
			}
			continue
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}

func (l *Lexer) scanOperator() Token {
	start := l.pos
	ch := l.source[l.pos]
	l.pos++

	var next byte
	if l.pos < len(l.source) {
		next = l.source[l.pos]
	}

	// two returns a two-character token when the following byte matches.
	two := func(second byte, kind TokenKind) (Token, bool) {
		if next == second {
			l.pos++
			return l.make(kind, start, l.pos, ""), true
		}
		return Token{}, false
	}

	switch ch {
	case '+':
		if t, ok := two('+', TokPlusPlus); ok {
			return t
		}
		if t, ok := two('=', TokPlusEq); ok {
			return t
		}
		return l.make(TokPlus, start, l.pos, "")

	case '-':
		if t, ok := two('-', TokMinusMinus); ok {
			return t
		}
		if t, ok := two('=', TokMinusEq); ok {
			return t
		}
		return l.make(TokMinus, start, l.pos, "")

	case '*':
		if t, ok := two('=', TokStarEq); ok {
			return t
		}
		return l.make(TokStar, start, l.pos, "")

	case '/':
		if t, ok := two('=', TokSlashEq); ok {
			return t
		}
		return l.make(TokSlash, start, l.pos, "")

	case '%':
		if t, ok := two('=', TokPercentEq); ok {
			return t
		}
		return l.make(TokPercent, start, l.pos, "")

	case '&':
		if t, ok := two('&', TokAmpAmp); ok {
			return t
		}
		if t, ok := two('=', TokAmpEq); ok {
			return t
		}
		return l.make(TokAmp, start, l.pos, "")

	case '|':
		if t, ok := two('|', TokPipePipe); ok {
			return t
		}
		if t, ok := two('=', TokPipeEq); ok {
			return t
		}
		return l.make(TokPipe, start, l.pos, "")

	case '^':
		if t, ok := two('^', TokCaretCaret); ok {
			return t
		}
		if t, ok := two('=', TokCaretEq); ok {
			return t
		}
		return l.make(TokCaret, start, l.pos, "")

	case '<':
		if next == '<' {
			l.pos++
			if l.pos < len(l.source) && l.source[l.pos] == '=' {
				l.pos++
				return l.make(TokLtLtEq, start, l.pos, "")
			}
			return l.make(TokLtLt, start, l.pos, "")
		}
		if t, ok := two('=', TokLtEq); ok {
			return t
		}
		return l.make(TokLt, start, l.pos, "")

	case '>':
		if next == '>' {
			l.pos++
			if l.pos < len(l.source) && l.source[l.pos] == '=' {
				l.pos++
				return l.make(TokGtGtEq, start, l.pos, "")
			}
			return l.make(TokGtGt, start, l.pos, "")
		}
		if t, ok := two('=', TokGtEq); ok {
			return t
		}
		return l.make(TokGt, start, l.pos, "")

	case '=':
		if t, ok := two('=', TokEqEq); ok {
			return t
		}
		return l.make(TokEq, start, l.pos, "")

	case '!':
		if t, ok := two('=', TokBangEq); ok {
			return t
		}
		return l.make(TokBang, start, l.pos, "")

	case '~':
		return l.make(TokTilde, start, l.pos, "")
	case '.':
		return l.make(TokDot, start, l.pos, "")
	case '?':
		return l.make(TokQuestion, start, l.pos, "")
	case '(':
		return l.make(TokLParen, start, l.pos, "")
	case ')':
		return l.make(TokRParen, start, l.pos, "")
	case '{':
		return l.make(TokLBrace, start, l.pos, "")
	case '}':
		return l.make(TokRBrace, start, l.pos, "")
	case '[':
		return l.make(TokLBracket, start, l.pos, "")
	case ']':
		return l.make(TokRBracket, start, l.pos, "")
	case ';':
		return l.make(TokSemicolon, start, l.pos, "")
	case ':':
		return l.make(TokColon, start, l.pos, "")
	case ',':
		return l.make(TokComma, start, l.pos, "")
	}

	// Skip the rest of a multi-byte rune so the error token covers it.
	if ch >= utf8.RuneSelf {
		_, size := utf8.DecodeRuneInString(l.source[start:])
		l.pos = start + size
	}
	return l.make(TokError, start, l.pos, "unexpected character")
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

var (
	asciiIdentStart    [128]bool
	asciiIdentContinue [128]bool
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	asciiIdentStart['_'] = true
	asciiIdentContinue['_'] = true

	for c := '0'; c <= '9'; c++ {
		asciiIdentContinue[c] = true
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isASCIIIdentStart(ch byte) bool {
	return ch < 128 && asciiIdentStart[ch]
}

func isIdentStartSlow(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinueSlow(r rune) bool {
	return isIdentStartSlow(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isIdentStart(r rune) bool {
	if r < 128 {
		return asciiIdentStart[r]
	}
	return isIdentStartSlow(r)
}
