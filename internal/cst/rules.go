package cst

// Rule names produced by the parser.
const (
	RuleShader            = "Shader"
	RuleSubShader         = "SubShader"
	RulePass              = "Pass"
	RuleUsePass           = "UsePass"
	RuleTags              = "Tags"
	RuleTagEntry          = "TagEntry"
	RuleRenderStateDecl   = "RenderStateDecl"
	RuleRenderStateProp   = "RenderStateProp"
	RuleRenderStateAssign = "RenderStateAssign"
	RuleRenderQueueAssign = "RenderQueueAssign"
	RuleShaderAssign      = "ShaderAssign"

	RuleFunctionDecl  = "FunctionDecl"
	RuleParam         = "Param"
	RuleTypeSpec      = "TypeSpec"
	RuleStructDecl    = "StructDecl"
	RuleField         = "Field"
	RuleVarDecl       = "VarDecl"
	RuleDeclarator    = "Declarator"
	RulePrecisionDecl = "PrecisionDecl"

	RuleMacroDefine      = "MacroDefine"
	RuleMacroUndef       = "MacroUndef"
	RuleMacroInclude     = "MacroInclude"
	RuleMacroRaw         = "MacroRaw"
	RuleMacroConditional = "MacroConditional"
	RuleMacroBranch      = "MacroBranch"

	RuleBlock       = "Block"
	RuleExprStmt    = "ExprStmt"
	RuleDeclStmt    = "DeclStmt"
	RuleIfStmt      = "IfStmt"
	RuleForStmt     = "ForStmt"
	RuleWhileStmt   = "WhileStmt"
	RuleDoWhileStmt = "DoWhileStmt"
	RuleReturnStmt  = "ReturnStmt"
	RuleJumpStmt    = "JumpStmt"

	RuleIdent     = "Ident"
	RuleLiteral   = "Literal"
	RuleBinary    = "Binary"
	RuleUnary     = "Unary"
	RulePostfix   = "Postfix"
	RuleAssign    = "Assign"
	RuleTernary   = "Ternary"
	RuleCall      = "Call"
	RuleIndex     = "Index"
	RuleMember    = "Member"
	RuleParen     = "Paren"
	RuleSequence  = "Sequence"
)

// Child labels shared by several rules.
const (
	LabelKeyword    = "Keyword"
	LabelName       = "Name"
	LabelGlobal     = "Global"
	LabelSubShader  = "SubShader"
	LabelPass       = "Pass"
	LabelTags       = "Tags"
	LabelEntry      = "Entry"
	LabelKey        = "Key"
	LabelValue      = "Value"
	LabelProperty   = "Property"
	LabelProp       = "Prop"
	LabelIndex      = "Index"
	LabelType       = "Type"
	LabelStage      = "Stage"
	LabelPath       = "Path"
	LabelReturnType = "ReturnType"
	LabelParam      = "Param"
	LabelBody       = "Body"
	LabelQualifier  = "Qualifier"
	LabelPrecision  = "Precision"
	LabelArraySize  = "ArraySize"
	LabelMember     = "Member"
	LabelDeclarator = "Declarator"
	LabelInit       = "Init"
	LabelRaw        = "Raw"
	LabelText       = "Text"
	LabelDirective  = "Directive"
	LabelCondition  = "Condition"
	LabelElif       = "Elif"
	LabelElse       = "Else"
	LabelEndif      = "Endif"
	LabelLParen     = "LParen"
	LabelStmt       = "Stmt"
	LabelExpr       = "Expr"
	LabelDecl       = "Decl"
	LabelCond       = "Cond"
	LabelThen       = "Then"
	LabelPost       = "Post"
	LabelOp         = "Op"
	LabelLeft       = "Left"
	LabelRight      = "Right"
	LabelOperand    = "Operand"
	LabelCallee     = "Callee"
	LabelArg        = "Arg"
	LabelObject     = "Object"
	LabelComma      = "Comma"
)
