package parser

// labelKinds are the token kinds that can name a declaration or start a
// reference. Several reserved words are common variable names as well.
var labelKinds = []TokenKind{
	TokenIdent,
	TokenWindow, TokenApplication,
	TokenGroup, TokenQueue, TokenRecord, TokenFile,
	TokenMenubar, TokenMenu, TokenItem, TokenToolbar,
	TokenSheet, TokenTab, TokenOption,
}

var assignOps = []TokenKind{
	TokenEQ, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
	TokenSlashAssign, TokenRefAssign, TokenDeepAssign,
}

var (
	label       = tok(labelKinds...)
	dottedLabel = seq(label, star(seq(tok(TokenDot), label)))
	refHead     = tok(append([]TokenKind{TokenSelf, TokenParent}, labelKinds...)...)
	refChain    = seq(refHead, star(seq(tok(TokenDot), label)))
	terminator  = tok(TokenNewline, TokenSemicolon)
	blankLines  = star(terminator)
	lineRest    = seq(star(notOf(TokenNewline, TokenEOF)), tok(TokenNewline))

	// definitionStart matches the head of a procedure, method or routine.
	definitionStart = seq(dottedLabel, tok(TokenProcedure, TokenFunction, TokenRoutine))

	// outerDefinition matches definition heads that cannot be prototypes:
	// methods with a dotted label and routines.
	outerDefinition = alt(
		seq(label, plus(seq(tok(TokenDot), label)), tok(TokenProcedure, TokenFunction)),
		seq(label, tok(TokenRoutine)),
	)

	closeLine     = seq(tok(TokenEnd, TokenDot), lineRest)
	structureHead = alt(seq(label, tok(structureKinds...)), tok(structureKinds...))

	// memberLine matches one line inside CLASS, MAP or MODULE, where
	// prototypes are not definition heads. A nested structure is followed
	// to its own END.
	memberLine = alt(
		tok(TokenNewline),
		seq(notOf(TokenEnd, TokenDot, TokenModule, TokenNewline, TokenEOF), lineRest),
		seq(structureHead, lineRest,
			star(alt(tok(TokenNewline), seq(notOf(TokenEnd, TokenDot, TokenNewline, TokenEOF), lineRest))),
			closeLine),
	)
	moduleRun = seq(tok(TokenModule), lineRest, star(memberLine), closeLine)
	classRun  = seq(label, tok(TokenClass), lineRest, star(memberLine), closeLine)
	mapRun    = seq(tok(TokenMap), lineRest, star(alt(memberLine, moduleRun)), closeLine)

	// dataLine matches one line of local data that is neither CODE nor a
	// definition head, or a whole CLASS or MAP up to its END.
	dataLine = alt(
		tok(TokenNewline),
		seq(notOf(append([]TokenKind{TokenCode, TokenMap, TokenNewline, TokenEOF}, labelKinds...)...), lineRest),
		seq(label, notOf(TokenProcedure, TokenFunction, TokenRoutine, TokenClass, TokenDot, TokenNewline, TokenEOF), lineRest),
		seq(label, tok(TokenNewline)),
		classRun,
		mapRun,
	)

	// statementHead matches the first tokens of a line that starts a
	// statement rather than a definition or a section keyword.
	statementHead = alt(
		notOf(append([]TokenKind{TokenData, TokenCode, TokenEOF, TokenNewline, TokenSemicolon}, labelKinds...)...),
		seq(dottedLabel, notOf(TokenProcedure, TokenFunction, TokenRoutine, TokenDot)),
	)
)

// procedureBody decides what follows a procedure header: local data then
// CODE, CODE directly, or no CODE section at all. Telling the first and the
// last apart may require scanning every declaration line.
var procedureBody = newDecision("procedureBody", HonorBreaks,
	choice("data-code", seq(plus(dataLine), tok(TokenCode))),
	choice("code", tok(TokenCode)),
	choice("no-code", seq(star(dataLine), alt(tok(TokenEOF), definitionStart))),
)

// routineShape picks one of the five routine bodies.
var routineShape = newDecision("routineShape", HonorBreaks,
	choice("data-code", seq(tok(TokenData), star(dataLine), tok(TokenCode))),
	choice("data", seq(tok(TokenData), star(dataLine), alt(tok(TokenEOF), definitionStart))),
	choice("code", tok(TokenCode)),
	choice("statements", statementHead),
	choice("empty", alt(tok(TokenEOF), definitionStart)),
)

var structureKinds = []TokenKind{TokenGroup, TokenQueue, TokenRecord, TokenFile}

var structureOpeners = tok(TokenLParen, TokenComma, TokenNewline, TokenSemicolon, TokenEOF)

// dataEntry classifies one line of a data section or structure body.
var dataEntry = newDecision("dataEntry", HonorBreaks,
	choice("blank", terminator),
	choice("variable", seq(label, alt(
		tok(TokenIdent),
		seq(tok(TokenAmpersand), tok(append([]TokenKind{TokenIdent, TokenClass}, labelKinds...)...)),
	))),
	choice("equate", seq(label, tok(TokenEquate))),
	choice("itemize", alt(seq(label, tok(TokenItemize)), seq(tok(TokenItemize), structureOpeners))),
	choice("structure", alt(seq(label, tok(structureKinds...)), seq(tok(structureKinds...), structureOpeners))),
	choice("class", seq(label, tok(TokenClass))),
	choice("window", alt(
		seq(label, tok(TokenWindow, TokenApplication)),
		seq(tok(TokenWindow, TokenApplication), structureOpeners),
	)),
	choice("include", tok(TokenInclude)),
	choice("end", alt(tok(TokenCode, TokenEOF), definitionStart)),
	choice("close", tok(TokenEnd, TokenDot)),
)

// classMember classifies one line of a CLASS body.
var classMember = newDecision("classMember", HonorBreaks,
	choice("blank", terminator),
	choice("method", seq(label, tok(TokenProcedure, TokenFunction))),
	choice("field", seq(label, alt(
		tok(TokenIdent),
		seq(tok(TokenAmpersand), tok(append([]TokenKind{TokenIdent, TokenClass}, labelKinds...)...)),
	))),
	choice("structure", alt(seq(label, tok(structureKinds...)), seq(tok(structureKinds...), structureOpeners))),
	choice("equate", seq(label, tok(TokenEquate))),
	choice("include", tok(TokenInclude)),
	choice("definition", alt(tok(TokenCode, TokenEOF), outerDefinition)),
	choice("close", tok(TokenEnd, TokenDot)),
)

// mapEntry classifies one line inside MAP or MODULE.
var mapEntry = newDecision("mapEntry", HonorBreaks,
	choice("blank", terminator),
	choice("prototype", seq(label, tok(TokenProcedure, TokenFunction))),
	choice("legacy", seq(label, tok(TokenLParen, TokenComma, TokenNewline, TokenSemicolon))),
	choice("module", tok(TokenModule)),
	choice("include", tok(TokenInclude)),
	choice("close", tok(TokenEnd, TokenDot)),
	choice("end", alt(tok(TokenCode, TokenEOF), outerDefinition)),
)

// memberItem classifies one line of a MEMBER module body, where
// declarations, statements and definitions interleave.
var memberItem = newDecision("memberItem", HonorBreaks,
	choice("blank", terminator),
	choice("definition", seq(dottedLabel, tok(TokenProcedure, TokenFunction))),
	choice("routine", seq(label, tok(TokenRoutine))),
	choice("map", tok(TokenMap)),
	choice("declaration", alt(
		seq(label, tok(TokenIdent, TokenAmpersand, TokenEquate, TokenItemize, TokenClass,
			TokenGroup, TokenQueue, TokenRecord, TokenFile, TokenWindow, TokenApplication)),
		seq(tok(TokenItemize, TokenGroup, TokenQueue, TokenRecord, TokenFile, TokenWindow, TokenApplication), structureOpeners),
		tok(TokenInclude),
	)),
	choice("statement", alt(
		notOf(append([]TokenKind{TokenCode, TokenMap, TokenInclude, TokenItemize, TokenEOF, TokenNewline, TokenSemicolon}, labelKinds...)...),
		seq(tok(TokenIdent), star(seq(tok(TokenDot), label)), tok(append(assignOps,
			TokenLParen, TokenLBrace, TokenLBracket, TokenNewline, TokenSemicolon, TokenEOF)...)),
		seq(tok(labelKinds[1:]...), star(seq(tok(TokenDot), label)), tok(append(assignOps, TokenLBrace, TokenLBracket)...)),
		seq(tok(labelKinds[1:]...), plus(seq(tok(TokenDot), label)), tok(TokenLParen, TokenNewline, TokenSemicolon, TokenEOF)),
	)),
)

var (
	subscript = seq(tok(TokenLBracket), star(notOf(TokenRBracket, TokenNewline, TokenEOF)), tok(TokenRBracket))
	braces    = seq(tok(TokenLBrace), star(notOf(TokenRBrace, TokenNewline, TokenEOF)), tok(TokenRBrace))
	target    = seq(alt(refHead, tok(TokenFieldEquate)), star(alt(seq(tok(TokenDot), label), subscript, braces)))
)

var statementEnd = tok(TokenNewline, TokenSemicolon, TokenEOF, TokenEnd, TokenDot,
	TokenElse, TokenElsif, TokenOf, TokenOrof)

// identStatement splits statements that start with a name.
var identStatement = newDecision("identStatement", HonorBreaks,
	choice("assignment", seq(target, tok(assignOps...))),
	choice("call", seq(refChain, tok(TokenLParen))),
	choice("bare-call", seq(refChain, statementEnd)),
)

// ifBody decides between the single-statement and the block form of IF
// once the condition has been parsed. Both forms accept a body written as
// `THEN stmt` followed by more lines closed by END; the block form is
// listed first and wins.
var ifBody = newDecision("ifBody", HonorBreaks,
	choice("block", seq(opt(tok(TokenThen)), alt(
		terminator,
		seq(
			plus(alt(notOf(TokenNewline, TokenSemicolon, TokenDot, TokenEOF), seq(tok(TokenDot), label))),
			tok(TokenNewline),
			star(alt(
				tok(TokenNewline),
				seq(notOf(TokenEnd, TokenDot, TokenIf, TokenLoop, TokenCase, TokenNewline, TokenEOF), lineRest),
			)),
			tok(TokenEnd, TokenDot),
		),
	))),
	choice("single", seq(opt(tok(TokenThen)), notOf(TokenNewline, TokenSemicolon, TokenEOF))),
)

// caseLead decides how a CASE continues after its selector: directly with
// OF/ELSE/END, or after a run of wildcard tokens. A run that could end at an
// OF or at a later ELSE/END is resolved towards the first OF.
var caseLead = newDecision("caseLead", HonorBreaks,
	choice("direct", seq(blankLines, tok(TokenOf, TokenElse, TokenEnd, TokenDot))),
	choice("wildcards-of", seq(blankLines,
		notOf(TokenOf, TokenElse, TokenEnd, TokenDot, TokenNewline, TokenSemicolon, TokenEOF),
		star(notOf(TokenOf, TokenEnd, TokenEOF)),
		tok(TokenOf))),
	choice("wildcards-end", seq(blankLines,
		notOf(TokenOf, TokenElse, TokenEnd, TokenDot, TokenNewline, TokenSemicolon, TokenEOF),
		star(notOf(TokenOf, TokenElse, TokenEnd, TokenEOF)),
		tok(TokenElse, TokenEnd))),
)

// loopHeader classifies what follows LOOP.
var loopHeader = newDecision("loopHeader", HonorBreaks,
	choice("bare", tok(TokenNewline, TokenSemicolon, TokenEOF)),
	choice("condition", tok(TokenWhile, TokenUntil)),
	choice("counter", seq(dottedLabel, tok(TokenEQ))),
	choice("times", seq(
		notOf(TokenTimes, TokenEQ, TokenNewline, TokenSemicolon, TokenEOF, TokenWhile, TokenUntil),
		star(notOf(TokenTimes, TokenEQ, TokenNewline, TokenSemicolon, TokenEOF)),
		tok(TokenTimes))),
)

// factor classifies an operand. It looks at tokens in the caller's mode.
var factor = newContextualDecision("factor",
	choice("call", seq(refChain, tok(TokenLParen))),
	choice("property", seq(alt(refChain, tok(TokenFieldEquate)), tok(TokenLBrace))),
	choice("reference", seq(refChain, alt(
		notOf(TokenLParen, TokenLBrace, TokenDot),
		seq(tok(TokenDot), notOf(labelKinds...)),
	))),
	choice("field-equate", seq(tok(TokenFieldEquate), notOf(TokenLBrace))),
	choice("literal", tok(TokenIntLiteral, TokenRealLiteral, TokenStringLiteral, TokenPicture)),
	choice("group", tok(TokenLParen)),
)

// uiItem classifies one line of a window or UI container body.
var uiItem = newDecision("uiItem", HonorBreaks,
	choice("blank", terminator),
	choice("menubar", tok(TokenMenubar)),
	choice("menu", tok(TokenMenu)),
	choice("item", tok(TokenItem)),
	choice("toolbar", tok(TokenToolbar)),
	choice("sheet", tok(TokenSheet)),
	choice("tab", tok(TokenTab)),
	choice("group", tok(TokenGroup)),
	choice("option", tok(TokenOption)),
	choice("control", seq(tok(TokenIdent), tok(TokenLParen, TokenComma))),
	choice("bare", seq(tok(TokenIdent), tok(TokenNewline, TokenSemicolon, TokenEOF))),
	choice("close", tok(TokenEnd, TokenDot)),
	choice("outside", alt(tok(TokenCode, TokenEOF), definitionStart)),
	choice("unknown", alt(
		notOf(append([]TokenKind{TokenEnd, TokenDot, TokenNewline, TokenSemicolon, TokenEOF, TokenCode}, labelKinds...)...),
		seq(tok(TokenIdent), notOf(TokenLParen, TokenComma, TokenNewline, TokenSemicolon, TokenEOF,
			TokenProcedure, TokenFunction, TokenRoutine, TokenDot)),
		seq(tok(TokenWindow, TokenApplication, TokenQueue, TokenRecord, TokenFile),
			notOf(TokenProcedure, TokenFunction, TokenRoutine, TokenDot)),
	)),
)

// uiFragment decides what a standalone UI token span holds.
var uiFragment = newDecision("uiFragment", HonorBreaks,
	choice("window", alt(
		seq(label, tok(TokenWindow, TokenApplication)),
		seq(tok(TokenWindow, TokenApplication), structureOpeners),
	)),
	choice("items", alt(
		notOf(append([]TokenKind{TokenNewline, TokenSemicolon, TokenEOF}, labelKinds...)...),
		seq(tok(TokenIdent), notOf(TokenWindow, TokenApplication)),
		seq(tok(labelKinds[3:]...), notOf(TokenWindow, TokenApplication)),
		seq(tok(TokenWindow, TokenApplication), notOf(TokenWindow, TokenApplication, TokenLParen, TokenComma, TokenNewline, TokenSemicolon, TokenEOF)),
	)),
	choice("empty", tok(TokenEOF)),
)

// Alternative indexes, in the order each decision lists them.
const (
	bodyDataCode = iota
	bodyCode
	bodyNoCode
)

const (
	routineDataCode = iota
	routineData
	routineCode
	routineStatements
	routineEmpty
)

const (
	entryBlank = iota
	entryVariable
	entryEquate
	entryItemize
	entryStructure
	entryClass
	entryWindow
	entryInclude
	entryEnd
	entryClose
)

const (
	memberBlank = iota
	memberMethod
	memberField
	memberStructure
	memberEquate
	memberInclude
	memberDefinition
	memberClose
)

const (
	mapBlank = iota
	mapPrototype
	mapLegacy
	mapModule
	mapInclude
	mapClose
	mapEnd
)

const (
	itemBlank = iota
	itemDefinition
	itemRoutine
	itemMap
	itemDeclaration
	itemStatement
)

const (
	identAssignment = iota
	identCall
	identBareCall
)

const (
	ifBlock = iota
	ifSingle
)

const (
	caseDirect = iota
	caseWildcardsOf
	caseWildcardsEnd
)

const (
	loopBare = iota
	loopCondition
	loopCounter
	loopTimes
)

const (
	factorCall = iota
	factorProperty
	factorReference
	factorFieldEquate
	factorLiteral
	factorGroup
)

const (
	uiBlank = iota
	uiMenubar
	uiMenu
	uiItemEntry
	uiToolbar
	uiSheet
	uiTab
	uiGroup
	uiOption
	uiControl
	uiBare
	uiClose
	uiOutside
	uiUnknown
)

const (
	fragmentWindow = iota
	fragmentItems
	fragmentEmpty
)
