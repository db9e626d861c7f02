package parser

import (
	"fmt"
	"strings"
)

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenNewline
	TokenContinuation

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenRealLiteral
	TokenStringLiteral
	TokenPicture
	TokenFieldEquate

	// Reserved words
	TokenProgram
	TokenMember
	TokenMap
	TokenModule
	TokenEnd
	TokenProcedure
	TokenFunction
	TokenRoutine
	TokenClass
	TokenCode
	TokenData
	TokenReturn
	TokenIf
	TokenThen
	TokenElsif
	TokenElse
	TokenCase
	TokenOf
	TokenOrof
	TokenLoop
	TokenTimes
	TokenWhile
	TokenUntil
	TokenTo
	TokenBy
	TokenBreak
	TokenCycle
	TokenDo
	TokenExit
	TokenInclude
	TokenEquate
	TokenItemize
	TokenGroup
	TokenQueue
	TokenRecord
	TokenFile
	TokenWindow
	TokenApplication
	TokenMenubar
	TokenMenu
	TokenItem
	TokenToolbar
	TokenSheet
	TokenTab
	TokenOption
	TokenSelf
	TokenParent
	TokenAnd
	TokenOr
	TokenXor
	TokenNot

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
	TokenDot
	TokenColon
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenCaret
	TokenAmpersand
	TokenTilde
	TokenQuestion
	TokenEQ
	TokenNE
	TokenLT
	TokenGT
	TokenLE
	TokenGE
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenRefAssign
	TokenDeepAssign

	tokenKindCount
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenNewline:       "Newline",
	TokenContinuation:  "Continuation",
	TokenIdent:         "Identifier",
	TokenIntLiteral:    "IntLiteral",
	TokenRealLiteral:   "RealLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenPicture:       "Picture",
	TokenFieldEquate:   "FieldEquate",
	TokenProgram:       "PROGRAM",
	TokenMember:        "MEMBER",
	TokenMap:           "MAP",
	TokenModule:        "MODULE",
	TokenEnd:           "END",
	TokenProcedure:     "PROCEDURE",
	TokenFunction:      "FUNCTION",
	TokenRoutine:       "ROUTINE",
	TokenClass:         "CLASS",
	TokenCode:          "CODE",
	TokenData:          "DATA",
	TokenReturn:        "RETURN",
	TokenIf:            "IF",
	TokenThen:          "THEN",
	TokenElsif:         "ELSIF",
	TokenElse:          "ELSE",
	TokenCase:          "CASE",
	TokenOf:            "OF",
	TokenOrof:          "OROF",
	TokenLoop:          "LOOP",
	TokenTimes:         "TIMES",
	TokenWhile:         "WHILE",
	TokenUntil:         "UNTIL",
	TokenTo:            "TO",
	TokenBy:            "BY",
	TokenBreak:         "BREAK",
	TokenCycle:         "CYCLE",
	TokenDo:            "DO",
	TokenExit:          "EXIT",
	TokenInclude:       "INCLUDE",
	TokenEquate:        "EQUATE",
	TokenItemize:       "ITEMIZE",
	TokenGroup:         "GROUP",
	TokenQueue:         "QUEUE",
	TokenRecord:        "RECORD",
	TokenFile:          "FILE",
	TokenWindow:        "WINDOW",
	TokenApplication:   "APPLICATION",
	TokenMenubar:       "MENUBAR",
	TokenMenu:          "MENU",
	TokenItem:          "ITEM",
	TokenToolbar:       "TOOLBAR",
	TokenSheet:         "SHEET",
	TokenTab:           "TAB",
	TokenOption:        "OPTION",
	TokenSelf:          "SELF",
	TokenParent:        "PARENT",
	TokenAnd:           "AND",
	TokenOr:            "OR",
	TokenXor:           "XOR",
	TokenNot:           "NOT",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenComma:         ",",
	TokenSemicolon:     ";",
	TokenDot:           ".",
	TokenColon:         ":",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenCaret:         "^",
	TokenAmpersand:     "&",
	TokenTilde:         "~",
	TokenQuestion:      "?",
	TokenEQ:            "=",
	TokenNE:            "<>",
	TokenLT:            "<",
	TokenGT:            ">",
	TokenLE:            "<=",
	TokenGE:            ">=",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenRefAssign:     "&=",
	TokenDeepAssign:    ":=:",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether the kind is skipped by every lookahead query.
func (k TokenKind) IsTrivia() bool {
	return k == TokenWhitespace || k == TokenComment || k == TokenContinuation
}

// IsKeyword reports whether the kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenProgram && k <= TokenNot
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
	Index   int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of file"
	case TokenNewline:
		return "line break"
	}
	return fmt.Sprintf("%q", t.Literal)
}

var keywords = map[string]TokenKind{
	"PROGRAM":     TokenProgram,
	"MEMBER":      TokenMember,
	"MAP":         TokenMap,
	"MODULE":      TokenModule,
	"END":         TokenEnd,
	"PROCEDURE":   TokenProcedure,
	"FUNCTION":    TokenFunction,
	"ROUTINE":     TokenRoutine,
	"CLASS":       TokenClass,
	"CODE":        TokenCode,
	"DATA":        TokenData,
	"RETURN":      TokenReturn,
	"IF":          TokenIf,
	"THEN":        TokenThen,
	"ELSIF":       TokenElsif,
	"ELSE":        TokenElse,
	"CASE":        TokenCase,
	"OF":          TokenOf,
	"OROF":        TokenOrof,
	"LOOP":        TokenLoop,
	"TIMES":       TokenTimes,
	"WHILE":       TokenWhile,
	"UNTIL":       TokenUntil,
	"TO":          TokenTo,
	"BY":          TokenBy,
	"BREAK":       TokenBreak,
	"CYCLE":       TokenCycle,
	"DO":          TokenDo,
	"EXIT":        TokenExit,
	"INCLUDE":     TokenInclude,
	"EQUATE":      TokenEquate,
	"ITEMIZE":     TokenItemize,
	"GROUP":       TokenGroup,
	"QUEUE":       TokenQueue,
	"RECORD":      TokenRecord,
	"FILE":        TokenFile,
	"WINDOW":      TokenWindow,
	"APPLICATION": TokenApplication,
	"MENUBAR":     TokenMenubar,
	"MENU":        TokenMenu,
	"ITEM":        TokenItem,
	"TOOLBAR":     TokenToolbar,
	"SHEET":       TokenSheet,
	"TAB":         TokenTab,
	"OPTION":      TokenOption,
	"SELF":        TokenSelf,
	"PARENT":      TokenParent,
	"AND":         TokenAnd,
	"OR":          TokenOr,
	"XOR":         TokenXor,
	"NOT":         TokenNot,
}

// LookupKeyword maps an identifier to its reserved word kind, ignoring case.
func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[strings.ToUpper(ident)]; ok {
		return kind
	}
	return TokenIdent
}
