// Package token defines the lexical tokens of Cool source.
package token

import "fmt"

// Kind identifies a token's lexical class.
type Kind int

const (
	EOF Kind = iota
	ERROR

	TypeID   // identifier starting with an uppercase letter
	ObjectID // identifier starting with a lowercase letter
	IntConst
	StrConst
	BoolConst // true / false

	Class
	Else
	Fi
	If
	In
	Inherits
	IsVoid
	Let
	Loop
	Pool
	Then
	While
	Case
	Esac
	New
	Of
	Not

	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	Colon     // :
	Semi      // ;
	Comma     // ,
	Dot       // .
	At        // @
	Assign    // <-
	Darrow    // =>
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Tilde     // ~
	Lt        // <
	Leq       // <=
	Eq        // =
)

var names = map[Kind]string{
	EOF: "EOF", ERROR: "ERROR", TypeID: "TYPEID", ObjectID: "OBJECTID",
	IntConst: "INT_CONST", StrConst: "STR_CONST", BoolConst: "BOOL_CONST",
	Class: "class", Else: "else", Fi: "fi", If: "if", In: "in",
	Inherits: "inherits", IsVoid: "isvoid", Let: "let", Loop: "loop",
	Pool: "pool", Then: "then", While: "while", Case: "case", Esac: "esac",
	New: "new", Of: "of", Not: "not",
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")", Colon: ":",
	Semi: ";", Comma: ",", Dot: ".", At: "@", Assign: "<-", Darrow: "=>",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Tilde: "~", Lt: "<",
	Leq: "<=", Eq: "=",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps lowercased keyword text to its Kind. Cool keywords are
// case-insensitive except for the literal booleans `true`/`false`, whose
// leading letter must be lowercase.
var keywords = map[string]Kind{
	"class": Class, "else": Else, "fi": Fi, "if": If, "in": In,
	"inherits": Inherits, "isvoid": IsVoid, "let": Let, "loop": Loop,
	"pool": Pool, "then": Then, "while": While, "case": Case, "esac": Esac,
	"new": New, "of": Of, "not": Not,
}

// Lookup returns the keyword Kind for lowercased text, if any.
func Lookup(lower string) (Kind, bool) {
	k, ok := keywords[lower]
	return k, ok
}

// Token is a single lexed token.
type Token struct {
	Kind Kind
	Text string
	File string
	Line int
}
