// Package ast defines the Cool abstract syntax tree consumed by the
// class table, type checker, layout planner, and code generator.
package ast

import "github.com/sunholo/coolc/internal/symbol"

// Pos identifies a source location for diagnostics.
type Pos struct {
	File string
	Line int
}

// Program is a parsed Cool compilation unit: a list of class
// declarations in the order they appeared in source. The five basic
// classes are not part of it; the class table installs them.
type Program struct {
	Classes []*Class
}

// Class is a single `class NAME [inherits PARENT] { features }`
// declaration.
type Class struct {
	Name     symbol.Name
	Parent   symbol.Name
	Features []Feature
	Filename string
	Pos      Pos
}

// Feature is either an Attr or a Method.
type Feature interface {
	Position() Pos
	isFeature()
}

// Attr is `name : type_decl [<- init]`.
type Attr struct {
	Name     symbol.Name
	Decl     symbol.Name
	Init     Expr // NoExpr if absent
	Pos      Pos
}

func (*Attr) isFeature()         {}
func (a *Attr) Position() Pos    { return a.Pos }

// Method is `name(formals) : return_type { body }`.
type Method struct {
	Name       symbol.Name
	Formals    []*Formal
	ReturnType symbol.Name
	Body       Expr
	Pos        Pos
}

func (*Method) isFeature()      {}
func (m *Method) Position() Pos { return m.Pos }

// Formal is a single `name : decl` method parameter.
type Formal struct {
	Name symbol.Name
	Decl symbol.Name
	Pos  Pos
}

// Expr is any Cool expression node. Every node carries a mutable,
// write-once annotated type slot filled in by the type checker
// (internal/typecheck): HasType is false until SetType is called exactly
// once, after which Type returns the assigned static type forever.
type Expr interface {
	Position() Pos
	Type() symbol.Name
	HasType() bool
	SetType(t symbol.Name)
	isExpr()
}

// base is embedded in every concrete Expr to provide the position and
// annotated-type slot.
type base struct {
	Pos      Pos
	typ      symbol.Name
	typeSet  bool
}

func (b *base) Position() Pos        { return b.Pos }
func (b *base) Type() symbol.Name    { return b.typ }
func (b *base) HasType() bool        { return b.typeSet }
func (b *base) SetType(t symbol.Name) {
	b.typ = t
	b.typeSet = true
}

func (*Assign) isExpr()         {}
func (*StaticDispatch) isExpr() {}
func (*Dispatch) isExpr()       {}
func (*If) isExpr()             {}
func (*While) isExpr()          {}
func (*Block) isExpr()          {}
func (*Let) isExpr()            {}
func (*Case) isExpr()           {}
func (*Plus) isExpr()           {}
func (*Sub) isExpr()            {}
func (*Mul) isExpr()            {}
func (*Div) isExpr()            {}
func (*Neg) isExpr()            {}
func (*Lt) isExpr()             {}
func (*Leq) isExpr()            {}
func (*Eq) isExpr()             {}
func (*Not) isExpr()            {}
func (*IntConst) isExpr()       {}
func (*StrConst) isExpr()       {}
func (*BoolConst) isExpr()      {}
func (*New) isExpr()            {}
func (*IsVoid) isExpr()         {}
func (*NoExpr) isExpr()         {}
func (*Id) isExpr()             {}

// Assign ::= name <- expr
type Assign struct {
	base
	Name symbol.Name
	Expr Expr
}

// StaticDispatch ::= expr@StaticType.Method(args)
type StaticDispatch struct {
	base
	Recv       Expr
	StaticType symbol.Name
	Method     symbol.Name
	Args       []Expr
}

// Dispatch ::= [expr.]Method(args); the parser gives the implicit-self
// form an Id(self) receiver, so Recv is never nil.
type Dispatch struct {
	base
	Recv   Expr
	Method symbol.Name
	Args   []Expr
}

// If ::= if Pred then Then else Else fi
type If struct {
	base
	Pred, Then, Else Expr
}

// While ::= while Pred loop Body pool
type While struct {
	base
	Pred, Body Expr
}

// Block ::= { e1; e2; ...; en; }
type Block struct {
	base
	Exprs []Expr
}

// Let ::= let Name : Decl [<- Init] in Body. Multi-binding let is
// desugared by the parser into nested single-binding Lets.
type Let struct {
	base
	Name symbol.Name
	Decl symbol.Name
	Init Expr // NoExpr if absent
	Body Expr
}

// Case ::= case Expr of branches esac
type Case struct {
	base
	Expr     Expr
	Branches []*Branch
}

// Branch ::= Name : Decl => Body
type Branch struct {
	Name symbol.Name
	Decl symbol.Name
	Body Expr
	Pos  Pos
}

// Plus/Sub/Mul/Div ::= E1 op E2, both Int, result Int.
type Plus struct {
	base
	E1, E2 Expr
}
type Sub struct {
	base
	E1, E2 Expr
}
type Mul struct {
	base
	E1, E2 Expr
}
type Div struct {
	base
	E1, E2 Expr
}

// Neg ::= ~E1, Int -> Int.
type Neg struct {
	base
	E1 Expr
}

// Lt/Leq ::= E1 op E2, both Int, result Bool.
type Lt struct {
	base
	E1, E2 Expr
}
type Leq struct {
	base
	E1, E2 Expr
}

// Eq ::= E1 = E2.
type Eq struct {
	base
	E1, E2 Expr
}

// Not ::= not E1, Bool -> Bool.
type Not struct {
	base
	E1 Expr
}

// IntConst/StrConst/BoolConst are literal expressions.
type IntConst struct {
	base
	Value string // decimal text, as lexed
}
type StrConst struct {
	base
	Value string // decoded literal text
}
type BoolConst struct {
	base
	Value bool
}

// New ::= new TypeName (TypeName may be SELF_TYPE).
type New struct {
	base
	TypeName symbol.Name
}

// IsVoid ::= isvoid E1.
type IsVoid struct {
	base
	E1 Expr
}

// NoExpr is the absence of an expression (e.g. an attribute with no
// initializer, or the init-less branch of a let binding).
type NoExpr struct {
	base
}

// Id ::= name (including `self`).
type Id struct {
	base
	Name symbol.Name
}

// Constructors. The parser builds every Expr node through these since
// base's fields are unexported; each stamps Pos and leaves the
// annotated-type slot unset for the type checker to fill in.

func NewAssign(pos Pos, name symbol.Name, rhs Expr) *Assign {
	return &Assign{base: base{Pos: pos}, Name: name, Expr: rhs}
}

func NewStaticDispatch(pos Pos, recv Expr, staticType, method symbol.Name, args []Expr) *StaticDispatch {
	return &StaticDispatch{base: base{Pos: pos}, Recv: recv, StaticType: staticType, Method: method, Args: args}
}

func NewDispatch(pos Pos, recv Expr, method symbol.Name, args []Expr) *Dispatch {
	return &Dispatch{base: base{Pos: pos}, Recv: recv, Method: method, Args: args}
}

func NewIf(pos Pos, pred, then, els Expr) *If {
	return &If{base: base{Pos: pos}, Pred: pred, Then: then, Else: els}
}

func NewWhile(pos Pos, pred, body Expr) *While {
	return &While{base: base{Pos: pos}, Pred: pred, Body: body}
}

func NewBlock(pos Pos, exprs []Expr) *Block {
	return &Block{base: base{Pos: pos}, Exprs: exprs}
}

func NewLet(pos Pos, name, decl symbol.Name, init, body Expr) *Let {
	return &Let{base: base{Pos: pos}, Name: name, Decl: decl, Init: init, Body: body}
}

func NewCase(pos Pos, scrut Expr, branches []*Branch) *Case {
	return &Case{base: base{Pos: pos}, Expr: scrut, Branches: branches}
}

func NewBranch(pos Pos, name, decl symbol.Name, body Expr) *Branch {
	return &Branch{Name: name, Decl: decl, Body: body, Pos: pos}
}

func NewPlus(pos Pos, e1, e2 Expr) *Plus { return &Plus{base: base{Pos: pos}, E1: e1, E2: e2} }
func NewSub(pos Pos, e1, e2 Expr) *Sub   { return &Sub{base: base{Pos: pos}, E1: e1, E2: e2} }
func NewMul(pos Pos, e1, e2 Expr) *Mul   { return &Mul{base: base{Pos: pos}, E1: e1, E2: e2} }
func NewDiv(pos Pos, e1, e2 Expr) *Div   { return &Div{base: base{Pos: pos}, E1: e1, E2: e2} }

func NewNeg(pos Pos, e1 Expr) *Neg { return &Neg{base: base{Pos: pos}, E1: e1} }

func NewLt(pos Pos, e1, e2 Expr) *Lt   { return &Lt{base: base{Pos: pos}, E1: e1, E2: e2} }
func NewLeq(pos Pos, e1, e2 Expr) *Leq { return &Leq{base: base{Pos: pos}, E1: e1, E2: e2} }
func NewEq(pos Pos, e1, e2 Expr) *Eq   { return &Eq{base: base{Pos: pos}, E1: e1, E2: e2} }

func NewNot(pos Pos, e1 Expr) *Not { return &Not{base: base{Pos: pos}, E1: e1} }

func NewIntConst(pos Pos, value string) *IntConst  { return &IntConst{base: base{Pos: pos}, Value: value} }
func NewStrConst(pos Pos, value string) *StrConst  { return &StrConst{base: base{Pos: pos}, Value: value} }
func NewBoolConst(pos Pos, value bool) *BoolConst   { return &BoolConst{base: base{Pos: pos}, Value: value} }

func NewNewExpr(pos Pos, typeName symbol.Name) *New { return &New{base: base{Pos: pos}, TypeName: typeName} }

func NewIsVoid(pos Pos, e1 Expr) *IsVoid { return &IsVoid{base: base{Pos: pos}, E1: e1} }

func NewNoExpr(pos Pos) *NoExpr { return &NoExpr{base: base{Pos: pos}} }

func NewId(pos Pos, name symbol.Name) *Id { return &Id{base: base{Pos: pos}, Name: name} }
