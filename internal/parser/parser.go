// Package parser builds a Cool internal/ast tree from a token stream.
//
// The grammar and precedence (tightest to loosest) are:
//
//	.  @                  dispatch / static dispatch          left
//	~                      negation                            unary
//	isvoid                                                     unary
//	* /                                                        left
//	+ -                                                        left
//	<  <=  =                                                   non-assoc
//	not                                                        unary
//	<-                     assignment                          right
package parser

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/lexer"
	"github.com/sunholo/coolc/internal/symbol"
	"github.com/sunholo/coolc/internal/token"
)

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	file string
	lx   *lexer.Lexer
	sink *diag.Sink
	tok  token.Token
}

// Parse lexes and parses a full Cool compilation unit from src.
func Parse(file string, src []byte, sink *diag.Sink) *ast.Program {
	p := &Parser{file: file, lx: lexer.New(file, src, sink), sink: sink}
	p.next()
	return p.parseProgram()
}

func (p *Parser) next() { p.tok = p.lx.Next() }

func (p *Parser) pos() ast.Pos { return ast.Pos{File: p.file, Line: p.tok.Line} }

func (p *Parser) errorf(format string, args ...any) {
	p.sink.Errorf(p.pos(), format, args...)
}

// expect consumes the current token if it has kind k, reporting an error
// and leaving the stream unconsumed otherwise so the caller can attempt
// recovery.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.tok.Kind != k {
		p.errorf("syntax error: expected %s, got %s", k, p.tok.Kind)
		return p.tok
	}
	t := p.tok
	p.next()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.tok.Kind == k }

// synchronizeTo skips tokens until one matching kinds (or EOF) so a
// single malformed class/feature does not cascade into unrelated errors.
func (p *Parser) synchronizeTo(kinds ...token.Kind) {
	for !p.at(token.EOF) {
		for _, k := range kinds {
			if p.at(k) {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		c := p.parseClass()
		if c != nil {
			prog.Classes = append(prog.Classes, c)
		}
		if !p.at(token.Semi) {
			p.errorf("syntax error: expected ';' after class declaration")
			p.synchronizeTo(token.Semi, token.EOF)
		}
		if p.at(token.Semi) {
			p.next()
		}
	}
	return prog
}

func (p *Parser) parseClass() *ast.Class {
	pos := p.pos()
	p.expect(token.Class)
	nameTok := p.expect(token.TypeID)
	c := &ast.Class{
		Name:     symbol.Name(nameTok.Text),
		Parent:   symbol.Object,
		Filename: p.file,
		Pos:      pos,
	}
	if p.at(token.Inherits) {
		p.next()
		parentTok := p.expect(token.TypeID)
		c.Parent = symbol.Name(parentTok.Text)
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		f := p.parseFeature()
		if f != nil {
			c.Features = append(c.Features, f)
		}
		if !p.at(token.Semi) {
			p.errorf("syntax error: expected ';' after feature declaration")
			p.synchronizeTo(token.Semi, token.RBrace, token.EOF)
		}
		if p.at(token.Semi) {
			p.next()
		}
	}
	p.expect(token.RBrace)
	return c
}

func (p *Parser) parseFeature() ast.Feature {
	pos := p.pos()
	nameTok := p.expect(token.ObjectID)
	name := symbol.Name(nameTok.Text)

	if p.at(token.LParen) {
		// method ::= name(formals) : return_type { body }
		p.next()
		var formals []*ast.Formal
		for !p.at(token.RParen) && !p.at(token.EOF) {
			formals = append(formals, p.parseFormal())
			if p.at(token.Comma) {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		p.expect(token.Colon)
		retTok := p.expect(token.TypeID)
		p.expect(token.LBrace)
		body := p.parseExpr()
		p.expect(token.RBrace)
		return &ast.Method{
			Name: name, Formals: formals,
			ReturnType: symbol.Name(retTok.Text), Body: body, Pos: pos,
		}
	}

	// attr ::= name : type_decl [<- init]
	p.expect(token.Colon)
	declTok := p.expect(token.TypeID)
	attr := &ast.Attr{Name: name, Decl: symbol.Name(declTok.Text), Pos: pos}
	if p.at(token.Assign) {
		p.next()
		attr.Init = p.parseExpr()
	} else {
		attr.Init = ast.NewNoExpr(pos)
	}
	return attr
}

func (p *Parser) parseFormal() *ast.Formal {
	pos := p.pos()
	nameTok := p.expect(token.ObjectID)
	p.expect(token.Colon)
	declTok := p.expect(token.TypeID)
	return &ast.Formal{Name: symbol.Name(nameTok.Text), Decl: symbol.Name(declTok.Text), Pos: pos}
}

// parseExpr parses an expression at the lowest precedence (assignment).
func (p *Parser) parseExpr() ast.Expr {
	if p.at(token.ObjectID) {
		// Lookahead for `name <- expr`. The lexer's position is saved
		// too, so the peeked token is scanned again if this is not an
		// assignment.
		save := *p
		saveLx := *p.lx
		nameTok := p.tok
		p.next()
		if p.at(token.Assign) {
			pos := ast.Pos{File: p.file, Line: nameTok.Line}
			p.next()
			rhs := p.parseExpr()
			return ast.NewAssign(pos, symbol.Name(nameTok.Text), rhs)
		}
		*p = save
		*p.lx = saveLx
	}
	return p.parseNot()
}

func (p *Parser) parseNot() ast.Expr {
	if p.at(token.Not) {
		pos := p.pos()
		p.next()
		return ast.NewNot(pos, p.parseNot())
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	e := p.parseAdditive()
	switch p.tok.Kind {
	case token.Lt:
		pos := p.pos()
		p.next()
		return ast.NewLt(pos, e, p.parseAdditive())
	case token.Leq:
		pos := p.pos()
		p.next()
		return ast.NewLeq(pos, e, p.parseAdditive())
	case token.Eq:
		pos := p.pos()
		p.next()
		return ast.NewEq(pos, e, p.parseAdditive())
	}
	return e
}

func (p *Parser) parseAdditive() ast.Expr {
	e := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		pos := p.pos()
		isPlus := p.at(token.Plus)
		p.next()
		rhs := p.parseMultiplicative()
		if isPlus {
			e = ast.NewPlus(pos, e, rhs)
		} else {
			e = ast.NewSub(pos, e, rhs)
		}
	}
	return e
}

func (p *Parser) parseMultiplicative() ast.Expr {
	e := p.parseUnary()
	for p.at(token.Star) || p.at(token.Slash) {
		pos := p.pos()
		isMul := p.at(token.Star)
		p.next()
		rhs := p.parseUnary()
		if isMul {
			e = ast.NewMul(pos, e, rhs)
		} else {
			e = ast.NewDiv(pos, e, rhs)
		}
	}
	return e
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.Tilde) {
		pos := p.pos()
		p.next()
		return ast.NewNeg(pos, p.parseUnary())
	}
	if p.at(token.IsVoid) {
		pos := p.pos()
		p.next()
		return ast.NewIsVoid(pos, p.parseUnary())
	}
	return p.parseDispatchChain()
}

// parseDispatchChain parses a primary expression followed by any number
// of `.name(args)` / `@Type.name(args)` suffixes.
func (p *Parser) parseDispatchChain() ast.Expr {
	e := p.parsePrimary()
	for {
		switch {
		case p.at(token.Dot):
			pos := p.pos()
			p.next()
			nameTok := p.expect(token.ObjectID)
			args := p.parseArgs()
			e = ast.NewDispatch(pos, e, symbol.Name(nameTok.Text), args)
		case p.at(token.At):
			pos := p.pos()
			p.next()
			typeTok := p.expect(token.TypeID)
			p.expect(token.Dot)
			nameTok := p.expect(token.ObjectID)
			args := p.parseArgs()
			e = ast.NewStaticDispatch(pos, e, symbol.Name(typeTok.Text), symbol.Name(nameTok.Text), args)
		default:
			return e
		}
	}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LParen)
	var args []ast.Expr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.Comma) {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RParen)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.pos()
	switch p.tok.Kind {
	case token.IntConst:
		v := p.tok.Text
		p.next()
		return ast.NewIntConst(pos, v)
	case token.StrConst:
		v := p.tok.Text
		p.next()
		return ast.NewStrConst(pos, v)
	case token.BoolConst:
		v := p.tok.Text == "true"
		p.next()
		return ast.NewBoolConst(pos, v)
	case token.ObjectID:
		name := p.tok.Text
		p.next()
		if p.at(token.LParen) {
			args := p.parseArgs()
			return ast.NewDispatch(pos, ast.NewId(pos, symbol.Self), symbol.Name(name), args)
		}
		return ast.NewId(pos, symbol.Name(name))
	case token.New:
		p.next()
		typeTok := p.expect(token.TypeID)
		return ast.NewNewExpr(pos, symbol.Name(typeTok.Text))
	case token.LParen:
		p.next()
		e := p.parseExpr()
		p.expect(token.RParen)
		return e
	case token.LBrace:
		p.next()
		var exprs []ast.Expr
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			exprs = append(exprs, p.parseExpr())
			p.expect(token.Semi)
		}
		p.expect(token.RBrace)
		return ast.NewBlock(pos, exprs)
	case token.If:
		p.next()
		cond := p.parseExpr()
		p.expect(token.Then)
		then := p.parseExpr()
		p.expect(token.Else)
		els := p.parseExpr()
		p.expect(token.Fi)
		return ast.NewIf(pos, cond, then, els)
	case token.While:
		p.next()
		cond := p.parseExpr()
		p.expect(token.Loop)
		body := p.parseExpr()
		p.expect(token.Pool)
		return ast.NewWhile(pos, cond, body)
	case token.Let:
		p.next()
		return p.parseLetBindings(pos)
	case token.Case:
		p.next()
		scrut := p.parseExpr()
		p.expect(token.Of)
		var branches []*ast.Branch
		for !p.at(token.Esac) && !p.at(token.EOF) {
			branches = append(branches, p.parseBranch())
		}
		p.expect(token.Esac)
		return ast.NewCase(pos, scrut, branches)
	case token.IsVoid:
		p.next()
		return ast.NewIsVoid(pos, p.parseUnary())
	default:
		p.errorf("syntax error at or near %s", p.tok.Kind)
		p.next()
		return ast.NewNoExpr(pos)
	}
}

// parseLetBindings desugars `let x1:T1<-i1, x2:T2<-i2 in body` into
// nested single-binding Lets, matching the standard Cool grammar.
func (p *Parser) parseLetBindings(pos ast.Pos) ast.Expr {
	nameTok := p.expect(token.ObjectID)
	p.expect(token.Colon)
	declTok := p.expect(token.TypeID)
	init := ast.Expr(ast.NewNoExpr(pos))
	if p.at(token.Assign) {
		p.next()
		init = p.parseExpr()
	}

	var body ast.Expr
	if p.at(token.Comma) {
		p.next()
		body = p.parseLetBindings(p.pos())
	} else {
		p.expect(token.In)
		body = p.parseExpr()
	}
	return ast.NewLet(pos, symbol.Name(nameTok.Text), symbol.Name(declTok.Text), init, body)
}

func (p *Parser) parseBranch() *ast.Branch {
	pos := p.pos()
	nameTok := p.expect(token.ObjectID)
	p.expect(token.Colon)
	declTok := p.expect(token.TypeID)
	p.expect(token.Darrow)
	body := p.parseExpr()
	p.expect(token.Semi)
	return ast.NewBranch(pos, symbol.Name(nameTok.Text), symbol.Name(declTok.Text), body)
}
