package codegen

import "github.com/sunholo/coolc/internal/ast"

// walkExpr calls visit on e and recursively on every sub-expression, in
// evaluation order. It exists so the constant-collection pass and any
// future analysis can traverse the AST without duplicating the
// grammar's shape.
func walkExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch e := e.(type) {
	case *ast.Assign:
		walkExpr(e.Expr, visit)
	case *ast.StaticDispatch:
		walkExpr(e.Recv, visit)
		for _, a := range e.Args {
			walkExpr(a, visit)
		}
	case *ast.Dispatch:
		walkExpr(e.Recv, visit)
		for _, a := range e.Args {
			walkExpr(a, visit)
		}
	case *ast.If:
		walkExpr(e.Pred, visit)
		walkExpr(e.Then, visit)
		walkExpr(e.Else, visit)
	case *ast.While:
		walkExpr(e.Pred, visit)
		walkExpr(e.Body, visit)
	case *ast.Block:
		for _, sub := range e.Exprs {
			walkExpr(sub, visit)
		}
	case *ast.Let:
		walkExpr(e.Init, visit)
		walkExpr(e.Body, visit)
	case *ast.Case:
		walkExpr(e.Expr, visit)
		for _, br := range e.Branches {
			walkExpr(br.Body, visit)
		}
	case *ast.Plus:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Sub:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Mul:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Div:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Neg:
		walkExpr(e.E1, visit)
	case *ast.Lt:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Leq:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Eq:
		walkExpr(e.E1, visit)
		walkExpr(e.E2, visit)
	case *ast.Not:
		walkExpr(e.E1, visit)
	case *ast.IsVoid:
		walkExpr(e.E1, visit)
	case *ast.IntConst, *ast.StrConst, *ast.BoolConst, *ast.New, *ast.NoExpr, *ast.Id:
		// leaves
	}
}
