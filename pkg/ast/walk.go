package ast

// walkChildren calls visit for each direct child of node in source order.
// Nil children are passed through; visit is expected to ignore them.
func walkChildren(node Node, visit func(Node)) {
	switch n := node.(type) {
	case *Script:
		for _, s := range n.Statements {
			visit(s)
		}

	case *SelectStmt:
		visit(n.With)
		visit(n.Body)

	case *WithClause:
		for _, cte := range n.CTEs {
			visit(cte)
		}

	case *CTE:
		visit(n.Select)

	case *SelectBody:
		visit(n.Left)
		visit(n.Right)

	case *SelectCore:
		for _, col := range n.Columns {
			visit(col)
		}
		visit(n.From)
		visit(n.Where)
		for _, expr := range n.GroupBy {
			visit(expr)
		}
		visit(n.Having)
		for _, w := range n.Windows {
			visit(w)
		}
		visit(n.Qualify)
		for _, item := range n.OrderBy {
			visit(item)
		}
		visit(n.Limit)
		visit(n.Offset)
		visit(n.Fetch)

	case *SelectItem:
		visit(n.Expr)

	case *FromClause:
		visit(n.Source)
		for _, join := range n.Joins {
			visit(join)
		}

	case *Join:
		visit(n.Right)
		visit(n.Condition)

	case *OrderByItem:
		visit(n.Expr)

	case *FetchClause:
		visit(n.Count)

	case *WindowDef:
		visit(n.Spec)

	case *TableName, *ColumnRef, *Literal, *StarExpr:
		// Leaf nodes

	case *DerivedTable:
		visit(n.Select)

	case *LateralTable:
		visit(n.Select)

	case *BinaryExpr:
		visit(n.Left)
		visit(n.Right)

	case *UnaryExpr:
		visit(n.Expr)

	case *FuncCall:
		for _, arg := range n.Args {
			visit(arg)
		}
		visit(n.Filter)
		visit(n.Window)

	case *WindowSpec:
		for _, expr := range n.PartitionBy {
			visit(expr)
		}
		for _, item := range n.OrderBy {
			visit(item)
		}
		visit(n.Frame)

	case *FrameSpec:
		visit(n.Start)
		visit(n.End)

	case *FrameBound:
		visit(n.Offset)

	case *CaseExpr:
		visit(n.Operand)
		for _, when := range n.Whens {
			visit(when)
		}
		visit(n.Else)

	case *WhenClause:
		visit(n.Condition)
		visit(n.Result)

	case *CastExpr:
		visit(n.Expr)

	case *InExpr:
		visit(n.Expr)
		for _, v := range n.Values {
			visit(v)
		}
		visit(n.Query)

	case *BetweenExpr:
		visit(n.Expr)
		visit(n.Low)
		visit(n.High)

	case *IsNullExpr:
		visit(n.Expr)

	case *IsBoolExpr:
		visit(n.Expr)

	case *LikeExpr:
		visit(n.Expr)
		visit(n.Pattern)

	case *ParenExpr:
		visit(n.Expr)

	case *SubqueryExpr:
		visit(n.Select)

	case *ExistsExpr:
		visit(n.Select)
	}
}
