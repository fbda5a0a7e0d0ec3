package ast

// Script is the root of every parse: one or more statements separated by
// semicolons.
type Script struct {
	NodeInfo
	Statements []Stmt
}

// SelectStmt represents a complete SELECT statement with optional WITH clause.
type SelectStmt struct {
	NodeInfo
	With *WithClause
	Body *SelectBody
}

func (*SelectStmt) stmtNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	NodeInfo
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	NodeInfo
	Name    string
	Columns []string
	Select  *SelectStmt
}

// SelectBody represents the body of a SELECT with possible set operations.
type SelectBody struct {
	NodeInfo
	Left  *SelectCore
	Op    SetOpType
	Right *SelectBody // chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone         SetOpType = ""
	SetOpUnion        SetOpType = "UNION"
	SetOpUnionAll     SetOpType = "UNION ALL"
	SetOpIntersect    SetOpType = "INTERSECT"
	SetOpIntersectAll SetOpType = "INTERSECT ALL"
	SetOpExcept       SetOpType = "EXCEPT"
	SetOpExceptAll    SetOpType = "EXCEPT ALL"
)

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	NodeInfo
	Distinct bool
	Columns  []*SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	Windows  []*WindowDef
	Qualify  Expr
	OrderBy  []*OrderByItem
	Limit    Expr
	Offset   Expr
	Fetch    *FetchClause
}

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	NodeInfo
	Expr  Expr
	Alias string
}

// FromClause represents the FROM clause.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	NodeInfo
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr     // ON clause (mutually exclusive with Using)
	Using     []string // USING (col1, col2) columns
}

// JoinType is the SQL keyword of a join.
type JoinType string

// Join types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// OrderByItem represents an item in ORDER BY clause.
type OrderByItem struct {
	NodeInfo
	Expr       Expr
	Desc       bool
	NullsFirst *bool // nil means default, true = NULLS FIRST, false = NULLS LAST
}

// FetchClause represents FETCH FIRST/NEXT n ROWS ONLY/WITH TIES.
type FetchClause struct {
	NodeInfo
	First    bool // true = FIRST, false = NEXT
	Count    Expr // nil = 1 row implied
	Percent  bool
	WithTies bool
}

// WindowDef represents a named window definition in the WINDOW clause.
type WindowDef struct {
	NodeInfo
	Name string
	Spec *WindowSpec
}
