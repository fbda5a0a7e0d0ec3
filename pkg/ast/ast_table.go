package ast

// TableName represents a table name reference.
type TableName struct {
	NodeInfo
	Catalog string
	Schema  string
	Name    string
	Alias   string

	// CTE is the common table expression an unqualified name resolves to,
	// nil for base tables.
	CTE *CTE
}

func (*TableName) tableRefNode() {}

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*DerivedTable) tableRefNode() {}

// LateralTable represents a LATERAL subquery.
type LateralTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*LateralTable) tableRefNode() {}
