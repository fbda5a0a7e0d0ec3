package dialect

// ANSI is the baseline dialect: no optional syntax.
var ANSI = NewDialect("ansi").
	Describe("ANSI SQL").
	Aggregates(
		"SUM", "COUNT", "AVG", "MIN", "MAX",
		"STDDEV_POP", "STDDEV_SAMP", "VAR_POP", "VAR_SAMP",
		"EVERY", "ANY", "SOME",
	).
	Generators(
		"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME",
		"LOCALTIME", "LOCALTIMESTAMP",
	).
	Windows(
		"ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "PERCENT_RANK", "CUME_DIST",
		"LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE",
	).
	Build()

// Postgres adds ILIKE and the :: cast operator.
var Postgres = Extend("postgres", ANSI).
	Describe("PostgreSQL").
	Enable(FeatureIlike, FeatureCastOperator).
	Aggregates("ARRAY_AGG", "STRING_AGG", "BOOL_AND", "BOOL_OR", "JSON_AGG", "JSONB_AGG").
	Generators("NOW", "RANDOM", "GEN_RANDOM_UUID", "CURRENT_SCHEMA", "VERSION").
	Build()

// DuckDB adds QUALIFY on top of the Postgres syntax.
var DuckDB = Extend("duckdb", Postgres).
	Describe("DuckDB").
	Enable(FeatureQualify).
	Aggregates(
		"LIST", "FIRST", "LAST", "ANY_VALUE", "ARBITRARY",
		"MEDIAN", "MODE", "QUANTILE", "QUANTILE_CONT", "QUANTILE_DISC",
		"APPROX_COUNT_DISTINCT", "HISTOGRAM", "PRODUCT",
	).
	Generators("TODAY", "UUID").
	Build()

func init() {
	Register(ANSI)
	Register(Postgres)
	SetDefault(DuckDB)
}
