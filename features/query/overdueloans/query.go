package overdueloans

const (
	queryType = "OverdueLoans"
)

// Query represents the intent to list all overdue active loans.
type Query struct{}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
