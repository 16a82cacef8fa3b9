package datastore

import "context"

// Row is a single record of a collection. Field names are column names in
// the Postgres backend and JSON keys in the REST backend.
type Row map[string]any

// Filter is an equality condition on a field. Equality is the only filter
// the hosted data stores we target guarantee, so it is the only one the DSL
// offers.
type Filter struct {
	Field string
	Value any
}

// Ordering sorts results by a field.
type Ordering struct {
	Field string
	Desc  bool
}

// Query describes a row selection: equality filters, ordering, and an
// optional limit. The zero value selects everything. Queries are values;
// each builder call returns a derived copy, so partially built queries can
// be shared safely.
type Query struct {
	filters  []Filter
	ordering []Ordering
	limit    int
}

// Q returns an empty query to chain builder calls on.
func Q() Query { return Query{} }

// Eq adds an equality filter. Multiple filters are conjoined.
func (q Query) Eq(field string, value any) Query {
	filters := make([]Filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// OrderBy appends an ordering term.
func (q Query) OrderBy(field string, desc bool) Query {
	ordering := make([]Ordering, len(q.ordering), len(q.ordering)+1)
	copy(ordering, q.ordering)
	q.ordering = append(ordering, Ordering{Field: field, Desc: desc})
	return q
}

// Limit caps the number of returned rows. Zero means no limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Filters exposes the equality conditions for backends.
func (q Query) Filters() []Filter { return q.filters }

// Orderings exposes the ordering terms for backends.
func (q Query) Orderings() []Ordering { return q.ordering }

// LimitN exposes the row cap for backends; zero means unlimited.
func (q Query) LimitN() int { return q.limit }

// Store is the generic remote-data-access interface every application
// service talks to. Row-level authorization is the remote store's concern;
// this interface only shapes requests.
//
// Update and Delete return the number of affected rows; matching nothing is
// not an error.
type Store interface {
	// Select returns the rows of the collection matching the query.
	Select(ctx context.Context, collection string, q Query) ([]Row, error)

	// Insert stores a new row and returns it as the backend materialized it
	// (including any backend-assigned fields).
	Insert(ctx context.Context, collection string, row Row) (Row, error)

	// Update merges changes into every row matching the query.
	Update(ctx context.Context, collection string, q Query, changes Row) (int64, error)

	// Delete removes every row matching the query.
	Delete(ctx context.Context, collection string, q Query) (int64, error)
}
