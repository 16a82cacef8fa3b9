// Package datastore defines the generic remote-data-access interface the
// application services are written against, plus three backends: a hosted
// REST data store (PostgREST wire format), Postgres via pgx, and an
// in-memory store for development and tests.
//
// The query DSL is intentionally small — equality filters, ordering, and a
// limit — because that is the intersection every targeted backend supports
// and everything the help-desk surfaces need:
//
//	rows, err := store.Select(ctx, "tickets",
//		datastore.Q().
//			Eq("assignee_id", agentID).
//			Eq("status", "open").
//			OrderBy("created_at", true).
//			Limit(50),
//	)
//
// Updates and deletes that match nothing affect zero rows and return no
// error; callers that care inspect the affected-row count.
package datastore
