// Package binder populates request structs from HTTP requests via struct
// tags: `path:` for chi route parameters, `query:` for the URL query,
// `form:` for urlencoded/multipart bodies, and plain `json` tags for JSON
// bodies. Binders compose — each one only touches its own tag and steps
// aside (ErrNotApplicable) when the request has nothing for it.
package binder
