// Package categories manages the ticket taxonomy. Reads are cached since
// every filing form loads the list; mutations are admin-only and bust the
// cache.
package categories
