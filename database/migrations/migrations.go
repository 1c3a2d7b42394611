// Package migrations registers the storefront schema with pkg/migration.
// Import it for side effects wherever migrations are run.
package migrations
