// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): persistence, full-text search, and the
// external AI provider. Services depend on these abstractions, never on
// the concrete adapters.
package driven
