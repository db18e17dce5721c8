// Package driving provides interfaces for primary/inbound adapters.
// The HTTP layer depends on these service interfaces, never on the
// concrete implementations in internal/core/services.
package driving
