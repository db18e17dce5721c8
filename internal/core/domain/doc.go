// Package domain contains the core business entities and pure logic of the
// knowledge hub: documents with AI-derived fields, immutable versions, the
// activity trail, users, validation rules, and the similarity ranking used by
// semantic search and question answering.
//
// Nothing in this package touches the network or the database. Services in
// internal/core/services orchestrate these entities through the ports in
// internal/core/ports.
package domain
