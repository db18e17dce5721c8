// Package services implements the application core: document lifecycle with
// versioning and activity logging, keyword and semantic search, retrieval
// plus answer synthesis for Q&A, and authentication. Services orchestrate
// the domain entities through the driven ports and are wired together in
// cmd/teamhub.
package services
