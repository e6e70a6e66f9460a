// Package workflow holds the persisted job-progression state machine: the
// JSON-backed document store, the marketplace reconciler that promotes
// pending domains as delegated jobs complete, the initiation gate that
// enforces domain ordering, and the completion sink that records finished
// instances in the ledger.
package workflow
