// Package ledger persists work units in SQLite: the backing relational store
// the pipeline claims new briefs from and flushes completed-run summaries to.
//
// A unit is created externally (or via the CLI), claimed by the reconciler as
// the single active workflow instance, and marked completed with a flat
// summary once every pipeline domain has delivered. The database outlives the
// JSON workflow document; losing the document is recoverable because the
// intake brief can be re-read from here.
package ledger
