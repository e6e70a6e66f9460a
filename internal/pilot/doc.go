// Package pilot advances the content pipeline: it reconciles persisted
// workflow state, picks the next eligible domain, composes the outbound job
// brief, and delegates through the initiation gate.
package pilot
