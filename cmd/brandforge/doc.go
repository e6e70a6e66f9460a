// Command brandforge is the CLI for the brand-launch pipeline: it runs the
// daemon, submits work units, and inspects ledger and workflow state.
package main
