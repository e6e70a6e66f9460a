// Package daemon hosts the long-running brandforge process: the single-instance
// lock, the pipeline poll loop, and the local HTTP status API.
package daemon
