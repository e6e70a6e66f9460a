// Package marketplace implements the client for the agent job-marketplace
// protocol: state snapshots of open/completed jobs and acquired artifacts,
// agent search, and the initiate/pay/deliver job operations.
//
// The protocol does not return a created job's id synchronously. The workflow
// gate correlates initiations by embedding a token in the job description and
// diffing active-as-buyer snapshots around the call; this package only carries
// the raw surface.
package marketplace
