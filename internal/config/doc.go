// Package config loads, normalizes, and validates brandforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BRANDFORGE_MARKETPLACE_API_KEY. The Config type centralizes every knob the
// daemon and CLI need, from state directories to marketplace credentials and
// the pending-job deadline.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
