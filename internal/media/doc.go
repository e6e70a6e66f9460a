// Package media wraps the asynchronous image/video generation API used to
// pre-render prompts before delegating registration work.
package media
