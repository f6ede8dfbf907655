// Package errors holds the error classes shared by every launcher stage.
//
// Stages wrap one of these sentinels together with the underlying cause, so
// callers classify failures with errors.Is and still see the full chain.
package errors

import "errors"

var (
	// Transport errors 🌐
	ErrNetwork    = errors.New("❌ network request failed")
	ErrHTTPStatus = errors.New("❌ unexpected HTTP status")

	// Content errors 📄
	ErrParse            = errors.New("❌ malformed document")
	ErrChecksumMismatch = errors.New("❌ checksum mismatch")
	ErrVersionNotFound  = errors.New("❌ game version not found in manifest")

	// Local errors 📁
	ErrFilesystem = errors.New("❌ filesystem operation failed")

	// Runtime errors ☕
	ErrRuntimeNotFound     = errors.New("❌ no suitable Java runtime found")
	ErrRuntimeProvisioning = errors.New("❌ Java runtime provisioning failed")

	// Execution errors 🚀
	ErrProcessSpawn = errors.New("❌ failed to start game process")
	ErrEarlyCrash   = errors.New("❌ game exited during startup")
)
