// Package id provides unique identifier generation for pipeline runs.
package id

import "github.com/google/uuid"

// Generate creates a new random run ID.
// The same value names the run's staging area and its remote folder, so it
// must be unique across concurrent requests without any shared counter.
// Example: 3f1c2a9e-8a4b-4d52-9a1e-0c6b8f3e2d71
func Generate() string {
	return uuid.NewString()
}
