// Package env reads raw environment variables for the few settings needed
// before the typed config is loaded.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
