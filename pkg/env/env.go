package env

import "os"

// Get reads key from the environment, falling back when unset or blank.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
