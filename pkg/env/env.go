// Package env covers the environment handling that has to happen before
// config.Load: dotenv files for local runs, and the few raw variables the
// logger reads while it is being built.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Prefix namespaces the service's variables, matching the envconfig prefix.
const Prefix = "BUY2BRANDS_"

// Files are tried most specific first. godotenv never overrides a variable
// that is already set, so the real environment beats both and .env.local
// beats .env.
var Files = []string{".env.local", ".env"}

// Load reads whichever of Files exist and returns their names. A missing
// file is not an error; a malformed one is.
func Load() ([]string, error) {
	var loaded []string
	for _, name := range Files {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, fmt.Errorf("load %s: %w", name, err)
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// Get returns BUY2BRANDS_<key>, then <key>, then fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
