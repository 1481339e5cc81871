package config

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first of .env and .env.local that exists. Variables
// already set in the process environment are not overwritten.
func loadEnvFile() error {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		return godotenv.Load(name)
	}
	return fs.ErrNotExist
}
