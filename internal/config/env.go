package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads variables from .env and .env.local when present.
// godotenv never overrides variables already set in the process environment.
func loadEnvFiles() error {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return errors.New("no .env file found")
	}
	return godotenv.Load(present...)
}

// DetectCI reports whether the process runs inside an automated pipeline.
func DetectCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS"} {
		if isTruthy(os.Getenv(key)) {
			return true
		}
	}
	return false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
