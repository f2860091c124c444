package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI=true always wins;
// otherwise ENV selects one and anything unknown means development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := Environment(strings.ToLower(os.Getenv("ENV"))); env {
	case Production, Test, Development:
		return env
	default:
		return Development
	}
}

// UsesSecrets reports whether values are read from Docker secrets before
// falling back to environment variables.
func (e Environment) UsesSecrets() bool {
	return e == Development || e == Production
}

// LogMode is the logger mode matching the environment.
func (e Environment) LogMode() string {
	if e == Production {
		return "production"
	}
	return "development"
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
