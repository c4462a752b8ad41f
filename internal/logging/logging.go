// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New creates a logger appropriate for the environment. Production gets
// JSON output at info level; anything else gets the console encoder
// with debug enabled.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
