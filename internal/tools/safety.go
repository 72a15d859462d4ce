// Package tools turns the Upgates operation catalog into MCP tools and runs
// each invocation through a fixed pipeline: readonly gate, validation, request
// building, the upstream call and response post-processing.
package tools

import (
	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// CheckReadonly verifies if an operation is allowed given the readonly
// setting. Returns a Readonly error if blocked, nil if allowed.
//
// The check runs before validation and before any upstream request, so a
// blocked operation never reaches the network.
func CheckReadonly(readonly bool, op *Operation) error {
	if !readonly || !op.Mutating {
		return nil
	}
	return upgates.NewReadonlyError(op.Name)
}
