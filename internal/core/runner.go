package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRunnerUnavailable is returned when no command runner is deployed.
var ErrRunnerUnavailable = errors.New("command runner not configured")

// ArtifactRef points at the output a command produced for a dataset.
type ArtifactRef struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url,omitempty"`
}

// CommandRunner executes a named command against an ingested dataset and
// returns a reference to the produced artifact. Implementations live outside
// this module; the service only brokers the call.
type CommandRunner interface {
	Run(ctx context.Context, datasetID uuid.UUID, command string, args map[string]string) (ArtifactRef, error)
}

type unconfiguredRunner struct{}

// NewUnconfiguredRunner returns a CommandRunner that rejects every call with
// ErrRunnerUnavailable. Used when no runner is wired at startup.
func NewUnconfiguredRunner() CommandRunner {
	return unconfiguredRunner{}
}

func (unconfiguredRunner) Run(context.Context, uuid.UUID, string, map[string]string) (ArtifactRef, error) {
	return ArtifactRef{}, ErrRunnerUnavailable
}
