package stage

import (
	"context"

	"dubstudio/internal/session"
)

// Handler describes the contract the orchestrator needs from each pipeline stage.
type Handler interface {
	Prepare(context.Context, *session.Session) error
	Execute(context.Context, *session.Session) error
	HealthCheck(context.Context) Health
}
