package server

import (
	"context"

	"github.com/preston-bernstein/football-elo-service/internal/refresher"
)

// Refresher defines the refresh loop behavior needed by the server.
type Refresher interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() refresher.Status
	Trigger(ctx context.Context) (refresher.Result, error)
}

var _ Refresher = (*refresher.Refresher)(nil)
