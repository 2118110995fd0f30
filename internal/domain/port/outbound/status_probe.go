package outbound

import (
	"context"

	"github.com/jonny/edudiag/internal/domain/model"
)

// StatusProbe observes the platform's current health.
type StatusProbe interface {
	ServerStatus(ctx context.Context) (model.ServerStatus, error)
	HealthCheck(ctx context.Context) error
}
