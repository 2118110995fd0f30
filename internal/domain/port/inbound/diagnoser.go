package inbound

import (
	"context"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// Diagnoser is the entry point used by the HTTP API and the CLI.
type Diagnoser interface {
	// Diagnose returns every derived diagnosis in assertion order.
	Diagnose(ctx context.Context, req model.DiagnoseRequest) ([]model.Diagnosis, error)
	// Best returns the highest-confidence diagnosis and, when persist is set,
	// records it in the history.
	Best(ctx context.Context, req model.DiagnoseRequest, persist bool) (model.Diagnosis, error)
	Symptoms() map[string][]string
	History(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error)
}
