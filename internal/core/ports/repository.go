package ports

import (
	"context"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

type RunRepository interface {
	SaveRun(ctx context.Context, run domain.Run) error
	GetRun(ctx context.Context, id string) (domain.Run, error)
	ListRuns(ctx context.Context, artist string) ([]domain.Run, error)
}
