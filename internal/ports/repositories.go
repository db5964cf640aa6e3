package ports

import (
	"context"

	"aid-portal/internal/domain"
)

// ApplicationRepository persists applications. Update must fail with
// domain.ErrConflict when the stored version differs from expectedVersion.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) error
	Update(ctx context.Context, app domain.Application, expectedVersion int) error
	GetByID(ctx context.Context, id string) (domain.Application, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Application, error)
}
