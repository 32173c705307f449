package product

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// ProjectionCache is the port for caching product projections. A miss is
// reported as domain.ErrNotFound.
type ProjectionCache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	SetProduct(ctx context.Context, dto *ProductDTO) error
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
}

// invalidateProjection drops a cached projection best-effort after a
// mutation; cache failures never fail the command.
func invalidateProjection(ctx context.Context, cache ProjectionCache, log *logger.Logger, id uuid.UUID) {
	if cache == nil {
		return
	}

	if err := cache.InvalidateProduct(ctx, id); err != nil {
		log.WithFields(map[string]interface{}{
			"product_id": id,
		}).Error("Failed to invalidate product cache", err)
	}
}
