package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// ProductDTO is the read-facing projection of a product aggregate.
type ProductDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Price         float64    `json:"price"`
	StockQuantity int        `json:"stock_quantity"`
	Category      string     `json:"category"`
	Sku           string     `json:"sku"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	InStock       bool       `json:"in_stock"`
}

// NewProductDTO projects an aggregate for presentation.
func NewProductDTO(p *domain.Product) *ProductDTO {
	return &ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		Sku:           p.Sku,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		InStock:       p.IsInStock(),
	}
}

func newProductDTOs(products []*domain.Product) []*ProductDTO {
	dtos := make([]*ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, NewProductDTO(p))
	}
	return dtos
}
