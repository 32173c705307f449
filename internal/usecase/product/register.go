package product

import (
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/mediator"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// RegisterValidation registers the struct-tag rule set of every request
// type that carries fields. Must run before RegisterHandlers so the
// composed pipelines see the rules.
func RegisterValidation(vb *mediator.ValidationBehavior) {
	mediator.RegisterRules(vb, mediator.StructRule[CreateProductCommand]())
	mediator.RegisterRules(vb, mediator.StructRule[UpdateProductCommand]())
	mediator.RegisterRules(vb, mediator.StructRule[UpdateProductStockCommand]())
	mediator.RegisterRules(vb, mediator.StructRule[GetProductBySkuQuery]())
	mediator.RegisterRules(vb, mediator.StructRule[GetProductsByCategoryQuery]())
}

// RegisterHandlers maps every product command and query to its handler.
// A duplicate registration is returned as an error for the caller to treat
// as a startup failure.
func RegisterHandlers(d *mediator.Dispatcher, store domain.Store, events Publisher, cache ProjectionCache, log *logger.Logger) error {
	if err := mediator.Register[CreateProductCommand, uuid.UUID](d, NewCreateProductHandler(store, events, log)); err != nil {
		return err
	}
	if err := mediator.Register[UpdateProductCommand, bool](d, NewUpdateProductHandler(store, events, cache, log)); err != nil {
		return err
	}
	if err := mediator.Register[UpdateProductStockCommand, bool](d, NewUpdateProductStockHandler(store, events, cache, log)); err != nil {
		return err
	}
	if err := mediator.Register[DeleteProductCommand, bool](d, NewDeleteProductHandler(store, events, cache, log)); err != nil {
		return err
	}
	if err := mediator.Register[GetProductByIDQuery, *ProductDTO](d, NewGetProductByIDHandler(store, cache, log)); err != nil {
		return err
	}
	if err := mediator.Register[GetAllProductsQuery, []*ProductDTO](d, NewGetAllProductsHandler(store, log)); err != nil {
		return err
	}
	if err := mediator.Register[GetProductBySkuQuery, *ProductDTO](d, NewGetProductBySkuHandler(store, log)); err != nil {
		return err
	}
	if err := mediator.Register[GetProductsByCategoryQuery, []*ProductDTO](d, NewGetProductsByCategoryHandler(store, log)); err != nil {
		return err
	}
	if err := mediator.Register[GetProductsInStockQuery, []*ProductDTO](d, NewGetProductsInStockHandler(store, log)); err != nil {
		return err
	}
	return nil
}
