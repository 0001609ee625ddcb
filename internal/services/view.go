package services

import "productcatalog/internal/domain"

// ProductView is the only shape handed to callers.
type ProductView struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Quantity        int                `json:"quantity"`
	IsDeleted       bool               `json:"is_deleted"`
	StockStatus     domain.StockStatus `json:"stock_status"`
	StockStatusName string             `json:"stock_status_name"`
}

func viewOf(p *domain.Product) ProductView {
	return ProductView{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		Quantity:        p.Quantity(),
		IsDeleted:       p.IsDeleted(),
		StockStatus:     p.StockStatus(),
		StockStatusName: p.StockStatus().String(),
	}
}

// Optional is the result of an id-keyed use case: a value, or not found.
type Optional[T any] struct {
	value T
	found bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, found: true} }
func None[T any]() Optional[T]    { return Optional[T]{} }

func (o Optional[T]) Get() (T, bool) { return o.value, o.found }
func (o Optional[T]) Found() bool    { return o.found }
