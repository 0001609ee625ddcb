package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"productcatalog/internal/domain"
)

var tracer = otel.Tracer("productcatalog/services")

// Notifier fans out product changes after a successful commit. A failed
// delivery is reported to the caller; the commit stands.
type Notifier interface {
	ProductCreated(ctx context.Context, name string) error
	QuantityChanged(ctx context.Context, name string, becameInStock, becameOutOfStock bool) error
	ProductChanged(ctx context.Context, name, changes string) error
	ProductUnavailable(ctx context.Context, name string) error
	ProductAvailable(ctx context.Context, name string) error
	ProductDiscontinued(ctx context.Context, name string) error
}

// ProductService runs every product use case as one unit of work:
// validate, load, mutate, persist, commit, notify, project.
type ProductService struct {
	Store    domain.Store
	Notifier Notifier
	Log      *zap.Logger
}

func NewProductService(store domain.Store, notifier Notifier, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{Store: store, Notifier: notifier, Log: logger}
}

func (s *ProductService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	s.Log.Debug("handling request", zap.String("op", op))
	return tracer.Start(ctx, "ProductService."+op, trace.WithAttributes(attrs...))
}

func (s *ProductService) finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Log.Warn("request failed", zap.String("op", op), zap.Error(err))
	} else {
		s.Log.Debug("handled request", zap.String("op", op))
	}
	span.End()
}

func (s *ProductService) load(ctx context.Context, repo domain.ProductRepository, id int64) (*domain.Product, bool, error) {
	p, ok, err := repo.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("load product %d: %w", id, err)
	}
	return p, ok, nil
}

func (s *ProductService) Get(ctx context.Context, req GetProductRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "Get", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "Get", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	p, ok, err := s.load(ctx, s.Store.Begin().Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}
	return Some(viewOf(p)), nil
}

// List returns every product, soft-deleted ones included.
func (s *ProductService) List(ctx context.Context, req GetProductsRequest) (_ []ProductView, err error) {
	ctx, span := s.start(ctx, "List")
	defer func() { s.finish(span, "List", err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	all, err := s.Store.Begin().Products().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]ProductView, 0, len(all))
	for _, p := range all {
		out = append(out, viewOf(p))
	}
	span.SetAttributes(attribute.Int("product.count", len(out)))
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (_ ProductView, err error) {
	ctx, span := s.start(ctx, "Create", attribute.String("product.name", req.Name))
	defer func() { s.finish(span, "Create", err) }()

	if err = req.Validate(); err != nil {
		return ProductView{}, err
	}
	p := domain.NewProduct(req.Name, req.Description, *req.Quantity)

	uow := s.Store.Begin()
	if err = uow.Products().Create(ctx, p); err != nil {
		return ProductView{}, fmt.Errorf("create product: %w", err)
	}
	if err = uow.Commit(ctx); err != nil {
		return ProductView{}, fmt.Errorf("commit create: %w", err)
	}
	span.SetAttributes(attribute.Int64("product.id", p.ID()))

	if err = s.Notifier.ProductCreated(ctx, p.Name()); err != nil {
		return ProductView{}, fmt.Errorf("notify created: %w", err)
	}
	return viewOf(p), nil
}

func (s *ProductService) SetQuantity(ctx context.Context, req SetQuantityRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "SetQuantity", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "SetQuantity", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	uow := s.Store.Begin()
	p, ok, err := s.load(ctx, uow.Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}

	tr := p.SetQuantity(*req.Quantity)
	span.SetAttributes(
		attribute.Bool("stock.became_in_stock", tr.BecameInStock),
		attribute.Bool("stock.became_out_of_stock", tr.BecameOutOfStock),
	)

	if err = uow.Products().Update(ctx, p); err != nil {
		return None[ProductView](), fmt.Errorf("update product %d: %w", p.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return None[ProductView](), fmt.Errorf("commit quantity: %w", err)
	}
	if err = s.Notifier.QuantityChanged(ctx, p.Name(), tr.BecameInStock, tr.BecameOutOfStock); err != nil {
		return None[ProductView](), fmt.Errorf("notify quantity: %w", err)
	}
	return Some(viewOf(p)), nil
}

func (s *ProductService) Update(ctx context.Context, req UpdateProductRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "Update", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "Update", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	uow := s.Store.Begin()
	p, ok, err := s.load(ctx, uow.Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}

	p.Update(req.Name, req.Description)

	if err = uow.Products().Update(ctx, p); err != nil {
		return None[ProductView](), fmt.Errorf("update product %d: %w", p.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return None[ProductView](), fmt.Errorf("commit update: %w", err)
	}
	// no diff is computed yet; subscribers get an empty change description
	if err = s.Notifier.ProductChanged(ctx, p.Name(), ""); err != nil {
		return None[ProductView](), fmt.Errorf("notify changed: %w", err)
	}
	return Some(viewOf(p)), nil
}

func (s *ProductService) SoftDelete(ctx context.Context, req ProductIDRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "SoftDelete", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "SoftDelete", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	uow := s.Store.Begin()
	p, ok, err := s.load(ctx, uow.Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}

	p.SoftDelete()

	if err = uow.Products().Update(ctx, p); err != nil {
		return None[ProductView](), fmt.Errorf("update product %d: %w", p.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return None[ProductView](), fmt.Errorf("commit soft delete: %w", err)
	}
	if err = s.Notifier.ProductUnavailable(ctx, p.Name()); err != nil {
		return None[ProductView](), fmt.Errorf("notify unavailable: %w", err)
	}
	return Some(viewOf(p)), nil
}

func (s *ProductService) Restore(ctx context.Context, req ProductIDRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "Restore", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "Restore", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	uow := s.Store.Begin()
	p, ok, err := s.load(ctx, uow.Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}

	p.Restore()

	if err = uow.Products().Update(ctx, p); err != nil {
		return None[ProductView](), fmt.Errorf("update product %d: %w", p.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return None[ProductView](), fmt.Errorf("commit restore: %w", err)
	}
	if err = s.Notifier.ProductAvailable(ctx, p.Name()); err != nil {
		return None[ProductView](), fmt.Errorf("notify available: %w", err)
	}
	return Some(viewOf(p)), nil
}

// HardDelete removes the row and returns the last state of the product.
func (s *ProductService) HardDelete(ctx context.Context, req ProductIDRequest) (_ Optional[ProductView], err error) {
	ctx, span := s.start(ctx, "HardDelete", attribute.Int64("product.id", req.ID))
	defer func() { s.finish(span, "HardDelete", err) }()

	if err = req.Validate(); err != nil {
		return None[ProductView](), err
	}
	uow := s.Store.Begin()
	p, ok, err := s.load(ctx, uow.Products(), req.ID)
	if err != nil || !ok {
		return None[ProductView](), err
	}

	if err = uow.Products().Delete(ctx, p); err != nil {
		return None[ProductView](), fmt.Errorf("delete product %d: %w", p.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return None[ProductView](), fmt.Errorf("commit delete: %w", err)
	}
	if err = s.Notifier.ProductDiscontinued(ctx, p.Name()); err != nil {
		return None[ProductView](), fmt.Errorf("notify discontinued: %w", err)
	}
	return Some(viewOf(p)), nil
}
