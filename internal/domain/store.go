package domain

import "context"

// Repository is the persistence contract shared by aggregates. Create, Update and
// Delete only register changes; they become durable on UnitOfWork.Commit.
type Repository[T any] interface {
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, entity T) error
	Get(ctx context.Context, id int64) (T, bool, error)
	GetAll(ctx context.Context) ([]T, error)
}

type ProductRepository = Repository[*Product]

// UnitOfWork scopes the changes of one use case.
type UnitOfWork interface {
	Products() ProductRepository
	Commit(ctx context.Context) error
}

// Store hands out a fresh unit of work per use case.
type Store interface {
	Begin() UnitOfWork
}
