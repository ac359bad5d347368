package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Create(ctx context.Context, b *Book) error
	// InsertOrGetByISBN inserts b unless a row with the same ISBN exists, in
	// which case b is overwritten with the stored row. created reports
	// whether this call inserted it.
	InsertOrGetByISBN(ctx context.Context, b *Book) (created bool, err error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}
