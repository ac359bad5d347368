package ownership

import (
	"context"

	"bookcatalog/internal/book"
	"bookcatalog/internal/user"
)

// Repository stores the user to book edges.
type Repository interface {
	BookIDs(ctx context.Context, userID int64) ([]int64, error)
	Insert(ctx context.Context, userID, bookID int64) error
	Delete(ctx context.Context, userID, bookID int64) error
	Replace(ctx context.Context, userID int64, bookIDs []int64) error
	ListBooks(ctx context.Context, userID int64, limit, offset int) ([]book.Book, int, error)
}

type Users interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	Lock(ctx context.Context, id int64) error
}

type Books interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
