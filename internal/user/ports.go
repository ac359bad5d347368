package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=user

type Repository interface {
	List(ctx context.Context, q Query) ([]User, int, error)
	// GetByID loads the user together with the books they own.
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u *User) error
	// Update writes username, name and birth date. The password is untouched.
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
	// Lock takes a row lock on the user for the rest of the transaction.
	Lock(ctx context.Context, id int64) error
}

// Transactor runs fn inside one storage transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CollectionReplacer swaps the whole set of books a user owns. It returns
// ErrDuplicateOwnership when bookIDs repeats a book.
type CollectionReplacer interface {
	ReplaceCollection(ctx context.Context, userID int64, bookIDs []int64) error
}
