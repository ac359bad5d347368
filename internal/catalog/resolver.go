package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

// ErrLookupFailed is returned when the provider could not be queried or its
// response could not be read.
var ErrLookupFailed = errors.New("catalog: external lookup failed")

// Lookup fetches a provider document by ISBN.
type Lookup interface {
	LookupISBN(ctx context.Context, isbn string) (openlibrary.Document, error)
}

// Store is the part of the book repository the resolver needs.
type Store interface {
	GetByISBN(ctx context.Context, isbn string) (book.Book, error)
	InsertOrGetByISBN(ctx context.Context, b *book.Book) (bool, error)
}

// Resolver answers ISBN queries from local storage first and falls back to
// the external catalog, persisting what it finds.
type Resolver struct {
	store  Store
	lookup Lookup
	logger *zap.Logger
}

func NewResolver(store Store, lookup Lookup, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, lookup: lookup, logger: logger}
}

// ResolveOrFetch returns the book for isbn. created is true only when this
// call fetched the record remotely and inserted it. A local hit makes no
// network call. When the provider has no data, book.ErrNotFound is returned
// and nothing is stored.
func (r *Resolver) ResolveOrFetch(ctx context.Context, isbn string) (b book.Book, created bool, err error) {
	b, err = r.store.GetByISBN(ctx, isbn)
	if err == nil {
		return b, false, nil
	}
	if !errors.Is(err, book.ErrNotFound) {
		return book.Book{}, false, fmt.Errorf("local lookup %s: %w", isbn, err)
	}

	doc, err := r.lookup.LookupISBN(ctx, isbn)
	switch {
	case errors.Is(err, openlibrary.ErrNotFound):
		return book.Book{}, false, book.ErrNotFound
	case err != nil:
		return book.Book{}, false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	b, err = MapDocument(isbn, doc)
	if err != nil {
		return book.Book{}, false, err
	}

	created, err = r.store.InsertOrGetByISBN(ctx, &b)
	if err != nil {
		return book.Book{}, false, fmt.Errorf("persist %s: %w", isbn, err)
	}
	if created {
		r.logger.Info("catalog entry created", zap.String("isbn", isbn), zap.Int64("book_id", b.ID))
	}
	return b, created, nil
}
