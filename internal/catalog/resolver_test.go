package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) LookupISBN(ctx context.Context, isbn string) (openlibrary.Document, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(openlibrary.Document), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByISBN(ctx context.Context, isbn string) (book.Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(book.Book), args.Error(1)
}

func (m *mockStore) InsertOrGetByISBN(ctx context.Context, b *book.Book) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func newResolver() (*Resolver, *mockStore, *mockLookup) {
	store := new(mockStore)
	lookup := new(mockLookup)
	return NewResolver(store, lookup, zap.NewNop()), store, lookup
}

func orwellDocument() openlibrary.Document {
	return openlibrary.Document{
		Title:         "1984",
		PublishDate:   strPtr("1961"),
		NumberOfPages: pages("328"),
		Authors:       []openlibrary.Named{{Name: "George Orwell"}},
		Publishers:    []openlibrary.Named{{Name: "Signet Classic"}},
		Cover:         &openlibrary.Cover{Large: "http://x/y.jpg"},
	}
}

func TestResolveOrFetch_LocalHitMakesNoNetworkCall(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	local := book.Book{ID: 5, ISBN: "0451526538", Title: "1984"}
	store.On("GetByISBN", ctx, "0451526538").Return(local, nil)

	got, created, err := resolver.ResolveOrFetch(ctx, "0451526538")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, local, got)
	lookup.AssertNotCalled(t, "LookupISBN", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertOrGetByISBN", mock.Anything, mock.Anything)
}

func TestResolveOrFetch_RemoteHitCreates(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	store.On("GetByISBN", ctx, "0451526538").Return(book.Book{}, book.ErrNotFound)
	lookup.On("LookupISBN", ctx, "0451526538").Return(orwellDocument(), nil)
	store.On("InsertOrGetByISBN", ctx, mock.AnythingOfType("*book.Book")).
		Run(func(args mock.Arguments) { args.Get(1).(*book.Book).ID = 77 }).
		Return(true, nil)

	got, created, err := resolver.ResolveOrFetch(ctx, "0451526538")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(77), got.ID)
	assert.Equal(t, "George Orwell", got.Author)
	assert.Equal(t, "1984", got.Title)
	assert.Equal(t, "No specified", got.Subtitle)
	assert.Equal(t, 328, got.Pages)
	assert.Equal(t, "0451526538", got.ISBN)
	lookup.AssertNumberOfCalls(t, "LookupISBN", 1)
}

func TestResolveOrFetch_NotFoundAnywherePersistsNothing(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	store.On("GetByISBN", ctx, "0000000000").Return(book.Book{}, book.ErrNotFound)
	lookup.On("LookupISBN", ctx, "0000000000").Return(openlibrary.Document{}, openlibrary.ErrNotFound)

	_, created, err := resolver.ResolveOrFetch(ctx, "0000000000")

	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.False(t, created)
	store.AssertNotCalled(t, "InsertOrGetByISBN", mock.Anything, mock.Anything)
}

func TestResolveOrFetch_LookupFailureIsNotNotFound(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	store.On("GetByISBN", ctx, "0451526538").Return(book.Book{}, book.ErrNotFound)
	lookup.On("LookupISBN", ctx, "0451526538").
		Return(openlibrary.Document{}, errors.Join(openlibrary.ErrTransport, errors.New("connection refused")))

	_, _, err := resolver.ResolveOrFetch(ctx, "0451526538")

	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.NotErrorIs(t, err, book.ErrNotFound)
	store.AssertNotCalled(t, "InsertOrGetByISBN", mock.Anything, mock.Anything)
}

func TestResolveOrFetch_MappingFailure(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	doc := orwellDocument()
	doc.Cover = nil
	store.On("GetByISBN", ctx, "0451526538").Return(book.Book{}, book.ErrNotFound)
	lookup.On("LookupISBN", ctx, "0451526538").Return(doc, nil)

	_, _, err := resolver.ResolveOrFetch(ctx, "0451526538")

	assert.ErrorIs(t, err, ErrMapping)
	store.AssertNotCalled(t, "InsertOrGetByISBN", mock.Anything, mock.Anything)
}

func TestResolveOrFetch_RaceLoserGetsExistingRow(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	winner := book.Book{ID: 3, ISBN: "0451526538", Title: "1984"}
	store.On("GetByISBN", ctx, "0451526538").Return(book.Book{}, book.ErrNotFound)
	lookup.On("LookupISBN", ctx, "0451526538").Return(orwellDocument(), nil)
	store.On("InsertOrGetByISBN", ctx, mock.AnythingOfType("*book.Book")).
		Run(func(args mock.Arguments) { *args.Get(1).(*book.Book) = winner }).
		Return(false, nil)

	got, created, err := resolver.ResolveOrFetch(ctx, "0451526538")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner, got)
}

func TestResolveOrFetch_LocalStorageError(t *testing.T) {
	resolver, store, lookup := newResolver()
	ctx := context.Background()

	store.On("GetByISBN", ctx, "0451526538").Return(book.Book{}, context.DeadlineExceeded)

	_, _, err := resolver.ResolveOrFetch(ctx, "0451526538")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	lookup.AssertNotCalled(t, "LookupISBN", mock.Anything, mock.Anything)
}
