package ownership

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/book"
	"bookcatalog/internal/user"
)

// memStore keeps users, books and edges in memory.
type memStore struct {
	users   map[int64]user.User
	books   map[int64]book.Book
	owned   map[int64][]int64
	writes  int
	txCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users: map[int64]user.User{1: {ID: 1, Username: "alice"}},
		books: map[int64]book.Book{10: {ID: 10, Title: "1984"}, 11: {ID: 11, Title: "Animal Farm"}},
		owned: map[int64][]int64{},
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txCalls++
	return fn(ctx)
}

func (m *memStore) BookIDs(_ context.Context, userID int64) ([]int64, error) {
	return slices.Clone(m.owned[userID]), nil
}

func (m *memStore) Insert(_ context.Context, userID, bookID int64) error {
	if slices.Contains(m.owned[userID], bookID) {
		return ErrAlreadyOwned
	}
	m.writes++
	m.owned[userID] = append(m.owned[userID], bookID)
	return nil
}

func (m *memStore) Delete(_ context.Context, userID, bookID int64) error {
	m.writes++
	m.owned[userID] = Remove(m.owned[userID], bookID).Books
	return nil
}

func (m *memStore) Replace(_ context.Context, userID int64, bookIDs []int64) error {
	m.writes++
	m.owned[userID] = slices.Clone(bookIDs)
	return nil
}

func (m *memStore) ListBooks(_ context.Context, userID int64, limit, offset int) ([]book.Book, int, error) {
	ids := m.owned[userID]
	out := []book.Book{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, m.books[ids[i]])
	}
	return out, len(ids), nil
}

type memUsers struct{ *memStore }

func (m memUsers) GetByID(_ context.Context, id int64) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u.Books = []book.Book{}
	for _, bookID := range m.owned[id] {
		u.Books = append(u.Books, m.books[bookID])
	}
	return u, nil
}

func (m memUsers) Lock(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	return nil
}

type memBooks struct{ *memStore }

func (m memBooks) GetByID(_ context.Context, id int64) (book.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, memUsers{store}, memBooks{store}, store), store
}

func TestService_AddBookTwice(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u, err := svc.AddBook(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, u.Books, 1)
	assert.Equal(t, int64(10), u.Books[0].ID)

	_, err = svc.AddBook(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	u, err = svc.users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, u.Books, 1)
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, 2, store.txCalls)
}

func TestService_RemoveNeverOwned(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddBook(ctx, 1, 10)
	require.NoError(t, err)
	writes := store.writes

	u, err := svc.RemoveBook(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, u.BookIDs())
	assert.Equal(t, writes, store.writes, "no write for a book never owned")
}

func TestService_RemoveOwned(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddBook(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, 1, 11)
	require.NoError(t, err)

	u, err := svc.RemoveBook(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, u.BookIDs())
}

func TestService_ExistenceGuards(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddBook(ctx, 99, 10)
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.AddBook(ctx, 1, 99)
	assert.ErrorIs(t, err, book.ErrNotFound)

	_, err = svc.RemoveBook(ctx, 99, 10)
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.RemoveBook(ctx, 1, 99)
	assert.ErrorIs(t, err, book.ErrNotFound)

	assert.Zero(t, store.writes)
}

func TestService_ReplaceCollection(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddBook(ctx, 1, 10)
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceCollection(ctx, 1, []int64{11}))
	assert.Equal(t, []int64{11}, store.owned[1])

	err = svc.ReplaceCollection(ctx, 1, []int64{11, 11})
	assert.ErrorIs(t, err, ErrDuplicateOwnership)
	assert.ErrorIs(t, err, user.ErrDuplicateOwnership)
	assert.Equal(t, []int64{11}, store.owned[1])

	err = svc.ReplaceCollection(ctx, 1, []int64{10, 404})
	assert.ErrorIs(t, err, book.ErrNotFound)

	err = svc.ReplaceCollection(ctx, 2, []int64{10})
	assert.ErrorIs(t, err, user.ErrNotFound)

	require.NoError(t, svc.ReplaceCollection(ctx, 1, []int64{}))
	assert.Empty(t, store.owned[1])
}

func TestService_ListBooks(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddBook(ctx, 1, 10)
	require.NoError(t, err)

	books, total, err := svc.ListBooks(ctx, 1, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, books, 1)

	_, _, err = svc.ListBooks(ctx, 5, 20, 0)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
