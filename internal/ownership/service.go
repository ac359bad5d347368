package ownership

import (
	"context"

	"bookcatalog/internal/book"
	"bookcatalog/internal/user"
)

// Service applies ledger commands to stored collections. Every command runs
// existence checks, guards and writes inside one transaction holding a row
// lock on the user.
type Service struct {
	repo  Repository
	users Users
	books Books
	tx    Transactor
}

func NewService(repo Repository, users Users, books Books, tx Transactor) *Service {
	return &Service{repo: repo, users: users, books: books, tx: tx}
}

// AddBook records that userID owns bookID and returns the updated user.
func (s *Service) AddBook(ctx context.Context, userID, bookID int64) (user.User, error) {
	var out user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owned, err := s.load(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if _, err := Add(owned, bookID); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, userID, bookID); err != nil {
			return err
		}
		out, err = s.users.GetByID(ctx, userID)
		return err
	})
	return out, err
}

// RemoveBook drops bookID from the user's collection. Removing a book the
// user does not own succeeds without writing.
func (s *Service) RemoveBook(ctx context.Context, userID, bookID int64) (user.User, error) {
	var out user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owned, err := s.load(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if Remove(owned, bookID).Outcome == Removed {
			if err := s.repo.Delete(ctx, userID, bookID); err != nil {
				return err
			}
		}
		out, err = s.users.GetByID(ctx, userID)
		return err
	})
	return out, err
}

// ReplaceCollection swaps the user's whole collection for bookIDs.
func (s *Service) ReplaceCollection(ctx context.Context, userID int64, bookIDs []int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Lock(ctx, userID); err != nil {
			return err
		}
		existing, err := s.repo.BookIDs(ctx, userID)
		if err != nil {
			return err
		}
		if err := ValidateReplacement(existing, bookIDs); err != nil {
			return err
		}
		for _, id := range bookIDs {
			if _, err := s.books.GetByID(ctx, id); err != nil {
				return err
			}
		}
		return s.repo.Replace(ctx, userID, bookIDs)
	})
}

// ListBooks returns a page of the books userID owns.
func (s *Service) ListBooks(ctx context.Context, userID int64, limit, offset int) ([]book.Book, int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListBooks(ctx, userID, limit, offset)
}

// load locks the user, confirms the book exists and returns the ids the
// user currently owns.
func (s *Service) load(ctx context.Context, userID, bookID int64) ([]int64, error) {
	if err := s.users.Lock(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.repo.BookIDs(ctx, userID)
}
