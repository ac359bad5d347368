package user

import (
	"context"
	"fmt"

	"bookcatalog/internal/platform/crypto"
)

type Service struct {
	repo       Repository
	tx         Transactor
	collection CollectionReplacer
}

func NewService(repo Repository, tx Transactor, collection CollectionReplacer) *Service {
	return &Service{repo: repo, tx: tx, collection: collection}
}

func (s *Service) List(ctx context.Context, q Query) ([]User, int, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create hashes password and stores the new user.
func (s *Service) Create(ctx context.Context, u *User, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	u.Books = nil
	return s.repo.Create(ctx, u)
}

// Update replaces the user's profile fields. The path id must equal u.ID,
// which is checked before storage is touched. When bookIDs is non-nil the
// owned collection is replaced in the same transaction.
func (s *Service) Update(ctx context.Context, id int64, u *User, bookIDs []int64) error {
	if u.ID != id {
		return ErrIDMismatch
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Lock(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		if bookIDs == nil {
			return nil
		}
		return s.collection.ReplaceCollection(ctx, id, bookIDs)
	})
}

func (s *Service) UpdatePassword(ctx context.Context, id int64, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
