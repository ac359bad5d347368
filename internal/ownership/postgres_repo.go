package ownership

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/postgres"
)

const ownershipConstraint = "user_books_pkey"

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) BookIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := postgres.Conn(ctx, r.db).Query(ctx,
		`SELECT book_id FROM user_books WHERE user_id = $1 ORDER BY book_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *PostgresRepo) Insert(ctx context.Context, userID, bookID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := postgres.Conn(ctx, r.db).Exec(ctx,
		`INSERT INTO user_books (user_id, book_id) VALUES ($1, $2)`, userID, bookID)
	if postgres.IsUniqueViolation(err, ownershipConstraint) {
		return ErrAlreadyOwned
	}
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, bookID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := postgres.Conn(ctx, r.db).Exec(ctx,
		`DELETE FROM user_books WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	return err
}

func (r *PostgresRepo) Replace(ctx context.Context, userID int64, bookIDs []int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := postgres.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, `DELETE FROM user_books WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	if len(bookIDs) == 0 {
		return nil
	}
	_, err := conn.Exec(ctx,
		`INSERT INTO user_books (user_id, book_id) SELECT $1, unnest($2::bigint[])`, userID, bookIDs)
	if postgres.IsUniqueViolation(err, ownershipConstraint) {
		return ErrDuplicateOwnership
	}
	return err
}

func (r *PostgresRepo) ListBooks(ctx context.Context, userID int64, limit, offset int) ([]book.Book, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := postgres.Conn(ctx, r.db)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM user_books WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1
		ORDER BY b.title ASC, b.id
		LIMIT $2 OFFSET $3`, book.QualifiedColumns("b"))

	rows, err := conn.Query(ctx, dataSQL, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(book.ScanTargets(&b)...); err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}
