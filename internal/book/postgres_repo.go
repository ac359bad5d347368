package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/platform/postgres"
)

const isbnConstraint = "books_isbn_key"

var columnNames = []string{
	"id", "genre", "author", "image", "title", "subtitle",
	"publisher", "year", "pages", "isbn", "created_at", "updated_at",
}

var bookColumns = strings.Join(columnNames, ", ")

// QualifiedColumns lists the book columns prefixed with alias, in the order
// expected by ScanTargets.
func QualifiedColumns(alias string) string {
	cols := make([]string, len(columnNames))
	for i, c := range columnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// ScanTargets returns the scan destinations for a row selected with
// QualifiedColumns.
func ScanTargets(b *Book) []any {
	return []any{
		&b.ID, &b.Genre, &b.Author, &b.Image, &b.Title, &b.Subtitle,
		&b.Publisher, &b.Year, &b.Pages, &b.ISBN, &b.CreatedAt, &b.UpdatedAt,
	}
}

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

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(ScanTargets(b)...)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.ID != nil {
		clauses = append(clauses, fmt.Sprintf("id = $%d", argn))
		args = append(args, *q.ID)
		argn++
	}

	for _, f := range []struct {
		column string
		value  string
	}{
		{"genre", q.Genre},
		{"author", q.Author},
		{"title", q.Title},
		{"subtitle", q.Subtitle},
		{"publisher", q.Publisher},
	} {
		if f.value == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", f.column, argn))
		args = append(args, "%"+f.value+"%")
		argn++
	}

	if q.Year != "" {
		clauses = append(clauses, fmt.Sprintf("year = $%d", argn))
		args = append(args, q.Year)
		argn++
	}

	if q.ISBN != "" {
		clauses = append(clauses, fmt.Sprintf("isbn = $%d", argn))
		args = append(args, q.ISBN)
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := postgres.Conn(ctx, r.db)

	var total int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	dataSQL := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY id LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := conn.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) getBy(ctx context.Context, column string, value any) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	query := fmt.Sprintf(`SELECT %s FROM books WHERE %s = $1`, bookColumns, column)
	if err := scanBook(postgres.Conn(ctx, r.db).QueryRow(ctx, query, value), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return r.getBy(ctx, "isbn", isbn)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (genre, author, image, title, subtitle, publisher, year, pages, isbn)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, sql,
		b.Genre, b.Author, b.Image, b.Title, b.Subtitle, b.Publisher, b.Year, b.Pages, b.ISBN,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if postgres.IsUniqueViolation(err, isbnConstraint) {
		return ErrConflict
	}
	return err
}

func (r *PostgresRepo) InsertOrGetByISBN(ctx context.Context, b *Book) (bool, error) {
	const sql = `
		INSERT INTO books (genre, author, image, title, subtitle, publisher, year, pages, isbn)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (isbn) DO NOTHING
		RETURNING id, created_at, updated_at`

	insertCtx, cancel := r.withTimeout(ctx)
	err := postgres.Conn(insertCtx, r.db).QueryRow(insertCtx, sql,
		b.Genre, b.Author, b.Image, b.Title, b.Subtitle, b.Publisher, b.Year, b.Pages, b.ISBN,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	cancel()

	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return false, err
	}

	existing, err := r.GetByISBN(ctx, b.ISBN)
	if err != nil {
		return false, fmt.Errorf("load existing book %s: %w", b.ISBN, err)
	}
	*b = existing
	return false, nil
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const sql = `
		UPDATE books
		SET genre = $2, author = $3, image = $4, title = $5, subtitle = $6,
		    publisher = $7, year = $8, pages = $9, isbn = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, sql,
		b.ID, b.Genre, b.Author, b.Image, b.Title, b.Subtitle, b.Publisher, b.Year, b.Pages, b.ISBN,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case postgres.IsUniqueViolation(err, isbnConstraint):
		return ErrConflict
	}
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
