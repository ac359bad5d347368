package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/postgres"
)

const (
	usernameConstraint = "users_username_key"
	userColumns        = `id, username, name, birth_date, password_hash, created_at, updated_at`
)

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

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.Username, &u.Name, &u.BirthDate.Time, &u.Password, &u.CreatedAt, &u.UpdatedAt)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]User, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Name != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", argn))
		args = append(args, "%"+q.Name+"%")
		argn++
	}
	if q.From != nil {
		clauses = append(clauses, fmt.Sprintf("birth_date >= $%d", argn))
		args = append(args, *q.From)
		argn++
	}
	if q.To != nil {
		clauses = append(clauses, fmt.Sprintf("birth_date <= $%d", argn))
		args = append(args, *q.To)
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := postgres.Conn(ctx, r.db)

	var total int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	dataSQL := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, where, argn, argn+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := conn.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			rows.Close()
			return nil, 0, err
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachBooks(ctx, conn, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// attachBooks loads the owned books of every user in one query.
func (r *PostgresRepo) attachBooks(ctx context.Context, conn postgres.DBTX, users []User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
		users[i].Books = []book.Book{}
	}

	query := fmt.Sprintf(`
		SELECT ub.user_id, %s
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = ANY($1)
		ORDER BY ub.user_id, b.id`, book.QualifiedColumns("b"))

	rows, err := conn.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load owned books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var b book.Book
		if err := rows.Scan(append([]any{&userID}, book.ScanTargets(&b)...)...); err != nil {
			return err
		}
		i := index[userID]
		users[i].Books = append(users[i].Books, b)
	}
	return rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := postgres.Conn(ctx, r.db)

	var u User
	err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	users := []User{u}
	if err := r.attachBooks(ctx, conn, users); err != nil {
		return User{}, err
	}
	return users[0], nil
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := scanUser(postgres.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (username, name, birth_date, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, u.Username, u.Name, u.BirthDate.Time, u.Password).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if postgres.IsUniqueViolation(err, usernameConstraint) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, u *User) error {
	const query = `
	UPDATE users
	SET username = $2, name = $3, birth_date = $4, updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, u.ID, u.Username, u.Name, u.BirthDate.Time).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case postgres.IsUniqueViolation(err, usernameConstraint):
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepo) Lock(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var locked int64
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// execOne runs a statement that must affect exactly one user row.
func (r *PostgresRepo) execOne(ctx context.Context, sql string, args ...any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
