package user

import (
	"encoding/json"
	"errors"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already taken")
	ErrIDMismatch    = errors.New("user id mismatch")
	// ErrDuplicateOwnership is returned when a proposed book collection lists
	// the same book more than once.
	ErrDuplicateOwnership = errors.New("book owned more than once")
)

// User is a library member and the books they own.
type User struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name"`
	BirthDate Date        `json:"birth_date"`
	Password  string      `json:"-"`
	Books     []book.Book `json:"books"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BookIDs returns the ids of the owned books in collection order.
func (u User) BookIDs() []int64 {
	ids := make([]int64, len(u.Books))
	for i, b := range u.Books {
		ids[i] = b.ID
	}
	return ids
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(httpx.DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(httpx.DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Query filters the user list. Name is a case-insensitive substring match;
// From and To bound the birth date inclusively.
type Query struct {
	Name   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
