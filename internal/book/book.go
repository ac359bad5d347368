package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrConflict is returned when another book already uses the ISBN.
	ErrConflict = errors.New("book with this isbn already exists")
	// ErrIDMismatch is returned when the id in the path differs from the body.
	ErrIDMismatch = errors.New("book id mismatch")
)

// Book represents a catalog entry.
type Book struct {
	ID        int64     `json:"id"`
	Genre     string    `json:"genre" validate:"max=200"`
	Author    string    `json:"author" validate:"required"`
	Image     string    `json:"image" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Subtitle  string    `json:"subtitle" validate:"required"`
	Publisher string    `json:"publisher" validate:"required"`
	Year      string    `json:"year" validate:"required"`
	Pages     int       `json:"pages" validate:"gt=0"`
	ISBN      string    `json:"isbn" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Query defines filters and pagination for listing books. Text filters are
// case-insensitive substring matches; ISBN and Year match exactly.
type Query struct {
	ID        *int64
	Genre     string
	Author    string
	Title     string
	Subtitle  string
	Publisher string
	Year      string
	ISBN      string
	Limit     int
	Offset    int
}
