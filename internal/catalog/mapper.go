package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

const (
	// MaxGenreLength is the number of characters kept from the joined subjects.
	MaxGenreLength = 200
	// NoSubtitle is stored when the provider has no subtitle.
	NoSubtitle = "No specified"
)

// ErrMapping is returned when a provider document cannot be turned into a
// valid book record.
var ErrMapping = errors.New("catalog: cannot map provider document")

var validate = validator.New(validator.WithRequiredStructEnabled())

// MapDocument converts a provider document into a book for isbn. It does no
// I/O and the same input always yields the same record.
func MapDocument(isbn string, doc openlibrary.Document) (book.Book, error) {
	if doc.Cover == nil || doc.Cover.Large == "" {
		return book.Book{}, fmt.Errorf("%w: missing large cover", ErrMapping)
	}
	if doc.PublishDate == nil {
		return book.Book{}, fmt.Errorf("%w: missing publish_date", ErrMapping)
	}
	if doc.NumberOfPages == nil {
		return book.Book{}, fmt.Errorf("%w: missing number_of_pages", ErrMapping)
	}
	pages, err := doc.NumberOfPages.Int64()
	if err != nil {
		return book.Book{}, fmt.Errorf("%w: number_of_pages %q: %v", ErrMapping, doc.NumberOfPages.String(), err)
	}

	subtitle := NoSubtitle
	if doc.Subtitle != nil && *doc.Subtitle != "" {
		subtitle = *doc.Subtitle
	}

	b := book.Book{
		Genre:     truncate(JoinNames(doc.Subjects), MaxGenreLength),
		Author:    JoinNames(doc.Authors),
		Image:     doc.Cover.Large,
		Title:     doc.Title,
		Subtitle:  subtitle,
		Publisher: JoinNames(doc.Publishers),
		Year:      *doc.PublishDate,
		Pages:     int(pages),
		ISBN:      isbn,
	}

	if err := validate.Struct(b); err != nil {
		return book.Book{}, fmt.Errorf("%w: %v", ErrMapping, err)
	}
	return b, nil
}

// JoinNames joins the name of every element in order with a single comma.
func JoinNames(items []openlibrary.Named) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, ",")
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
