package ownership

import (
	"errors"
	"slices"

	"bookcatalog/internal/user"
)

var (
	// ErrAlreadyOwned is returned when adding a book the user already owns.
	ErrAlreadyOwned = errors.New("book already owned by user")
	// ErrDuplicateOwnership is shared with the user package so whole-record
	// user updates can report it.
	ErrDuplicateOwnership = user.ErrDuplicateOwnership
)

// Outcome tells what a ledger command did to the collection.
type Outcome int

const (
	Unchanged Outcome = iota
	Added
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Result is the collection after a command. Books never aliases the input.
type Result struct {
	Books   []int64
	Outcome Outcome
}

// Add appends bookID to owned. Books are compared by id.
func Add(owned []int64, bookID int64) (Result, error) {
	if slices.Contains(owned, bookID) {
		return Result{Books: slices.Clone(owned), Outcome: Unchanged}, ErrAlreadyOwned
	}
	books := make([]int64, len(owned), len(owned)+1)
	copy(books, owned)
	return Result{Books: append(books, bookID), Outcome: Added}, nil
}

// Remove drops bookID from owned. Removing a book that is not owned is not
// an error and leaves the collection as it was.
func Remove(owned []int64, bookID int64) Result {
	books := make([]int64, 0, len(owned))
	for _, id := range owned {
		if id != bookID {
			books = append(books, id)
		}
	}
	if len(books) == len(owned) {
		return Result{Books: books, Outcome: Unchanged}
	}
	return Result{Books: books, Outcome: Removed}
}

// ValidateReplacement checks a proposed collection against the existing
// one. It fails when the proposed list repeats an id, or when any existing
// id occurs more than once in the proposed list.
func ValidateReplacement(existing, proposed []int64) error {
	counts := make(map[int64]int, len(proposed))
	for _, id := range proposed {
		counts[id]++
	}

	for _, id := range existing {
		if counts[id] > 1 {
			return ErrDuplicateOwnership
		}
	}
	for _, id := range proposed {
		if counts[id] > 1 {
			return ErrDuplicateOwnership
		}
	}
	return nil
}
