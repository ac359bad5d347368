package ownership

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/user"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

func (h *HTTPHandler) ids(w http.ResponseWriter, r *http.Request) (userID, bookID int64, ok bool) {
	userID, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id", nil)
		return 0, 0, false
	}
	bookID, err = httpx.PathID(r, "bookId")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return 0, 0, false
	}
	return userID, bookID, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrAlreadyOwned):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_OWNED", "User already owns this book", nil)
	case errors.Is(err, ErrDuplicateOwnership):
		httpx.JSONError(w, r, http.StatusConflict, "DUPLICATE_OWNERSHIP", "A book appears more than once in the collection", nil)
	default:
		h.logger.Error("ownership request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// @Summary Add book to user
// @Tags ownership
// @Produce json
// @Param id path int true "User ID"
// @Param bookId path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/users/{id}/books/{bookId}/add [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.ids(w, r)
	if !ok {
		return
	}
	u, err := h.service.AddBook(r.Context(), userID, bookID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// @Summary Remove book from user
// @Description Succeeds when the user does not own the book
// @Tags ownership
// @Produce json
// @Param id path int true "User ID"
// @Param bookId path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/users/{id}/books/{bookId}/remove [post]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.ids(w, r)
	if !ok {
		return
	}
	u, err := h.service.RemoveBook(r.Context(), userID, bookID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// ListBooks handles GET /api/users/{id}/books.
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id", nil)
		return
	}

	page, pageSize := httpx.Pagination(r)
	books, total, err := h.service.ListBooks(r.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, httpx.PageMeta(page, pageSize, total))
}
