package book

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type bookRequest struct {
	ID        int64  `json:"id"`
	Genre     string `json:"genre" validate:"max=200"`
	Author    string `json:"author" validate:"required"`
	Image     string `json:"image" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Subtitle  string `json:"subtitle" validate:"required"`
	Publisher string `json:"publisher" validate:"required"`
	Year      string `json:"year" validate:"required"`
	Pages     int    `json:"pages" validate:"gt=0"`
	ISBN      string `json:"isbn" validate:"required,isbn"`
}

func (req bookRequest) toBook() *Book {
	return &Book{
		ID:        req.ID,
		Genre:     req.Genre,
		Author:    req.Author,
		Image:     req.Image,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Publisher: req.Publisher,
		Year:      req.Year,
		Pages:     req.Pages,
		ISBN:      req.ISBN,
	}
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request) (*Book, bool) {
	var req bookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return nil, false
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return nil, false
	}
	return req.toBook(), true
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return 0, false
	}
	return id, true
}

// writeError maps service errors onto the response envelope.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrIDMismatch):
		httpx.JSONError(w, r, http.StatusBadRequest, "ID_MISMATCH", "Path id does not match body id", nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "A book with this ISBN already exists", nil)
	default:
		h.logger.Error("book request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// @Summary List books
// @Description Filter books by any attribute, paginated
// @Tags books
// @Produce json
// @Param genre query string false "Genre contains"
// @Param author query string false "Author contains"
// @Param title query string false "Title contains"
// @Param isbn query string false "Exact ISBN"
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page"
// @Success 200 {object} httpx.SuccessResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Genre:     query.Get("genre"),
		Author:    query.Get("author"),
		Title:     query.Get("title"),
		Subtitle:  query.Get("subtitle"),
		Publisher: query.Get("publisher"),
		Year:      query.Get("year"),
		ISBN:      query.Get("isbn"),
	}

	if idStr := query.Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid id filter", nil)
			return
		}
		params.ID = &id
	}

	page, pageSize := httpx.Pagination(r)
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, httpx.PageMeta(page, pageSize, total))
}

// @Summary Get book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decode(w, r)
	if !ok {
		return
	}
	b.ID = 0

	if err := h.service.Create(r.Context(), b); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// Update handles PUT /api/books/{id}. The body must carry the same id.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	b, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, b); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
