package catalog

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewHTTPHandler(resolver *Resolver, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{resolver: resolver, logger: logger}
}

// @Summary Search book by ISBN
// @Description Returns the local record, or fetches it from Open Library and stores it
// @Tags catalog
// @Produce json
// @Param isbn query string true "ISBN"
// @Success 200 {object} httpx.SuccessResponse "Found locally"
// @Success 201 {object} httpx.SuccessResponse "Fetched and created"
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /api/books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimSpace(r.URL.Query().Get("isbn"))
	if isbn == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "isbn is required",
			[]httpx.ErrorDetail{{Field: "isbn", Message: "isbn is required"}})
		return
	}

	b, created, err := h.resolver.ResolveOrFetch(r.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No book found for ISBN "+isbn, nil)
		case errors.Is(err, ErrLookupFailed):
			h.logger.Warn("external lookup failed", zap.String("isbn", isbn), zap.Error(err))
			httpx.JSONError(w, r, http.StatusBadGateway, "EXTERNAL_LOOKUP_FAILED", "Catalog provider unavailable", nil)
		case errors.Is(err, ErrMapping):
			h.logger.Error("provider document rejected", zap.String("isbn", isbn), zap.Error(err))
			httpx.JSONError(w, r, http.StatusInternalServerError, "MAPPING_FAILED", "Provider data could not be mapped", nil)
		default:
			h.logger.Error("isbn search failed", zap.String("isbn", isbn), zap.Error(err))
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	if created {
		httpx.JSONSuccessCreated(w, r, b)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}
