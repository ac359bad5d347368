package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type createReq struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"required,past_date"`
	Password  string `json:"password" validate:"required,password_strength"`
}

type updateReq struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username" validate:"required,min=3,max=50"`
	Name      string  `json:"name" validate:"required"`
	BirthDate string  `json:"birth_date" validate:"required,past_date"`
	BookIDs   []int64 `json:"book_ids" validate:"omitempty,dive,gt=0"`
}

type passwordReq struct {
	Password string `json:"password" validate:"required,password_strength"`
}

func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	if details := httpx.ValidateStruct(v); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return false
	}
	return true
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id", nil)
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrIDMismatch):
		httpx.JSONError(w, r, http.StatusBadRequest, "ID_MISMATCH", "Path id does not match body id", nil)
	case errors.Is(err, ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Username already taken", nil)
	case errors.Is(err, ErrDuplicateOwnership):
		httpx.JSONError(w, r, http.StatusConflict, "DUPLICATE_OWNERSHIP", "A book appears more than once in the collection", nil)
	default:
		h.logger.Error("user request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// @Summary List users
// @Tags users
// @Produce json
// @Param name query string false "Name contains (case-insensitive)"
// @Param from query string false "Born on or after (YYYY-MM-DD)"
// @Param to query string false "Born on or before (YYYY-MM-DD)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /api/users [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := Query{Name: strings.TrimSpace(query.Get("name"))}

	for key, dst := range map[string]**time.Time{"from": &q.From, "to": &q.To} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		d, err := time.Parse(httpx.DateLayout, raw)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date filter",
				[]httpx.ErrorDetail{{Field: key, Message: "must be YYYY-MM-DD"}})
			return
		}
		*dst = &d
	}

	page, pageSize := httpx.Pagination(r)
	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize

	users, total, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, users, httpx.PageMeta(page, pageSize, total))
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body createReq true "New user"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/users [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if !decodeValid(w, r, &req) {
		return
	}
	birth, _ := ParseDate(req.BirthDate)

	u := &User{
		Username:  strings.TrimSpace(req.Username),
		Name:      req.Name,
		BirthDate: birth,
	}
	if err := h.service.Create(r.Context(), u, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}
	u.Books = []book.Book{}
	httpx.JSONSuccessCreated(w, r, u)
}

// Update handles PUT /api/users/{id}. The password is never changed here;
// book_ids, when present, replaces the owned collection.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateReq
	if !decodeValid(w, r, &req) {
		return
	}
	birth, _ := ParseDate(req.BirthDate)

	u := &User{
		ID:        req.ID,
		Username:  strings.TrimSpace(req.Username),
		Name:      req.Name,
		BirthDate: birth,
	}
	if err := h.service.Update(r.Context(), id, u, req.BookIDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// UpdatePassword handles PATCH /api/users/{id}.
func (h *HTTPHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req passwordReq
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.service.UpdatePassword(r.Context(), id, req.Password); err != nil {
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

// @Summary Get current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/users/current [get]
func (h *HTTPHandler) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UserIDFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}
