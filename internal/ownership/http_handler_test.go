package ownership

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func call(h http.HandlerFunc, userID, bookID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/books/"+bookID+"/add", nil)
	r.SetPathValue("id", userID)
	r.SetPathValue("bookId", bookID)
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestHTTPHandler_AddRemove(t *testing.T) {
	svc, _ := newTestService()
	h := NewHTTPHandler(svc, zap.NewNop())

	w := call(h.Add, "1", "10")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"1984"`)

	w = call(h.Add, "1", "10")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_OWNED")

	w = call(h.Remove, "1", "11")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"1984"`)

	w = call(h.Remove, "1", "10")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"title":"1984"`)
}

func TestHTTPHandler_NotFound(t *testing.T) {
	svc, _ := newTestService()
	h := NewHTTPHandler(svc, zap.NewNop())

	w := call(h.Add, "77", "10")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")

	w = call(h.Remove, "1", "77")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")
}

func TestHTTPHandler_BadIDs(t *testing.T) {
	svc, _ := newTestService()
	h := NewHTTPHandler(svc, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, call(h.Add, "x", "10").Code)
	assert.Equal(t, http.StatusBadRequest, call(h.Add, "1", "0").Code)
}

func TestHTTPHandler_ListBooks(t *testing.T) {
	svc, _ := newTestService()
	h := NewHTTPHandler(svc, zap.NewNop())
	call(h.Add, "1", "11")

	r := httptest.NewRequest(http.MethodGet, "/api/users/1/books", nil)
	r.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.ListBooks(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Animal Farm")
	assert.Contains(t, w.Body.String(), `"total":1`)
}
